package main

import (
	"log"
	"net/http"

	"cakeshop-be/internal/backend"
	"cakeshop-be/internal/checkout"
	"cakeshop-be/internal/config"
	"cakeshop-be/internal/db"
	"cakeshop-be/internal/httpx"
	"cakeshop-be/internal/logger"
	"cakeshop-be/internal/notify"
	"cakeshop-be/internal/payment"
	"cakeshop-be/internal/session"
	"cakeshop-be/internal/voucher"
)

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	var store session.Store
	switch cfg.SessionDriver {
	case "redis":
		store = session.NewRedisStore(cfg.RedisAddr)
	case "postgres":
		database := db.InitDB(cfg)
		defer database.Close()
		store = session.NewPostgresStore(database)
	default:
		store = session.NewMemoryStore()
	}

	be := backend.NewClient(cfg.BackendBaseURL)

	notifier := notify.NewProducer(cfg.KafkaBrokers, cfg.NotifyTopic)
	defer notifier.Close()

	orch := checkout.NewOrchestrator(be, notifier, voucher.NewResolver(store, nil), store)

	bridge := payment.NewBridge(payment.Config{
		TmnCode:        cfg.VNPayTmnCode,
		HashSecret:     cfg.VNPayHashSecret,
		PayURL:         cfg.VNPayPayURL,
		ReturnURL:      cfg.VNPayReturnURL,
		DeepLinkScheme: cfg.VNPayDeepLinkScheme,
	})

	router := httpx.NewRouter(httpx.NewHandler(orch, bridge), []byte(cfg.JWTSecret))

	log.Printf("🚀 Checkout service running at http://localhost:%s/", cfg.AppPort)
	log.Fatal(http.ListenAndServe(":"+cfg.AppPort, router))
}
