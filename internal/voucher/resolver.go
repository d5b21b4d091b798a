package voucher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cakeshop-be/internal/logger"
	"cakeshop-be/internal/session"

	"go.uber.org/zap"
)

// Resolver loads and applies voucher selections for an account. Expired or
// malformed persisted records are purged rather than applied.
type Resolver struct {
	store session.Store
	now   func() time.Time
}

func NewResolver(store session.Store, now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{store: store, now: now}
}

// LoadPersisted reads the account's stored voucher. A missing, malformed or
// expired record resolves to nil (no discount); expired and malformed
// records are removed from the store.
func (r *Resolver) LoadPersisted(ctx context.Context, accountID string) (*Selection, error) {
	raw, err := r.store.Get(ctx, accountID, session.KeySelectedVoucher)
	if errors.Is(err, session.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load voucher: %w", err)
	}

	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		logger.FromCtx(ctx).Warn("purging malformed voucher record",
			zap.String("account_id", accountID),
			zap.Error(err),
		)
		return nil, r.purge(ctx, accountID)
	}

	if !r.now().Before(rec.EndDate) {
		logger.FromCtx(ctx).Info("purging expired voucher",
			zap.String("account_id", accountID),
			zap.String("code", rec.Code),
			zap.Time("end_date", rec.EndDate),
		)
		return nil, r.purge(ctx, accountID)
	}

	return &Selection{
		Code:            rec.Code,
		DiscountPercent: ParsePercent(rec.Discount),
		SourceRecordID:  rec.ID,
	}, nil
}

// ApplyRoute overrides the persisted voucher with one handed over from the
// selection flow. A nil record explicitly clears the active voucher.
func (r *Resolver) ApplyRoute(ctx context.Context, accountID string, rec *Record) (*Selection, error) {
	if rec == nil {
		return nil, r.purge(ctx, accountID)
	}

	if !r.now().Before(rec.EndDate) {
		return nil, r.purge(ctx, accountID)
	}

	sel := &Selection{
		Code:            rec.Code,
		DiscountPercent: ParsePercent(rec.Discount),
		SourceRecordID:  rec.ID,
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("persist voucher: %w", err)
	}
	if err := r.store.Set(ctx, accountID, session.KeySelectedVoucher, string(raw)); err != nil {
		return nil, fmt.Errorf("persist voucher: %w", err)
	}

	percent := strconv.FormatFloat(sel.DiscountPercent, 'f', -1, 64)
	if err := r.store.Set(ctx, accountID, session.KeyDiscountPercent, percent); err != nil {
		return nil, fmt.Errorf("persist discount percent: %w", err)
	}

	return sel, nil
}

func (r *Resolver) purge(ctx context.Context, accountID string) error {
	if err := r.store.Remove(ctx, accountID, session.KeySelectedVoucher); err != nil {
		return fmt.Errorf("purge voucher: %w", err)
	}
	if err := r.store.Remove(ctx, accountID, session.KeyDiscountPercent); err != nil {
		return fmt.Errorf("purge discount percent: %w", err)
	}
	return nil
}
