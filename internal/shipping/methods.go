package shipping

// Method is a shipping option offered for a resolved zone. The tables are
// static; methods are recomputed whenever the delivery district changes.
type Method struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	ETALabel    string  `json:"eta_label"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

var pickupMethod = Method{
	ID:          "pickup",
	Name:        "Nhận tại cửa hàng",
	ETALabel:    "Trong giờ mở cửa",
	Price:       0,
	Description: "Đến lấy trực tiếp tại cửa hàng, miễn phí",
}

var methodsByZone = map[Zone][]Method{
	ZoneInner: {
		pickupMethod,
		{
			ID:          "inner_standard",
			Name:        "Giao tiêu chuẩn",
			ETALabel:    "2-4 giờ",
			Price:       25000,
			Description: "Giao trong nội thành",
		},
		{
			ID:          "inner_express",
			Name:        "Giao nhanh",
			ETALabel:    "Dưới 90 phút",
			Price:       45000,
			Description: "Giao hỏa tốc nội thành",
		},
	},
	ZoneOuter: {
		pickupMethod,
		{
			ID:          "outer_standard",
			Name:        "Giao tiêu chuẩn",
			ETALabel:    "4-8 giờ",
			Price:       35000,
			Description: "Giao đến các huyện ngoại thành",
		},
		{
			ID:          "outer_express",
			Name:        "Giao nhanh",
			ETALabel:    "2-3 giờ",
			Price:       60000,
			Description: "Giao hỏa tốc ngoại thành",
		},
	},
	ZoneUnknown: {
		pickupMethod,
		{
			ID:          "standard",
			Name:        "Giao tiêu chuẩn",
			ETALabel:    "Trong ngày",
			Price:       40000,
			Description: "Khu vực chưa xác định, phí chung",
		},
	},
}

// MethodsForZone returns the shipping options for a zone. The first entry is
// always the free store-pickup option and the list is never empty.
func MethodsForZone(zone Zone) []Method {
	methods, ok := methodsByZone[zone]
	if !ok {
		methods = methodsByZone[ZoneUnknown]
	}

	out := make([]Method, len(methods))
	copy(out, methods)
	return out
}

// MethodByID finds a method by id within a zone's offering. The second
// return reports whether the id is still available for that zone.
func MethodByID(zone Zone, id string) (Method, bool) {
	for _, m := range MethodsForZone(zone) {
		if m.ID == id {
			return m, true
		}
	}
	return Method{}, false
}
