package shipping

import "strings"

// Zone classifies a delivery district of the metropolitan area.
type Zone string

const (
	ZoneInner   Zone = "inner"
	ZoneOuter   Zone = "outer"
	ZoneUnknown Zone = "unknown"
)

// Canonical district names, lowercase, without the administrative prefix.
var innerDistricts = map[string]bool{
	"1":          true,
	"3":          true,
	"4":          true,
	"5":          true,
	"6":          true,
	"7":          true,
	"8":          true,
	"10":         true,
	"11":         true,
	"12":         true,
	"bình thạnh": true,
	"bình tân":   true,
	"gò vấp":     true,
	"phú nhuận":  true,
	"tân bình":   true,
	"tân phú":    true,
	"thủ đức":    true,
}

var outerDistricts = map[string]bool{
	"bình chánh": true,
	"cần giờ":    true,
	"củ chi":     true,
	"hóc môn":    true,
	"nhà bè":     true,
}

var districtPrefixes = []string{"quận ", "huyện ", "q.", "h."}

// NormalizeDistrict canonicalizes a district name: trims, lowercases,
// strips the administrative prefix and collapses inner whitespace.
// "Quận Bình Thạnh", "Q.Bình Thạnh" and "bình  thạnh" all normalize
// to "bình thạnh".
func NormalizeDistrict(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.Join(strings.Fields(s), " ")

	for _, p := range districtPrefixes {
		if strings.HasPrefix(s, p) {
			s = strings.TrimSpace(strings.TrimPrefix(s, p))
			break
		}
	}

	return s
}

// ClassifyDistrict maps a district name to its zone. Districts outside the
// two membership lists classify as ZoneUnknown.
func ClassifyDistrict(name string) Zone {
	canonical := NormalizeDistrict(name)

	switch {
	case innerDistricts[canonical]:
		return ZoneInner
	case outerDistricts[canonical]:
		return ZoneOuter
	default:
		return ZoneUnknown
	}
}
