package synth

import "strings"

var abbreviations = map[string]string{
	"nm": "name", "no": "number", "cd": "code",
	"desc": "description", "amt": "amount", "cnt": "count", "qty": "quantity",
	"addr": "address", "tel": "phone", "ph": "phone",
	"pwd": "password", "passwd": "password", "pw": "password",
	"img": "image", "url": "url", "ip": "ip",
	"zip": "zipcode", "post": "zipcode",
	"msg": "message", "txt": "text", "tit": "title",
	"usr": "user", "emp": "employee",
	"loc": "location", "lat": "latitude", "lng": "longitude", "lon": "longitude",
	"uid": "id", "pid": "id", "mid": "id",
}

// meanings that warrant fabricating fresh values instead of resampling the
// observed ones. These are the column shapes that tend to carry PII.
var fabricated = map[string]bool{
	"email":   true,
	"phone":   true,
	"name":    true,
	"address": true,
	"city":    true,
	"country": true,
	"zipcode": true,
	"url":     true,
	"ip":      true,
	"user":    true,
}

// AnalyzeMeaning derives a semantic hint from a column name by expanding
// common abbreviations and matching well-known keywords. It returns the
// canonical meaning, or "" when the name says nothing useful.
func AnalyzeMeaning(colName string) string {
	n := strings.ToLower(colName)

	// ID-ish columns never get a PII meaning; their values are keys.
	if strings.HasSuffix(n, "_id") || n == "id" {
		return "id"
	}

	parts := strings.Split(n, "_")
	for i, part := range parts {
		if full, ok := abbreviations[part]; ok {
			parts[i] = full
		}
	}

	keywords := []string{
		"email", "phone", "mobile", "address", "zipcode", "postal",
		"city", "country", "url", "ip", "password", "name", "user",
	}
	words := make(map[string]bool, len(parts))
	for _, p := range parts {
		words[p] = true
	}
	for _, kw := range keywords {
		if words[kw] {
			switch kw {
			case "mobile":
				return "phone"
			case "postal":
				return "zipcode"
			}
			return kw
		}
	}
	return ""
}

// Fabricated reports whether columns with this meaning should be filled
// with freshly generated values rather than resampled observed ones.
func Fabricated(meaning string) bool {
	return fabricated[meaning]
}
