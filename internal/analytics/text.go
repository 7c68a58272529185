package analytics

import (
	"strings"

	"github.com/spec-kit/service-order-metrics/pkg/textutil"
)

// NotInformed buckets blank technician, city, neighborhood and reason values.
const NotInformed = "NÃO INFORMADO"

func foldKey(s string) string {
	return textutil.Fold(s)
}

// NormalizeLocation canonicalises a city or neighborhood for grouping.
func NormalizeLocation(s string) string {
	key := foldKey(s)
	if key == "" {
		return NotInformed
	}
	return strings.ToUpper(key)
}

func lowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
