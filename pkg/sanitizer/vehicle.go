package sanitizer

import (
	"strings"
	"unicode"
)

// NormalizeVehicleNumber uppercases a registration number and strips all
// whitespace. Bookings store vehicle numbers in this canonical form so the
// same vehicle matches regardless of how the plate was typed.
func NormalizeVehicleNumber(number string) string {
	var result strings.Builder
	for _, r := range number {
		if unicode.IsSpace(r) {
			continue
		}
		result.WriteRune(unicode.ToUpper(r))
	}
	return result.String()
}
