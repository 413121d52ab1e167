package handlers

import (
	"strconv"
	"strings"
	"time"
)

// formatNaira renders an amount as "₦1,234.56". All user-facing money
// fields go through here; raw floats stay alongside for client math.
func formatNaira(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	fixed := strconv.FormatFloat(amount, 'f', 2, 64)
	whole := fixed[:len(fixed)-3]
	cents := fixed[len(fixed)-2:]

	formatted := "₦" + groupThousands(whole) + "." + cents
	if negative {
		return "-" + formatted
	}
	return formatted
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	return digits + "," + strings.Join(groups, ",")
}

func formatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}
