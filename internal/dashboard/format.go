package dashboard

import (
	"strings"

	"github.com/shopspring/decimal"
)

const rupee = "₹"

// FormatINR renders v the way en-IN formats INR with no fraction digits:
// half away from zero rounding, the last three digits grouped, then pairs.
// 12345678 becomes ₹1,23,45,678.
func FormatINR(v decimal.Decimal) string {
	r := v.Round(0)
	digits := r.Abs().StringFixed(0)

	var b strings.Builder
	if r.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString(rupee)
	b.WriteString(groupIndian(digits))
	return b.String()
}

func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]

	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(append(parts, tail), ",")
}
