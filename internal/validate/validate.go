package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// MaxQuantity bounds any single stock count entered through the bot.
const MaxQuantity = 1000

// Price parses a non-negative decimal price from free text.
func Price(s string) (float64, bool) {
	p, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || p < 0 {
		return 0, false
	}
	return p, true
}

// Quantity parses a stock count in [0, MaxQuantity].
func Quantity(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > MaxQuantity {
		return 0, false
	}
	return n, true
}

// Index parses a 1-based menu selection against a list length and returns
// the 0-based index.
func Index(s string, length int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	i := n - 1
	if i < 0 || i >= length {
		return 0, false
	}
	return i, true
}

// Sizes splits a comma-separated size list, dropping blanks.
func Sizes(s string) ([]string, bool) {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out, len(out) > 0
}

// SizeQuantities parses per-size stock updates in the form "S: 10, M: 5".
func SizeQuantities(s string) (map[string]int, bool) {
	out := make(map[string]int)
	for _, part := range strings.Split(s, ",") {
		size, qtyStr, found := strings.Cut(part, ":")
		if !found {
			return nil, false
		}
		qty, ok := Quantity(qtyStr)
		if !ok {
			return nil, false
		}
		size = strings.TrimSpace(size)
		if size == "" {
			return nil, false
		}
		out[size] = qty
	}
	return out, len(out) > 0
}

// Email validates an optional contact address.
func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 50 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Required trims a mandatory free-text field.
func Required(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}
