package pricing

import (
	"math"
	"strconv"
	"strings"
)

// FormatPrice rounds to whole roubles and groups thousands with spaces: 1 234 567 ₽
func FormatPrice(price float64) string {
	rounded := int64(math.Round(price))

	sign := ""
	if rounded < 0 {
		sign = "-"
		rounded = -rounded
	}

	digits := strconv.FormatInt(rounded, 10)

	var b strings.Builder
	b.WriteString(sign)
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(d)
	}
	b.WriteString(" ₽")

	return b.String()
}
