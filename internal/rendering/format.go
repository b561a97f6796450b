package rendering

import (
	"fmt"
	"strings"
	"time"
)

// FormatEuro renders an amount the French way: space-grouped thousands,
// comma decimal separator, trailing euro sign. 1500 becomes "1 500,00 €".
func FormatEuro(amount float64) string {
	s := fmt.Sprintf("%.2f", amount)

	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	parts := strings.SplitN(s, ".", 2)
	intPart, decPart := parts[0], parts[1]

	var sb strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteRune(' ')
		}
		sb.WriteRune(digit)
	}

	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("%s%s,%s €", sign, sb.String(), decPart)
}

// FormatDate renders a date as DD/MM/YYYY.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}
