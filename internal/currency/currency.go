package currency

import (
	"regexp"
	"strconv"
	"strings"
)

// Indian financial reports quote amounts in Lakh (10^5) and Crore (10^7).
var multipliers = map[string]float64{
	"lakh":   1e5,
	"lakhs":  1e5,
	"crore":  1e7,
	"crores": 1e7,
}

var amountPattern = regexp.MustCompile(`(?i)([\d.]+)\s*(Lakh|Lakhs|Crore|Crores)`)

// ParseAmounts scans a text snippet for Indian-locale magnitude expressions
// such as "Rs. 50.5 Lakhs" or "100 Crores" and returns the absolute values in
// order of appearance. Text without unit mentions yields an empty result;
// malformed numerics are skipped rather than reported.
func ParseAmounts(snippet string) []float64 {
	matches := amountPattern.FindAllStringSubmatch(snippet, -1)

	values := make([]float64, 0, len(matches))
	for _, m := range matches {
		amount, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		values = append(values, amount*multipliers[strings.ToLower(m[2])])
	}
	return values
}
