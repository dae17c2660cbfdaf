package interpreter

import (
	"fmt"
	"regexp"
	"strconv"
)

// Identifier patterns in precedence order: the canonical zero-padded token
// wins over looser forms, which are normalized to the canonical form.
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bCUST(\d{6})\b`),
	regexp.MustCompile(`(?i)\bcust(?:omer)?\s*#?\s*(\d{1,6})\b`),
	regexp.MustCompile(`(?i)\buser\s*#?\s*(\d{1,6})\b`),
	regexp.MustCompile(`(?i)\bc\s*(\d{1,6})\b`),
	regexp.MustCompile(`\b(\d{1,6})\b`),
}

// ExtractCustomerID finds a customer identifier in free text and returns it
// in canonical CUST%06d form, or "" when none is present.
func ExtractCustomerID(text string) string {
	for _, re := range idPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return fmt.Sprintf("CUST%06d", n)
	}
	return ""
}
