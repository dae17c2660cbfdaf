package sqlgen

import (
	"fmt"
	"regexp"
	"strings"
)

var mutationRe = regexp.MustCompile(`(?i)\b(insert|update|delete|drop|alter|create|truncate|grant|revoke|copy|merge|vacuum)\b`)

// CleanSQL strips Markdown fences and labels a model sometimes wraps its
// answer in, returning the bare statement.
func CleanSQL(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	s = strings.TrimPrefix(s, "sql\n")
	return strings.TrimSpace(s)
}

// ValidateReadOnly rejects anything but a single SELECT (or WITH ... SELECT)
// statement. The repository additionally executes inside a read-only
// transaction, but enforcement here is the generator's own responsibility.
func ValidateReadOnly(sql string) error {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(sql), ";"))
	if trimmed == "" {
		return fmt.Errorf("empty statement")
	}
	if strings.Contains(trimmed, ";") {
		return fmt.Errorf("multiple statements are not allowed")
	}
	first := strings.ToUpper(strings.Fields(trimmed)[0])
	if first != "SELECT" && first != "WITH" {
		return fmt.Errorf("only SELECT statements are allowed, got %q", first)
	}
	if m := mutationRe.FindString(trimmed); m != "" {
		return fmt.Errorf("statement contains forbidden keyword %q", strings.ToUpper(m))
	}
	return nil
}
