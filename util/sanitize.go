package util

import (
	"regexp"
	"strings"
	"unicode"
)

// injectionPattern matches substrings commonly seen in SQL injection and XSS
// payloads. Dev-login subjects are screened against it before they are
// embedded in a token.
var injectionPattern = regexp.MustCompile(`(?i)(--|;|'|"|<script|<\/script|javascript:|on\w+=|union\s+select|drop\s+table|insert\s+into|delete\s+from|update\s+.+\s+set)`)

// SanitizeString trims surrounding whitespace and strips control characters.
// Request fields destined for token claims or log lines pass through here
// first.
func SanitizeString(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// SanitizeEnvValue normalizes an environment variable value: surrounding
// whitespace goes, as does one matching pair of single or double quotes left
// behind by shell wrappers and .env files.
func SanitizeEnvValue(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			s = s[1 : len(s)-1]
		}
	}
	return strings.TrimSpace(s)
}

// IsSafeString reports whether s is free of injection-style patterns.
func IsSafeString(s string) bool {
	return !injectionPattern.MatchString(s)
}
