package env

import (
	"strings"
)

var secretMarkers = []string{
	"KEY", "TOKEN", "SECRET", "PASSWORD", "CREDENTIAL",
}

// IsSecretKey reports whether a variable name looks like it holds
// a credential, e.g. ANTHROPIC_API_KEY or GITHUB_TOKEN.
func IsSecretKey(key string) bool {
	upper := strings.ToUpper(key)
	for _, m := range secretMarkers {
		if strings.Contains(upper, m) {
			return true
		}
	}
	return false
}

// RedactValue masks a secret, showing only the first 4 and last
// 4 characters.
func RedactValue(value string) string {
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
}

// Redacted returns a copy of vars with secret values masked.
func Redacted(vars map[string]string) map[string]string {
	result := make(map[string]string, len(vars))
	for k, v := range vars {
		if IsSecretKey(k) {
			result[k] = RedactValue(v)
		} else {
			result[k] = v
		}
	}
	return result
}
