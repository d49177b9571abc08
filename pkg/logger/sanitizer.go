package logger

import (
	"regexp"
	"strings"
)

const redactedPlaceholder = "[REDACTED]"

type redaction struct {
	pattern     *regexp.Regexp
	replacement string
}

// Errors from the database driver and storage SDKs can echo connection
// strings and credentials back.
var redactions = []redaction{
	{regexp.MustCompile(`(?i)(password|passwd|pwd)([\s:=]+)[^\s&]+`), "${1}${2}" + redactedPlaceholder},
	{regexp.MustCompile(`(?i)(token|jwt|bearer)([\s:=]+)[^\s&]+`), "${1}${2}" + redactedPlaceholder},
	{regexp.MustCompile(`(?i)(secret|access[_-]?key(?:[_-]?id)?)([\s:=]+)[^\s&]+`), "${1}${2}" + redactedPlaceholder},
	{regexp.MustCompile(`([a-z][a-z0-9+.-]*://[^:/\s]+):[^@/\s]+@`), "${1}:" + redactedPlaceholder + "@"},
}

var sensitiveKeys = []string{
	"password", "passwd", "pwd",
	"token", "jwt", "bearer", "authorization",
	"secret", "access_key", "accesskey",
}

// SanitizeLogMessage removes credentials from a free-form message.
func SanitizeLogMessage(message string) string {
	for _, r := range redactions {
		message = r.pattern.ReplaceAllString(message, r.replacement)
	}
	return message
}

// SanitizeMap returns a copy of data with sensitive keys redacted and string
// values scrubbed.
func SanitizeMap(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}

	sanitized := make(map[string]any, len(data))
	for k, v := range data {
		if isSensitiveKey(k) {
			sanitized[k] = redactedPlaceholder
			continue
		}
		if s, ok := v.(string); ok {
			v = SanitizeLogMessage(s)
		}
		sanitized[k] = v
	}
	return sanitized
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, k := range sensitiveKeys {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
