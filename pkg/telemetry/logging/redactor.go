package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

// Redactor masks credentials and personal data in log attributes.
type Redactor struct {
	patterns []*redactPattern
}

type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Pattern names.
const (
	PatternEmail       = "email"
	PatternBearerToken = "bearer_token"
	PatternBasicAuth   = "basic_auth"
	PatternPassword    = "password"
)

// Order matters: authorization schemes are masked before the email pattern
// sees them.
var defaultPatterns = []struct {
	name        string
	regex       string
	replacement string
}{
	{PatternBearerToken, `Bearer\s+[a-zA-Z0-9\-._~+/]+=*`, "Bearer ***"},
	{PatternBasicAuth, `Basic\s+[a-zA-Z0-9+/]+=*`, "Basic ***"},
	{PatternPassword, `("?(?:password|passwd|pwd)"?\s*[:=]\s*)("[^"]*"|[^\s,}]+)`, `$1"***"`},
	{PatternEmail, `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`, "***@***"},
}

var sensitiveKeys = []string{
	"password", "passwd", "pwd",
	"secret", "token", "api_key", "apikey",
	"authorization", "credential",
}

// NewRedactor creates a Redactor with the built-in patterns.
func NewRedactor() *Redactor {
	r := &Redactor{}
	for _, p := range defaultPatterns {
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.name,
			regex:       regexp.MustCompile(p.regex),
			replacement: p.replacement,
		})
	}
	return r
}

// RedactString masks every pattern match in value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, p := range r.patterns {
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

// ReplaceAttr is a slog.HandlerOptions.ReplaceAttr hook. Values under a
// sensitive key are replaced entirely; other string values are scanned for
// embedded tokens and emails.
func (r *Redactor) ReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		return a
	}
	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, redactValue(a.Value.String()))
	}
	if a.Value.Kind() == slog.KindString {
		if s := a.Value.String(); s != "" {
			return slog.String(a.Key, r.RedactString(s))
		}
	}
	return a
}

func isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(lowerKey, sensitive) {
			return true
		}
	}
	return false
}

// redactValue keeps a four character hint of long values.
func redactValue(v string) string {
	if v == "" {
		return ""
	}
	if len(v) <= 8 {
		return "***"
	}
	return v[:4] + "***"
}

// RedactEmail redacts an email address partially (shows first char and domain).
func RedactEmail(email string) string {
	username, domain, ok := strings.Cut(email, "@")
	if !ok {
		return email
	}
	if username == "" {
		return "***@" + domain
	}
	return username[:1] + "***@" + domain
}
