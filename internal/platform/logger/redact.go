package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"
)

// redactor rewrites sensitive log values before they reach zap. Keys are
// matched by substring, case-insensitively.
type redactor struct {
	enabled bool
	salt    string
	secret  []string
	hashed  []string
}

var (
	redactorOnce sync.Once
	active       *redactor
)

func currentRedactor() *redactor {
	redactorOnce.Do(func() {
		active = newRedactor(os.Getenv("LOG_REDACTION_ENABLED"), os.Getenv("LOG_HASH_SALT"))
	})
	return active
}

func newRedactor(enabled, salt string) *redactor {
	on := true
	switch strings.ToLower(strings.TrimSpace(enabled)) {
	case "0", "false", "no", "off":
		on = false
	}
	return &redactor{
		enabled: on,
		salt:    strings.TrimSpace(salt),
		secret:  []string{"token", "authorization", "password", "secret", "cookie", "api_key", "apikey", "email"},
		hashed:  []string{"user_id"},
	}
}

func scrub(kv []interface{}) []interface{} {
	r := currentRedactor()
	if !r.enabled || len(kv) == 0 {
		return kv
	}
	return r.pairs(kv)
}

func (r *redactor) pairs(kv []interface{}) []interface{} {
	out := make([]interface{}, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		out[i+1] = r.value(fmt.Sprint(out[i]), out[i+1])
	}
	return out
}

func (r *redactor) value(key string, v interface{}) interface{} {
	key = strings.ToLower(key)
	switch {
	case matchAny(key, r.secret):
		return "[REDACTED]"
	case matchAny(key, r.hashed):
		return r.hash(fmt.Sprint(v))
	}
	switch t := v.(type) {
	case string:
		if isBearerLike(t) {
			return "[REDACTED]"
		}
	case map[string]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, inner := range t {
			m[k] = r.value(k, inner)
		}
		return m
	}
	return v
}

func (r *redactor) hash(raw string) string {
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(r.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:6])
}

func matchAny(key string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(key, f) {
			return true
		}
	}
	return false
}

// isBearerLike catches JWTs logged under an innocent key.
func isBearerLike(s string) bool {
	s = strings.TrimPrefix(s, "Bearer ")
	return strings.HasPrefix(s, "eyJ") && strings.Count(s, ".") == 2
}
