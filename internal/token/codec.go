// Package token decodes the payload of a compact signed-claims token
// (JWT-shaped). No signature verification happens here: the backend is
// the sole issuer and is trusted over the transport. Decode-only.
package token

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Claims is the decoded payload segment.
type Claims map[string]any

// identifierClaims is the fixed priority order for picking the
// user-identifying claim.
var identifierClaims = []string{
	"email", "account", "username", "user_email", "mail", "name", "sub", "id",
}

// Decode splits the token, base64url-decodes the middle segment and
// parses it as JSON. Returns ok=false on any malformed input instead of
// an error: callers treat undecodable the same as absent.
func Decode(tok string) (Claims, bool) {
	if tok == "" {
		return nil, false
	}
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return nil, false
	}
	// Tolerate both padded and unpadded segments.
	raw, err := base64URLDecode(parts[1])
	if err != nil {
		return nil, false
	}
	var c Claims
	if err := json.Unmarshal(raw, &c); err != nil || c == nil {
		return nil, false
	}
	return c, true
}

// ExtractIdentifier returns the first present identifying claim,
// stringified. Numeric ids render without a decimal point when whole.
func ExtractIdentifier(tok string) (string, bool) {
	c, ok := Decode(tok)
	if !ok {
		return "", false
	}
	for _, k := range identifierClaims {
		switch v := c[k].(type) {
		case string:
			if v != "" {
				return v, true
			}
		case float64:
			if v != 0 {
				return strconv.FormatFloat(v, 'f', -1, 64), true
			}
		}
	}
	return "", false
}

// IsExpired fails safe: an undecodable token or a missing exp claim
// counts as expired. exp is seconds since epoch.
func IsExpired(tok string) bool {
	c, ok := Decode(tok)
	if !ok {
		return true
	}
	exp, ok := c.ExpiresAt()
	if !ok {
		return true
	}
	return !time.Now().Before(exp)
}

// ExpiresAt returns the exp claim as a wall-clock instant.
func (c Claims) ExpiresAt() (time.Time, bool) {
	v, ok := c["exp"].(float64)
	if !ok {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(v * 1000)), true
}

func base64URLDecode(seg string) ([]byte, error) {
	// RawURLEncoding after stripping padding handles both variants.
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(seg, "="))
}
