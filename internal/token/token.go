// Package token reads the claims of a magic-link bearer token.
//
// Decoding never verifies a signature. The backend is the only authority on
// whether a token is valid; claims read here drive display and routing only
// and must not be used for access control.
package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token whose claims cannot be read.
var ErrInvalidToken = errors.New("invalid token")

// ExpiryPolicy decides how a token without an exp claim is treated.
type ExpiryPolicy string

const (
	// ExpiryLenient treats a missing exp as never expiring.
	ExpiryLenient ExpiryPolicy = "lenient"
	// ExpiryStrict treats a missing exp as already expired.
	ExpiryStrict ExpiryPolicy = "strict"
)

// DefaultName is shown when the token carries neither name nor username.
const DefaultName = "User"

var parser = jwt.NewParser(jwt.WithPaddingAllowed())

// Claims is the decoded, untrusted payload of a token.
type Claims struct {
	raw jwt.MapClaims
}

// Decode splits raw into its segments and parses the payload as JSON.
// Only the payload segment has to be readable; a broken header or a
// missing signature segment is tolerated.
// Any malformed input yields an error wrapping ErrInvalidToken.
func Decode(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidToken)
	}

	claims := jwt.MapClaims{}
	_, _, err := parser.ParseUnverified(raw, claims)
	// An unknown or missing alg only matters for verification, which never happens here.
	if err != nil && !errors.Is(err, jwt.ErrTokenUnverifiable) {
		claims, err = decodePayload(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}
	if len(claims) == 0 {
		return nil, fmt.Errorf("%w: no claims", ErrInvalidToken)
	}
	return &Claims{raw: claims}, nil
}

// decodePayload reads the second segment alone.
func decodePayload(raw string) (jwt.MapClaims, error) {
	parts := strings.Split(raw, ".")
	if len(parts) < 2 {
		return nil, errors.New("no payload segment")
	}
	seg, err := parser.DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("payload is not base64url: %w", err)
	}
	claims := jwt.MapClaims{}
	if err := json.Unmarshal(seg, &claims); err != nil {
		return nil, fmt.Errorf("payload is not a JSON object: %w", err)
	}
	return claims, nil
}

// Phone returns the first phone identifier present, in priority order
// user_phone, phone_number, phone, sub.
func (c *Claims) Phone() string {
	for _, key := range []string{"user_phone", "phone_number", "phone", "sub"} {
		if v := c.str(key); v != "" {
			return v
		}
	}
	return ""
}

// DisplayName returns name, then username, then DefaultName.
func (c *Claims) DisplayName() string {
	for _, key := range []string{"name", "username"} {
		if v := c.str(key); v != "" {
			return v
		}
	}
	return DefaultName
}

// Role returns the role claim, or "" when absent.
func (c *Claims) Role() string {
	return c.str("role")
}

// ExpiresAt returns the exp claim. ok is false when the claim is absent;
// err is set when it is present but unreadable.
func (c *Claims) ExpiresAt() (t time.Time, ok bool, err error) {
	if _, present := c.raw["exp"]; !present {
		return time.Time{}, false, nil
	}
	exp, err := c.raw.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, true, fmt.Errorf("%w: bad exp claim", ErrInvalidToken)
	}
	return exp.Time, true, nil
}

// Expired reports whether the token is past its exp at now.
// An unreadable exp always counts as expired.
func (c *Claims) Expired(now time.Time, policy ExpiryPolicy) bool {
	exp, ok, err := c.ExpiresAt()
	if err != nil {
		return true
	}
	if !ok {
		return policy == ExpiryStrict
	}
	return !now.Before(exp)
}

func (c *Claims) str(key string) string {
	switch v := c.raw[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
