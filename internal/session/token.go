package session

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// Expiry reads the exp claim from the payload segment without verifying the
// signature. ok is false for anything that is not a three-segment token with
// a decodable JSON object payload carrying a numeric exp.
func Expiry(token string) (time.Time, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[1] == "" {
		return time.Time{}, false
	}

	payload, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		return time.Time{}, false
	}

	var claims jwt.MapClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// IsExpired fails closed: a token whose expiry cannot be read is expired.
func IsExpired(token string, now time.Time) bool {
	exp, ok := Expiry(token)
	if !ok {
		return true
	}
	return !now.Before(exp)
}
