package security

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// TokenAuth verifies the session cookie on every request via
// jwtauth.Verifier in the router.
var TokenAuth *jwtauth.JWTAuth

func InitTokenAuth(secret []byte) {
	TokenAuth = jwtauth.New("HS256", secret, nil)
}

// GenerateSessionToken encodes a session token carrying the user id and the
// server-side session id (jti). The exp claim mirrors the Redis TTL on the
// session registry entry; whichever lapses first ends the session.
func GenerateSessionToken(userID, sessionID string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"sid":     sessionID,
		"exp":     time.Now().Add(ttl).Unix(),
		"iat":     time.Now().Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

func GetUserIDFromClaims(claims map[string]interface{}) (string, error) {
	id, ok := claims["user_id"].(string)
	if !ok || id == "" {
		return "", errors.New("user_id claim is missing or not a string")
	}
	return id, nil
}

func GetSessionIDFromClaims(claims map[string]interface{}) (string, error) {
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", errors.New("sid claim is missing or not a string")
	}
	return sid, nil
}
