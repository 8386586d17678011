package api

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

const (
	uidClaim = "uid"
	expClaim = "exp"

	identityTokenTTL = 365 * 24 * time.Hour
)

// TokenManager mints and verifies durable-identity tokens. It is the
// identity oracle the room engine consults for lock ownership and
// moderation commands.
type TokenManager struct {
	signingKey []byte
}

func NewTokenManager(signingKey []byte) *TokenManager {
	return &TokenManager{signingKey: signingKey}
}

// MintIdentity generates a fresh durable identity and its proof token.
func (tm *TokenManager) MintIdentity() (uid, token string, err error) {
	uid = uuid.NewString()
	token, err = tm.TokenForUid(uid)
	return uid, token, err
}

// TokenForUid signs a proof token for an existing identity.
func (tm *TokenManager) TokenForUid(uid string) (string, error) {
	claims := jwt.MapClaims{
		uidClaim: uid,
		expClaim: time.Now().Add(identityTokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign identity token: %w", err)
	}
	return signed, nil
}

// VerifyIdentity implements server.TokenVerifier: the token must be
// validly signed, unexpired, and carry the claimed uid.
func (tm *TokenManager) VerifyIdentity(uid, tokenString string) bool {
	if uid == "" || tokenString == "" {
		return false
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return tm.signingKey, nil
	})
	if err != nil || !token.Valid {
		return false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}

	tokenUid, ok := claims[uidClaim].(string)
	return ok && tokenUid == uid
}
