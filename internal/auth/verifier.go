package auth

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is the per-request trust decision. The zero value is anonymous.
type Identity struct {
	UserID        uuid.UUID
	Authenticated bool
}

// Verifier classifies bearer credentials. It never rejects a request:
// a missing, malformed, badly signed or expired token all classify as
// anonymous, and authorization is left to each operation.
type Verifier struct {
	secret []byte
}

func NewVerifier(jwtSecret string) *Verifier {
	return &Verifier{secret: []byte(jwtSecret)}
}

// Verify turns the Authorization header value into an Identity.
func (v *Verifier) Verify(authorization string) Identity {
	if authorization == "" || !strings.HasPrefix(authorization, "Bearer ") {
		return Identity{}
	}

	tokenStr := strings.TrimPrefix(authorization, "Bearer ")

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Identity{}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return Identity{}
	}

	userID, err := uuid.Parse(sub)
	if err != nil {
		return Identity{}
	}

	return Identity{UserID: userID, Authenticated: true}
}
