package auth

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

// DefaultLocalTokenTTL is how long issued development tokens stay valid.
const DefaultLocalTokenTTL = 24 * time.Hour

// LocalVerifier issues and validates HS256 tokens signed with a shared
// secret. It stands in for the hosted identity provider during development.
type LocalVerifier struct {
	secret []byte
	ttl    time.Duration
}

// NewLocalVerifier creates a LocalVerifier.
func NewLocalVerifier(secret string, ttl time.Duration) (*LocalVerifier, error) {
	if secret == "" {
		return nil, errors.New("local auth secret is empty")
	}
	if ttl <= 0 {
		ttl = DefaultLocalTokenTTL
	}
	return &LocalVerifier{secret: []byte(secret), ttl: ttl}, nil
}

func (v *LocalVerifier) Name() string { return "local" }

// IssueToken signs a token for email carrying the admin claim.
func (v *LocalVerifier) IssueToken(email string, admin bool) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   email,
		"email": email,
		"admin": admin,
		"exp":   now.Add(v.ttl).Unix(),
		"iat":   now.Unix(),
	})

	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate token")
	}
	return signed, nil
}

// Verify parses and validates a token issued by IssueToken.
func (v *LocalVerifier) Verify(_ context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, errors.Wrap(ErrInvalidToken, err.Error())
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	out := &Claims{}
	out.Subject, _ = claims["sub"].(string)
	out.Email, _ = claims["email"].(string)
	out.Admin, _ = claims["admin"].(bool)
	return out, nil
}
