package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"os"
	"strings"
)

var (
	ErrMissingBearer = errors.New("missing bearer token")
	ErrInvalidToken  = errors.New("invalid token")
)

type Claims struct {
	Subject string
	Token   string
}

type Authenticator interface {
	Authenticate(r *http.Request) (Claims, error)
}

// TokenAuthenticator checks requests against a single static API token.
// An empty token disables the check entirely, which is the open demo
// mode.
type TokenAuthenticator struct {
	Token string
}

func NewAuthenticatorFromEnv() *TokenAuthenticator {
	return &TokenAuthenticator{Token: os.Getenv("ZENDA_API_TOKEN")}
}

func (a *TokenAuthenticator) Authenticate(r *http.Request) (Claims, error) {
	if a.Token == "" {
		return Claims{Subject: "anonymous"}, nil
	}

	bearer, err := extractBearer(r)
	if err != nil {
		return Claims{}, err
	}
	if subtle.ConstantTimeCompare([]byte(bearer), []byte(a.Token)) != 1 {
		return Claims{}, ErrInvalidToken
	}
	return Claims{Subject: "api", Token: bearer}, nil
}

func extractBearer(r *http.Request) (string, error) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", ErrMissingBearer
	}
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", ErrInvalidToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	if token == "" {
		return "", ErrInvalidToken
	}
	return token, nil
}
