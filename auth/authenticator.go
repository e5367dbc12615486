// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/juju/errors"

	"github.com/danielhkuo/smartgarden/models"
)

// Credentials looks up users by the secrets they present.
type Credentials interface {
	UserByTokenHash(ctx context.Context, hash string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Authenticator resolves the principal of a request from its
// Authorization header. Bearer tokens and HTTP Basic are accepted.
type Authenticator struct {
	creds Credentials
	salt  string
}

func NewAuthenticator(creds Credentials, tokenSalt string) *Authenticator {
	return &Authenticator{creds: creds, salt: tokenSalt}
}

// Authenticate returns an Unauthorized error when the request carries no
// usable credentials.
func (a *Authenticator) Authenticate(r *http.Request) (*Principal, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, errors.Unauthorizedf("authentication credentials were not provided")
	}

	if email, password, ok := r.BasicAuth(); ok {
		return a.password(r.Context(), email, password)
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !(strings.EqualFold(scheme, "Bearer") || strings.EqualFold(scheme, "Token")) {
		return nil, errors.Unauthorizedf("unsupported authorization scheme")
	}
	return a.token(r.Context(), strings.TrimSpace(token))
}

func (a *Authenticator) token(ctx context.Context, token string) (*Principal, error) {
	hash, err := HashToken(token, a.salt)
	if err != nil {
		return nil, errors.Unauthorizedf("invalid token")
	}

	user, err := a.creds.UserByTokenHash(ctx, hash)
	if errors.Is(err, errors.NotFound) {
		return nil, errors.Unauthorizedf("invalid token")
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Principal{User: *user}, nil
}

func (a *Authenticator) password(ctx context.Context, email, password string) (*Principal, error) {
	user, err := a.creds.UserByEmail(ctx, email)
	if errors.Is(err, errors.NotFound) {
		return nil, errors.Unauthorizedf("invalid email or password")
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return nil, errors.Unauthorizedf("invalid email or password")
	}
	return &Principal{User: *user}, nil
}

// IssueToken generates a token for userID, stores its hash and returns
// the plain token. Used by provisioning tools.
func IssueToken(ctx context.Context, store TokenStore, userID uint, name, salt string) (string, error) {
	token, err := GenerateToken()
	if err != nil {
		return "", err
	}
	hash, err := HashToken(token, salt)
	if err != nil {
		return "", err
	}
	if err := store.CreateToken(ctx, &models.AuthToken{UserID: userID, Name: name, TokenHash: hash}); err != nil {
		return "", errors.Annotatef(err, "storing token for user %d", userID)
	}
	return token, nil
}

// TokenStore persists token hashes.
type TokenStore interface {
	CreateToken(ctx context.Context, token *models.AuthToken) error
}
