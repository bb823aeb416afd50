package store

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/myruppin/portal-companion/internal/models"
	appErrors "github.com/myruppin/portal-companion/pkg/errors"
)

// TokenStore layers the domain accessors (token, credentials, grade snapshot)
// over a raw Store. The stored password is sealed when a store secret is
// configured.
type TokenStore struct {
	store  Store
	sealer *sealer
}

// NewTokenStore wraps the given backend. secret may be empty.
func NewTokenStore(s Store, secret string) *TokenStore {
	return &TokenStore{store: s, sealer: newSealer(secret)}
}

// Token returns the stored bearer token, or ErrNoToken when none is saved.
func (t *TokenStore) Token(ctx context.Context) (string, error) {
	v, err := t.store.Get(ctx, KeyAuthToken)
	if err != nil {
		if errors.Is(err, appErrors.ErrKeyNotFound) {
			return "", appErrors.Clone(appErrors.ErrNoToken, "")
		}
		return "", err
	}
	if v == "" {
		return "", appErrors.Clone(appErrors.ErrNoToken, "")
	}
	return v, nil
}

// SaveCredentials persists the token together with the login inputs so the
// service can re-login when the token expires.
func (t *TokenStore) SaveCredentials(ctx context.Context, token, studentID, password string) error {
	if t.sealer != nil {
		sealed, err := t.sealer.seal(password)
		if err != nil {
			return err
		}
		password = sealed
	}
	if err := t.store.Set(ctx, KeyAuthToken, token); err != nil {
		return err
	}
	if err := t.store.Set(ctx, KeyStudentID, studentID); err != nil {
		return err
	}
	return t.store.Set(ctx, KeyPassword, password)
}

// Credentials returns the stored student id and password, unsealing the
// password when sealing is enabled.
func (t *TokenStore) Credentials(ctx context.Context) (studentID, password string, err error) {
	studentID, err = t.store.Get(ctx, KeyStudentID)
	if err != nil {
		return "", "", err
	}
	password, err = t.store.Get(ctx, KeyPassword)
	if err != nil {
		return "", "", err
	}
	if t.sealer != nil {
		password, err = t.sealer.open(password)
		if err != nil {
			return "", "", err
		}
	}
	return studentID, password, nil
}

// SaveToken replaces only the bearer token (used by the refresh flow).
func (t *TokenStore) SaveToken(ctx context.Context, token string) error {
	return t.store.Set(ctx, KeyAuthToken, token)
}

// GradeSnapshot loads the persisted grade pairs; an absent key decodes as an
// empty snapshot (first run).
func (t *TokenStore) GradeSnapshot(ctx context.Context) ([]models.GradePair, error) {
	raw, err := t.store.Get(ctx, KeyGrades)
	if err != nil {
		if errors.Is(err, appErrors.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return DecodeSnapshot(raw), nil
}

// SaveGradeSnapshot persists the full snapshot, replacing the prior one.
func (t *TokenStore) SaveGradeSnapshot(ctx context.Context, pairs []models.GradePair) error {
	return t.store.Set(ctx, KeyGrades, EncodeSnapshot(pairs))
}

// TokenInfo inspects the stored token without verifying its signature; the
// portal owns the signing key, the service only wants the expiry for status
// reporting.
func (t *TokenStore) TokenInfo(ctx context.Context) models.TokenInfo {
	token, err := t.Token(ctx)
	if err != nil {
		return models.TokenInfo{}
	}

	info := models.TokenInfo{Present: true}
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return info
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return info
	}
	expAt := exp.Time
	info.ExpiresAt = &expAt
	info.Expired = time.Now().After(expAt)
	return info
}

// Clear wipes all persisted state (logout).
func (t *TokenStore) Clear(ctx context.Context) error {
	for _, key := range []string{KeyAuthToken, KeyStudentID, KeyPassword, KeyGrades} {
		if err := t.store.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}
