package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myruppin/portal-companion/internal/models"
	appErrors "github.com/myruppin/portal-companion/pkg/errors"
)

func newTestTokenStore(t *testing.T, secret string) *TokenStore {
	t.Helper()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	return NewTokenStore(fs, secret)
}

func TestTokenStoreNoToken(t *testing.T) {
	ts := newTestTokenStore(t, "")
	_, err := ts.Token(context.Background())
	require.ErrorIs(t, err, appErrors.ErrNoToken)

	info := ts.TokenInfo(context.Background())
	assert.False(t, info.Present)
}

func TestTokenStoreSealsPassword(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	ts := NewTokenStore(fs, "store-secret")

	require.NoError(t, ts.SaveCredentials(ctx, "tok", "12345", "hunter2"))

	raw, err := fs.Get(ctx, KeyPassword)
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", raw)

	id, pw, err := ts.Credentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, "12345", id)
	assert.Equal(t, "hunter2", pw)
}

func TestTokenStorePlainPasswordWithoutSecret(t *testing.T) {
	ctx := context.Background()
	ts := newTestTokenStore(t, "")
	require.NoError(t, ts.SaveCredentials(ctx, "tok", "12345", "hunter2"))

	id, pw, err := ts.Credentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, "12345", id)
	assert.Equal(t, "hunter2", pw)
}

func TestTokenStoreTokenInfoReadsExpiry(t *testing.T) {
	ctx := context.Background()
	ts := newTestTokenStore(t, "")

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": exp.Unix(),
	}).SignedString([]byte("portal-side-key"))
	require.NoError(t, err)

	require.NoError(t, ts.SaveToken(ctx, token))
	info := ts.TokenInfo(ctx)
	assert.True(t, info.Present)
	require.NotNil(t, info.ExpiresAt)
	assert.Equal(t, exp.Unix(), info.ExpiresAt.Unix())
	assert.False(t, info.Expired)
}

func TestTokenStoreTokenInfoOpaqueToken(t *testing.T) {
	ctx := context.Background()
	ts := newTestTokenStore(t, "")
	require.NoError(t, ts.SaveToken(ctx, "not-a-jwt"))

	info := ts.TokenInfo(ctx)
	assert.True(t, info.Present)
	assert.Nil(t, info.ExpiresAt)
	assert.False(t, info.Expired)
}

func TestTokenStoreGradeSnapshotLifecycle(t *testing.T) {
	ctx := context.Background()
	ts := newTestTokenStore(t, "")

	snapshot, err := ts.GradeSnapshot(ctx)
	require.NoError(t, err)
	assert.Nil(t, snapshot)

	pairs := []models.GradePair{
		{Course: "Math", Grade: "90"},
		{Course: "Biology", Grade: models.NoGradeSentinel},
	}
	require.NoError(t, ts.SaveGradeSnapshot(ctx, pairs))

	snapshot, err = ts.GradeSnapshot(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, pairs, snapshot)
}

func TestTokenStoreClear(t *testing.T) {
	ctx := context.Background()
	ts := newTestTokenStore(t, "secret")
	require.NoError(t, ts.SaveCredentials(ctx, "tok", "12345", "pw"))
	require.NoError(t, ts.SaveGradeSnapshot(ctx, []models.GradePair{{Course: "Math", Grade: "90"}}))

	require.NoError(t, ts.Clear(ctx))

	_, err := ts.Token(ctx)
	require.ErrorIs(t, err, appErrors.ErrNoToken)
	snapshot, err := ts.GradeSnapshot(ctx)
	require.NoError(t, err)
	assert.Nil(t, snapshot)
}
