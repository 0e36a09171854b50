package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("plan-1", "plans/plan-1/v2.csv")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	grant, err := signer.Parse(token, false)
	require.NoError(t, err)
	assert.Equal(t, "plan-1", grant.ResourceID)
	assert.Equal(t, "plans/plan-1/v2.csv", grant.Path)
	assert.WithinDuration(t, expiresAt, grant.ExpiresAt, time.Second)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	token, _, err := signer.Generate("plan-1", "plans/plan-1/v2.csv")
	require.NoError(t, err)
	signer.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	_, err = signer.Parse(token, false)
	assert.ErrorIs(t, err, ErrTokenExpired)

	grant, err := signer.Parse(token, true)
	require.NoError(t, err)
	assert.Equal(t, "plan-1", grant.ResourceID)
}

func TestSignedURLSignerRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("plan-1", "plans/plan-1/v2.csv")
	require.NoError(t, err)

	other := NewSignedURLSigner("other", time.Hour)
	_, err = other.Parse(token, false)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = signer.Parse("plan-1.123.abc", false)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, _, err = signer.Generate("plan.1", "x.csv")
	assert.Error(t, err)
}
