package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Anuragsahu418/Educhat/internal/store"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")

	token, err := issuer.Issue("user-1")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	userId, err := issuer.Verify(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", userId)
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")
	other := NewTokenIssuer("other-secret")

	token, err := issuer.Issue("user-1")
	assert.NoError(t, err)

	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestTokenGarbage(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")

	_, err := issuer.Verify("not-a-token")
	assert.Error(t, err)
}

func TestPasswordHasher(t *testing.T) {
	hasher := NewPasswordHasher()

	hash, err := hasher.Hash("s3cret-password")
	assert.NoError(t, err)
	assert.NotEqual(t, "s3cret-password", hash)

	assert.NoError(t, hasher.Compare(hash, "s3cret-password"))
	assert.Error(t, hasher.Compare(hash, "wrong-password"))
}

func TestUserContext(t *testing.T) {
	_, ok := UserFromContext(context.Background())
	assert.False(t, ok)

	user := store.User{ID: "user-1", FullName: "Test User"}
	ctx := WithUser(context.Background(), user)

	got, ok := UserFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, user, got)
}
