package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidate(t *testing.T) {
	v := NewValidator("secret")
	token, err := v.Issue("user-42", time.Hour)
	require.NoError(t, err)

	claims, err := v.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestValidate_Rejects(t *testing.T) {
	v := NewValidator("secret")

	expired, err := v.Issue("user", -time.Minute)
	require.NoError(t, err)
	_, err = v.Validate(expired)
	assert.Error(t, err)

	other, err := NewValidator("other").Issue("user", time.Hour)
	require.NoError(t, err)
	_, err = v.Validate(other)
	assert.Error(t, err)

	_, err = v.Validate("garbage")
	assert.Error(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "user"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = v.Validate(noExp)
	assert.Error(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "user",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = v.Validate(hs512)
	assert.Error(t, err)
}

func TestNoSecret(t *testing.T) {
	v := NewValidator("")
	_, err := v.Validate("anything")
	assert.ErrorIs(t, err, ErrNoSecret)
	_, err = v.Issue("user", time.Hour)
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	assert.False(t, IsAuthenticated(ctx))

	ctx = WithClaims(ctx, &Claims{Subject: "u"})
	assert.True(t, IsAuthenticated(ctx))
	c, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u", c.Subject)

	assert.False(t, IsAuthenticated(WithClaims(context.Background(), nil)))
}
