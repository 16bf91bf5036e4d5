// ABOUTME: Tests for the session gate shared by every view
// ABOUTME: Uses the in-memory provider to cover configured, signed-out, and signed-in cases
package auth_test

import (
	"context"
	"testing"

	"github.com/harperreed/torque/auth"
	"github.com/harperreed/torque/auth/authtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireUser(t *testing.T) {
	_, err := auth.RequireUser(nil)
	assert.ErrorIs(t, err, auth.ErrProviderUnavailable)

	_, err = auth.RequireUser(auth.Unavailable())
	assert.ErrorIs(t, err, auth.ErrProviderUnavailable)

	fake := authtest.New("ada@example.com", "pw")
	_, err = auth.RequireUser(fake)
	assert.ErrorIs(t, err, auth.ErrNotSignedIn)

	_, err = fake.SignIn(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)

	user, err := auth.RequireUser(fake)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
}
