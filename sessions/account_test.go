package sessions_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jrsteele09/go-ticket-client/auth"
	"github.com/jrsteele09/go-ticket-client/internal/testutil"
	"github.com/jrsteele09/go-ticket-client/internal/utils"
	"github.com/jrsteele09/go-ticket-client/sessions"
	"github.com/jrsteele09/go-ticket-client/users"
	"github.com/stretchr/testify/require"
)

func setupSignedIn(t *testing.T) *testFixture {
	t.Helper()
	f := setupTestFixture(t)
	f.seedSession(t, testutil.MintToken(t, f.now.Add(time.Hour)), &users.Profile{
		ID:        "7",
		Email:     "jo@example.com",
		FirstName: "Jo",
		Role:      users.RoleContractor,
	})
	require.NoError(t, f.manager.InitAuth(context.Background()))
	return f
}

func TestManager_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("merges the response", func(t *testing.T) {
		f := setupSignedIn(t)
		f.api.JSON(http.MethodPatch, "/api/auth/users/me/", http.StatusOK, map[string]any{"first_name": "Joanne", "phone_number": "+15550100"})

		updated, err := f.manager.UpdateProfile(ctx, users.ProfileUpdate{FirstName: utils.Ptr("Joanne")})
		require.NoError(t, err)
		require.Equal(t, "Joanne", updated.FirstName)
		require.Equal(t, "jo@example.com", updated.Email)
		require.Equal(t, users.RoleContractor, updated.Role)

		stored, err := auth.LoadProfile(ctx, f.store)
		require.NoError(t, err)
		require.Equal(t, "+15550100", stored.PhoneNumber)
	})

	t.Run("failure keeps the profile", func(t *testing.T) {
		f := setupSignedIn(t)
		f.api.JSON(http.MethodPatch, "/api/auth/users/me/", http.StatusBadRequest, map[string][]string{"phone_number": {"Enter a valid phone number."}})

		_, err := f.manager.UpdateProfile(ctx, users.ProfileUpdate{PhoneNumber: utils.Ptr("x")})
		require.Error(t, err)
		require.Equal(t, "phone_number: Enter a valid phone number.", f.manager.Error())
		require.Equal(t, "Jo", f.manager.User().FirstName)
		require.True(t, f.manager.IsVerified(ctx))
	})
}

func TestManager_Register(t *testing.T) {
	f := setupTestFixture(t)
	f.api.JSON(http.MethodPost, "/api/auth/users/", http.StatusBadRequest, map[string]any{})

	err := f.manager.Register(context.Background(), users.RegisterRequest{
		Username: "jo", Email: "jo@example.com", Password: "pw", ConfirmPassword: "pw", Role: users.RoleContractor,
	})
	require.Error(t, err)
	require.Equal(t, sessions.RegistrationFailedMsg, f.manager.Error())
	require.False(t, f.manager.IsAuthenticated(context.Background()))
}

func TestManager_ChangePassword(t *testing.T) {
	f := setupSignedIn(t)
	f.api.JSON(http.MethodPost, "/api/auth/users/set_password/", http.StatusBadRequest, map[string][]string{"current_password": {"Invalid password."}})

	err := f.manager.ChangePassword(context.Background(), "wrong", "new-pass")
	require.Error(t, err)
	require.Equal(t, "current_password: Invalid password.", f.manager.Error())
	require.True(t, f.manager.IsAuthenticated(context.Background()))
}

func TestManager_TwoFactor(t *testing.T) {
	ctx := context.Background()

	t.Run("enable marks the profile", func(t *testing.T) {
		f := setupSignedIn(t)
		f.api.JSON(http.MethodPost, "/api/users/two-factor/enable/", http.StatusOK, map[string]string{"message": "ok"})

		require.NoError(t, f.manager.EnableTwoFactor(ctx, "1234"))
		require.True(t, f.manager.User().TwoFactorEnabled)
		stored, err := auth.LoadProfile(ctx, f.store)
		require.NoError(t, err)
		require.True(t, stored.TwoFactorEnabled)
	})

	t.Run("enable failure reads the error field", func(t *testing.T) {
		f := setupSignedIn(t)
		f.api.JSON(http.MethodPost, "/api/users/two-factor/enable/", http.StatusBadRequest, map[string]string{"error": "Invalid code"})

		require.Error(t, f.manager.EnableTwoFactor(ctx, "0000"))
		require.Equal(t, "Invalid code", f.manager.Error())
		require.False(t, f.manager.User().TwoFactorEnabled)
	})

	t.Run("enable failure fallback", func(t *testing.T) {
		f := setupSignedIn(t)
		f.api.JSON(http.MethodPost, "/api/users/two-factor/enable/", http.StatusBadRequest, map[string]string{})

		require.Error(t, f.manager.EnableTwoFactor(ctx, "0000"))
		require.Equal(t, sessions.TwoFactorEnableFailMsg, f.manager.Error())
	})

	t.Run("disable clears the flag", func(t *testing.T) {
		f := setupSignedIn(t)
		f.api.JSON(http.MethodPost, "/api/users/two-factor/enable/", http.StatusOK, map[string]string{})
		f.api.JSON(http.MethodPost, "/api/users/two-factor/disable/", http.StatusOK, map[string]string{})

		require.NoError(t, f.manager.EnableTwoFactor(ctx, "1234"))
		require.NoError(t, f.manager.DisableTwoFactor(ctx))
		require.False(t, f.manager.User().TwoFactorEnabled)
	})
}
