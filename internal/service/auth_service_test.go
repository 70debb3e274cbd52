package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/society-waste-service/internal/domain"
	apperrors "github.com/spec-kit/society-waste-service/pkg/util"
)

func TestSignupThenLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	account := env.signupSociety(t, "a@x.com")
	assert.NotEmpty(t, account.ID)
	assert.NotEqual(t, "pw1", account.PasswordHash)

	result, err := env.auth.LoginAccount(ctx, "a@x.com", "pw1")
	require.NoError(t, err)
	require.NotNil(t, result.Account)
	assert.Equal(t, account.ID, result.Account.ID)
	assert.False(t, result.IsAdmin())
	assert.NotEmpty(t, result.Token)
	assert.True(t, result.ExpiresAt.IsZero(), "tokens do not expire by default")

	_, err = env.auth.LoginAccount(ctx, "a@x.com", "wrong")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidCredentials))

	_, err = env.auth.LoginAccount(ctx, "nobody@x.com", "pw1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidCredentials))
}

func TestSignup_EmailIsNormalized(t *testing.T) {
	env := newTestEnv(t)

	account := env.signupSociety(t, "  A@X.com ")
	assert.Equal(t, "a@x.com", account.Email)

	_, err := env.auth.LoginAccount(context.Background(), "A@x.COM", "pw1")
	assert.NoError(t, err)
}

func TestSignup_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*SignupAccountInput)
	}{
		{"missing name", func(in *SignupAccountInput) { in.Name = "" }},
		{"blank email", func(in *SignupAccountInput) { in.Email = "   " }},
		{"missing password", func(in *SignupAccountInput) { in.Password = "" }},
		{"missing society", func(in *SignupAccountInput) { in.SocietyName = "" }},
		{"missing address", func(in *SignupAccountInput) { in.Address = "" }},
		{"missing contact person", func(in *SignupAccountInput) { in.ContactPerson = "" }},
		{"missing contact number", func(in *SignupAccountInput) { in.ContactNumber = "" }},
		{"zero families", func(in *SignupAccountInput) { in.TotalFamilies = 0 }},
		{"negative families", func(in *SignupAccountInput) { in.TotalFamilies = -3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := societyInput("v@x.com", "pw1")
			tt.mutate(&in)
			_, err := env.auth.SignupAccount(ctx, in)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation), "got %v", err)
		})
	}

	_, err := env.auth.SignupAdmin(ctx, SignupAdminInput{Name: "Admin", Email: "adm@x.com"}, "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestSignup_DuplicateEmailPerNamespace(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.signupSociety(t, "a@x.com")
	_, err := env.auth.SignupAccount(ctx, societyInput("a@x.com", "other"))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeDuplicateEmail))

	env.signupAdmin(t, "a@x.com")
	_, err = env.auth.SignupAdmin(ctx, SignupAdminInput{Name: "Again", Email: "a@x.com", Password: "x"}, "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeDuplicateEmail))
}

func TestSignupAdmin_Key(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.AdminSignupKey = "letmein"
	env := newTestEnvWithConfig(t, cfg)
	ctx := context.Background()
	in := SignupAdminInput{Name: "Admin", Email: "adm@x.com", Password: "pw"}

	_, err := env.auth.SignupAdmin(ctx, in, "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	_, err = env.auth.SignupAdmin(ctx, in, "wrong")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	admin, err := env.auth.SignupAdmin(ctx, in, "letmein")
	require.NoError(t, err)
	assert.NotEmpty(t, admin.ID)
}

func TestLoginAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.signupAdmin(t, "ops@x.com")

	result, err := env.auth.LoginAdmin(ctx, "ops@x.com", "adminpw")
	require.NoError(t, err)
	assert.True(t, result.IsAdmin())
	assert.Equal(t, admin.ID, result.Admin.ID)

	_, err = env.auth.LoginAccount(ctx, "ops@x.com", "adminpw")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidCredentials), "admins cannot use the society login")
}

func TestLoginAny(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	account := env.signupSociety(t, "shared@x.com")
	admin, err := env.auth.SignupAdmin(ctx, SignupAdminInput{Name: "Admin", Email: "shared@x.com", Password: "adminpw"}, "")
	require.NoError(t, err)
	env.signupAdmin(t, "ops@x.com")

	t.Run("society first", func(t *testing.T) {
		result, err := env.auth.LoginAny(ctx, "shared@x.com", "pw1")
		require.NoError(t, err)
		assert.False(t, result.IsAdmin())
		assert.Equal(t, account.ID, result.Account.ID)
		assert.Nil(t, result.Admin)
	})

	t.Run("falls back to admin", func(t *testing.T) {
		result, err := env.auth.LoginAny(ctx, "shared@x.com", "adminpw")
		require.NoError(t, err)
		assert.True(t, result.IsAdmin())
		assert.Equal(t, admin.ID, result.Admin.ID)
		assert.Nil(t, result.Account)
	})

	t.Run("admin only", func(t *testing.T) {
		result, err := env.auth.LoginAny(ctx, "ops@x.com", "adminpw")
		require.NoError(t, err)
		assert.True(t, result.IsAdmin())
	})

	t.Run("no match", func(t *testing.T) {
		_, err := env.auth.LoginAny(ctx, "shared@x.com", "nope")
		assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidCredentials))
	})
}

func TestAuthenticateAndLogout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	account := env.signupSociety(t, "a@x.com")

	result, err := env.auth.LoginAccount(ctx, "a@x.com", "pw1")
	require.NoError(t, err)

	principal, err := env.auth.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.SubjectTypeUser, principal.Session.SubjectType)
	require.NotNil(t, principal.Account)
	assert.Equal(t, account.ID, principal.Account.ID)
	assert.False(t, principal.IsAdmin())

	require.NoError(t, env.auth.Logout(ctx, principal.Session.ID))

	_, err = env.auth.Authenticate(ctx, result.Token)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
}

func TestAuthenticate_RejectsGarbage(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.auth.Authenticate(context.Background(), "not-a-jwt")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
}

func TestAuthenticate_AdminPrincipal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signupAdmin(t, "ops@x.com")

	result, err := env.auth.LoginAdmin(ctx, "ops@x.com", "adminpw")
	require.NoError(t, err)

	principal, err := env.auth.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.True(t, principal.IsAdmin())
	assert.Nil(t, principal.Account)
}
