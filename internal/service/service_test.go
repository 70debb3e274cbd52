package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/society-waste-service/internal/auth"
	"github.com/spec-kit/society-waste-service/internal/config"
	"github.com/spec-kit/society-waste-service/internal/domain"
	"github.com/spec-kit/society-waste-service/internal/events"
	"github.com/spec-kit/society-waste-service/internal/repository"
	"github.com/spec-kit/society-waste-service/internal/repository/memory"
	"github.com/spec-kit/society-waste-service/internal/storage"
)

type testEnv struct {
	store      *repository.Store
	sessions   auth.SessionStore
	dispatcher events.Dispatcher
	assets     *storage.LocalStore
	auth       *AuthService
	issues     *IssueService
}

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{JWTSecret: "test-secret", BcryptCost: 4},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithConfig(t, testConfig())
}

func newTestEnvWithConfig(t *testing.T, cfg config.Config) *testEnv {
	t.Helper()
	store := memory.NewStore()
	sessions := auth.NewMemorySessionStore()
	dispatcher := events.NewInMemoryDispatcher()
	assets, err := storage.NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	return &testEnv{
		store:      store,
		sessions:   sessions,
		dispatcher: dispatcher,
		assets:     assets,
		auth: NewAuthService(cfg, AuthDependencies{
			AccountRepo:  store.Accounts,
			AdminRepo:    store.Admins,
			SessionStore: sessions,
		}),
		issues: NewIssueService(IssueDependencies{
			IssueRepo:   store.Issues,
			AccountRepo: store.Accounts,
			HistoryRepo: store.History,
			Assets:      assets,
			Dispatcher:  dispatcher,
		}),
	}
}

func societyInput(email, password string) SignupAccountInput {
	return SignupAccountInput{
		Name:          "Green Acres",
		Email:         email,
		Password:      password,
		SocietyName:   "Green Acres CHS",
		Address:       "123 Main St",
		ContactPerson: "R. Rao",
		ContactNumber: "9800000000",
		TotalFamilies: 40,
	}
}

func (e *testEnv) signupSociety(t *testing.T, email string) *domain.Account {
	t.Helper()
	account, err := e.auth.SignupAccount(context.Background(), societyInput(email, "pw1"))
	require.NoError(t, err)
	return account
}

func (e *testEnv) signupAdmin(t *testing.T, email string) *domain.AdminAccount {
	t.Helper()
	admin, err := e.auth.SignupAdmin(context.Background(), SignupAdminInput{Name: "Admin", Email: email, Password: "adminpw"}, "")
	require.NoError(t, err)
	return admin
}
