package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/society-waste-service/internal/auth"
	"github.com/spec-kit/society-waste-service/internal/config"
	"github.com/spec-kit/society-waste-service/internal/domain"
	"github.com/spec-kit/society-waste-service/internal/repository"
	apperrors "github.com/spec-kit/society-waste-service/pkg/util"
)

// AuthService coordinates registration, login and session resolution.
type AuthService struct {
	accounts       repository.AccountRepository
	admins         repository.AdminRepository
	sessions       auth.SessionStore
	tokenMgr       *auth.TokenManager
	bcryptCost     int
	adminSignupKey string
	dummyHash      string
	logger         *zap.Logger
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	AccountRepo  repository.AccountRepository
	AdminRepo    repository.AdminRepository
	SessionStore auth.SessionStore
	Logger       *zap.Logger
}

// SignupAccountInput carries the society registration form.
type SignupAccountInput struct {
	Name          string
	Email         string
	Password      string
	SocietyName   string
	Address       string
	ContactPerson string
	ContactNumber string
	TotalFamilies int
}

// SignupAdminInput carries the administrator registration form.
type SignupAdminInput struct {
	Name     string
	Email    string
	Password string
}

// LoginResult is the identity handed back to the client on a successful login.
// Exactly one of Account and Admin is set.
type LoginResult struct {
	Account   *domain.Account
	Admin     *domain.AdminAccount
	Session   domain.Session
	Token     string
	ExpiresAt time.Time
}

// IsAdmin reports whether the login resolved to an administrator.
func (r *LoginResult) IsAdmin() bool {
	return r != nil && r.Admin != nil
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	// Unknown emails are checked against this hash so they cost the same as a wrong password.
	dummy, err := auth.HashPassword(uuid.NewString(), cfg.Auth.BcryptCost)
	if err != nil {
		logger.Warn("dummy password hash unavailable", zap.Error(err))
	}
	return &AuthService{
		accounts:       deps.AccountRepo,
		admins:         deps.AdminRepo,
		sessions:       deps.SessionStore,
		tokenMgr:       auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost:     cfg.Auth.BcryptCost,
		adminSignupKey: cfg.Auth.AdminSignupKey,
		dummyHash:      dummy,
		logger:         logger,
	}
}

// SignupAccount registers a society.
func (s *AuthService) SignupAccount(ctx context.Context, input SignupAccountInput) (*domain.Account, error) {
	account := &domain.Account{
		Name:          strings.TrimSpace(input.Name),
		Email:         normalizeEmail(input.Email),
		SocietyName:   strings.TrimSpace(input.SocietyName),
		Address:       strings.TrimSpace(input.Address),
		ContactPerson: strings.TrimSpace(input.ContactPerson),
		ContactNumber: strings.TrimSpace(input.ContactNumber),
		TotalFamilies: input.TotalFamilies,
	}

	missing := missingFields(map[string]string{
		"name":          account.Name,
		"email":         account.Email,
		"password":      strings.TrimSpace(input.Password),
		"societyName":   account.SocietyName,
		"address":       account.Address,
		"contactPerson": account.ContactPerson,
		"contactNumber": account.ContactNumber,
	})
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("All fields are required", map[string]any{"fields": missing})
	}
	if account.TotalFamilies <= 0 {
		return nil, apperrors.NewValidationError("totalFamilies must be a positive integer", map[string]any{"fields": []string{"totalFamilies"}})
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	account.PasswordHash = hash

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewDuplicateEmail(account.Email)
		}
		return nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("society registered", zap.String("account_id", account.ID))
	return account, nil
}

// SignupAdmin registers an administrator. When an admin signup key is configured the
// caller must present it.
func (s *AuthService) SignupAdmin(ctx context.Context, input SignupAdminInput, signupKey string) (*domain.AdminAccount, error) {
	if s.adminSignupKey != "" && subtle.ConstantTimeCompare([]byte(signupKey), []byte(s.adminSignupKey)) != 1 {
		return nil, apperrors.NewForbidden("admin signup key required")
	}

	admin := &domain.AdminAccount{
		Name:  strings.TrimSpace(input.Name),
		Email: normalizeEmail(input.Email),
	}
	missing := missingFields(map[string]string{
		"name":     admin.Name,
		"email":    admin.Email,
		"password": strings.TrimSpace(input.Password),
	})
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("All fields are required", map[string]any{"fields": missing})
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	admin.PasswordHash = hash

	if err := s.admins.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewDuplicateEmail(admin.Email)
		}
		return nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("admin registered", zap.String("admin_id", admin.ID))
	return admin, nil
}

// LoginAccount authenticates a society user.
func (s *AuthService) LoginAccount(ctx context.Context, email, password string) (*LoginResult, error) {
	account, err := s.verifyAccount(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, domain.SubjectTypeUser, account.ID, func(r *LoginResult) { r.Account = account })
}

// LoginAdmin authenticates an administrator.
func (s *AuthService) LoginAdmin(ctx context.Context, email, password string) (*LoginResult, error) {
	admin, err := s.verifyAdmin(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, domain.SubjectTypeAdmin, admin.ID, func(r *LoginResult) { r.Admin = admin })
}

// LoginAny serves the unified login form: the society namespace is tried first and the
// administrator namespace only when that fails, so an email present in both resolves to the society.
func (s *AuthService) LoginAny(ctx context.Context, email, password string) (*LoginResult, error) {
	result, err := s.LoginAccount(ctx, email, password)
	if err == nil || !apperrors.HasCode(err, apperrors.CodeInvalidCredentials) {
		return result, err
	}
	return s.LoginAdmin(ctx, email, password)
}

// Logout revokes the session behind a token.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// Authenticate resolves a bearer token to the principal of a live session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Principal, error) {
	claims, err := s.tokenMgr.ParseToken(token)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}

	session, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, auth.ErrSessionNotFound) {
			return nil, apperrors.NewUnauthorized("session ended")
		}
		return nil, apperrors.NewInternalError(err)
	}
	if session.SubjectType != claims.Subject {
		return nil, apperrors.NewUnauthorized("invalid token")
	}

	principal := &auth.Principal{Session: *session}
	switch session.SubjectType {
	case domain.SubjectTypeUser:
		account, err := s.accounts.GetByID(ctx, session.SubjectID)
		if err != nil {
			return nil, subjectLookupError(err)
		}
		principal.Account = account
	case domain.SubjectTypeAdmin:
		admin, err := s.admins.GetByID(ctx, session.SubjectID)
		if err != nil {
			return nil, subjectLookupError(err)
		}
		principal.Admin = admin
	default:
		return nil, apperrors.NewUnauthorized("invalid token")
	}
	return principal, nil
}

func (s *AuthService) verifyAccount(ctx context.Context, email, password string) (*domain.Account, error) {
	account, err := s.accounts.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, s.lookupFailure(err, password)
	}
	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		return nil, apperrors.NewInvalidCredentials()
	}
	return account, nil
}

func (s *AuthService) verifyAdmin(ctx context.Context, email, password string) (*domain.AdminAccount, error) {
	admin, err := s.admins.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, s.lookupFailure(err, password)
	}
	if err := auth.ComparePassword(admin.PasswordHash, password); err != nil {
		return nil, apperrors.NewInvalidCredentials()
	}
	return admin, nil
}

func (s *AuthService) lookupFailure(err error, password string) error {
	if errors.Is(err, repository.ErrNotFound) {
		_ = auth.ComparePassword(s.dummyHash, password)
		return apperrors.NewInvalidCredentials()
	}
	return apperrors.NewInternalError(err)
}

func (s *AuthService) startSession(ctx context.Context, subjectType domain.SubjectType, subjectID string, fill func(*LoginResult)) (*LoginResult, error) {
	session := domain.Session{
		ID:          uuid.NewString(),
		SubjectType: subjectType,
		SubjectID:   subjectID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	token, exp, err := s.tokenMgr.GenerateToken(session)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	result := &LoginResult{Session: session, Token: token, ExpiresAt: exp}
	fill(result)
	return result, nil
}

func subjectLookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewUnauthorized("account no longer exists")
	}
	return apperrors.NewInternalError(err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func missingFields(fields map[string]string) []string {
	var missing []string
	for name, value := range fields {
		if value == "" {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}
