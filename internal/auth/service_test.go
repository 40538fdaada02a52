package auth

import (
	"context"
	"testing"
	"time"

	pkgAuth "github.com/DevStdio379/settisfy-web/pkg/auth"
	"github.com/DevStdio379/settisfy-web/pkg/auth/session"
	"github.com/DevStdio379/settisfy-web/pkg/config"
	"github.com/DevStdio379/settisfy-web/pkg/db/models"
	"github.com/DevStdio379/settisfy-web/pkg/enums"
	pkgerrors "github.com/DevStdio379/settisfy-web/pkg/errors"
	"github.com/DevStdio379/settisfy-web/pkg/security"
	"github.com/google/uuid"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "secret",
	Issuer:            "settisfy",
	ExpirationMinutes: 30,
	RefreshTokenDays:  14,
}

func TestServiceLoginSettlerCarriesUser(t *testing.T) {
	password := "settler-secret"
	userID := uuid.New()
	account := &models.OperatorAccount{
		ID:           uuid.New(),
		Email:        "settler@settisfy.test",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.AccountRoleSettler,
		UserID:       &userID,
		IsActive:     true,
	}
	svc, sessions := buildTestService(t, account)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: account.Email, Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != enums.AccountRoleSettler {
		t.Fatalf("expected settler role claim, got %s", claims.Role)
	}
	if claims.UserID == nil || *claims.UserID != userID {
		t.Fatalf("expected user id claim %s, got %v", userID, claims.UserID)
	}
	if claims.ID != sessions.lastAccessID {
		t.Fatalf("expected jti %s, got %s", sessions.lastAccessID, claims.ID)
	}
	if resp.RefreshToken != "refresh-1" {
		t.Fatalf("unexpected refresh token %q", resp.RefreshToken)
	}
	if resp.Account.LastLoginAt == nil {
		t.Fatalf("expected last login to be recorded")
	}
}

func TestServiceLoginRejectsBadCredentials(t *testing.T) {
	password := "admin-secret"
	account := &models.OperatorAccount{
		ID:           uuid.New(),
		Email:        "admin@settisfy.test",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.AccountRoleAdmin,
		IsActive:     true,
	}
	svc, _ := buildTestService(t, account)

	cases := []struct {
		name string
		req  LoginRequest
	}{
		{name: "wrong password", req: LoginRequest{Email: account.Email, Password: "nope"}},
		{name: "unknown email", req: LoginRequest{Email: "ghost@settisfy.test", Password: password}},
		{name: "blank email", req: LoginRequest{Email: " ", Password: password}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tc.req)
			if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
				t.Fatalf("expected unauthorized, got %v", err)
			}
		})
	}

	account.IsActive = false
	if _, err := svc.Login(context.Background(), LoginRequest{Email: account.Email, Password: password}); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected inactive account to be rejected, got %v", err)
	}
}

func TestServiceRefreshRotatesSession(t *testing.T) {
	password := "customer-secret"
	userID := uuid.New()
	account := &models.OperatorAccount{
		ID:           uuid.New(),
		Email:        "customer@settisfy.test",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.AccountRoleCustomer,
		UserID:       &userID,
		IsActive:     true,
	}
	svc, sessions := buildTestService(t, account)

	login, err := svc.Login(context.Background(), LoginRequest{Email: account.Email, Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	firstAccess := sessions.lastAccessID

	refreshed, err := svc.Refresh(context.Background(), RefreshRequest{AccessToken: login.AccessToken, RefreshToken: login.RefreshToken})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, ok := sessions.active[firstAccess]; ok {
		t.Fatalf("expected old session to be dropped")
	}
	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, refreshed.AccessToken)
	if err != nil {
		t.Fatalf("parse refreshed token: %v", err)
	}
	if claims.ID == firstAccess {
		t.Fatalf("expected a new jti after refresh")
	}

	if _, err := svc.Refresh(context.Background(), RefreshRequest{AccessToken: login.AccessToken, RefreshToken: login.RefreshToken}); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected reused refresh token to be rejected, got %v", err)
	}

	if err := svc.Logout(context.Background(), claims.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.active) != 0 {
		t.Fatalf("expected no sessions after logout, got %d", len(sessions.active))
	}
}

func buildTestService(t *testing.T, account *models.OperatorAccount) (Service, *stubSessionManager) {
	t.Helper()
	sessions := &stubSessionManager{active: map[string]stubSession{}}
	svc, err := NewService(ServiceParams{
		Accounts:       &stubAccountRepo{account: account},
		SessionManager: sessions,
		JWTConfig:      testJWTConfig,
		Clock:          func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, sessions
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

type stubAccountRepo struct {
	account  *models.OperatorAccount
	rehashes []string
}

func (s *stubAccountRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.OperatorAccount, error) {
	if s.account == nil || s.account.ID != id {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
	}
	return s.account, nil
}

func (s *stubAccountRepo) FindByEmail(ctx context.Context, email string) (*models.OperatorAccount, error) {
	if s.account == nil || s.account.Email != email {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
	}
	return s.account, nil
}

func (s *stubAccountRepo) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time, rehash string) error {
	if s.account != nil && s.account.ID == id {
		s.account.LastLoginAt = &at
		s.rehashes = append(s.rehashes, rehash)
	}
	return nil
}

type stubSession struct {
	accountID uuid.UUID
	refresh   string
}

type stubSessionManager struct {
	active       map[string]stubSession
	issued       int
	lastAccessID string
}

func (s *stubSessionManager) Start(ctx context.Context, accountID uuid.UUID) (session.Issued, error) {
	s.issued++
	issued := session.Issued{
		AccessID:     uuid.NewString(),
		RefreshToken: "refresh-" + string(rune('0'+s.issued)),
		AccountID:    accountID,
	}
	s.active[issued.AccessID] = stubSession{accountID: accountID, refresh: issued.RefreshToken}
	s.lastAccessID = issued.AccessID
	return issued, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (session.Issued, error) {
	current, ok := s.active[oldAccessID]
	if !ok || current.refresh != provided {
		return session.Issued{}, session.ErrInvalidRefreshToken
	}
	delete(s.active, oldAccessID)
	return s.Start(ctx, current.accountID)
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	delete(s.active, accessID)
	return nil
}

func TestServiceLoginUpgradesWeakHash(t *testing.T) {
	password := "operator-secret"
	account := &models.OperatorAccount{
		ID:           uuid.New(),
		Email:        "ops@settisfy.test",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.AccountRoleAdmin,
		IsActive:     true,
	}
	repo := &stubAccountRepo{account: account}
	stronger := config.PasswordConfig{ArgonMemoryKB: 16, ArgonTime: 2}
	svc, err := NewService(ServiceParams{
		Accounts:       repo,
		SessionManager: &stubSessionManager{active: map[string]stubSession{}},
		JWTConfig:      testJWTConfig,
		PasswordConfig: stronger,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	if _, err := svc.Login(context.Background(), LoginRequest{Email: account.Email, Password: password}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if len(repo.rehashes) != 1 || repo.rehashes[0] == "" {
		t.Fatalf("expected a rehash to be recorded, got %v", repo.rehashes)
	}
	if security.NeedsRehash(repo.rehashes[0], stronger) {
		t.Fatalf("new hash should satisfy the current settings")
	}
	if ok, _ := security.VerifyPassword(password, repo.rehashes[0]); !ok {
		t.Fatalf("new hash should verify the same password")
	}
}
