package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/myruppin/portal-companion/internal/models"
	appErrors "github.com/myruppin/portal-companion/pkg/errors"
)

type loginClient interface {
	Login(ctx context.Context, studentID, password string) (string, error)
}

type credentialStore interface {
	SaveCredentials(ctx context.Context, token, studentID, password string) error
	Credentials(ctx context.Context) (studentID, password string, err error)
	SaveToken(ctx context.Context, token string) error
	TokenInfo(ctx context.Context) models.TokenInfo
	Clear(ctx context.Context) error
}

// AuthService owns the login flow: exchanging credentials for a portal token
// and keeping both around so the token can be refreshed without user input.
type AuthService struct {
	client    loginClient
	store     credentialStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService constructs the service.
func NewAuthService(client loginClient, store credentialStore, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{client: client, store: store, validator: validate, logger: logger}
}

// Login authenticates against the portal and persists token plus credentials.
func (s *AuthService) Login(ctx context.Context, creds models.Credentials) (models.TokenInfo, error) {
	if err := s.validator.Struct(creds); err != nil {
		return models.TokenInfo{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "student_id and password are required")
	}

	token, err := s.client.Login(ctx, creds.StudentID, creds.Password)
	if err != nil {
		return models.TokenInfo{}, err
	}

	if err := s.store.SaveCredentials(ctx, token, creds.StudentID, creds.Password); err != nil {
		return models.TokenInfo{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "persist credentials")
	}

	s.logger.Info("login succeeded", zap.String("student_id", creds.StudentID))
	return s.store.TokenInfo(ctx), nil
}

// Refresh re-logs in with the stored credentials, replacing the token. It is
// the headless equivalent of the app's auto-login on startup.
func (s *AuthService) Refresh(ctx context.Context) (models.TokenInfo, error) {
	studentID, password, err := s.store.Credentials(ctx)
	if err != nil {
		return models.TokenInfo{}, appErrors.Wrap(err, appErrors.ErrNoToken.Code, appErrors.ErrNoToken.Status, "no stored credentials")
	}

	token, err := s.client.Login(ctx, studentID, password)
	if err != nil {
		return models.TokenInfo{}, err
	}

	if err := s.store.SaveToken(ctx, token); err != nil {
		return models.TokenInfo{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "persist token")
	}

	s.logger.Info("token refreshed")
	return s.store.TokenInfo(ctx), nil
}

// Status reports whether a token is stored and when it expires.
func (s *AuthService) Status(ctx context.Context) models.TokenInfo {
	return s.store.TokenInfo(ctx)
}

// Logout wipes all persisted state.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.store.Clear(ctx)
}
