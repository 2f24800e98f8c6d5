package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/five82/shelf/internal/storeapi"
)

// ErrInvalidCredentials is returned when the API rejects a login.
var ErrInvalidCredentials = errors.New("Invalid username or password")

// ValidationError reports form input rejected before anything is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Service runs the account flows against the API and the session.
type Service struct {
	api     storeapi.Accounts
	session *Session
}

// NewService returns a Service.
func NewService(api storeapi.Accounts, session *Session) *Service {
	return &Service{api: api, session: session}
}

// Session is the session the service writes to.
func (s *Service) Session() *Session {
	return s.session
}

// Login signs in and stores the returned token.
func (s *Service) Login(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return &ValidationError{Field: "username", Message: "Username and password are required"}
	}

	token, err := s.api.Login(ctx, storeapi.Credentials{Username: username, Password: password})
	if err != nil {
		var netErr *storeapi.NetworkError
		if errors.As(err, &netErr) && (netErr.Unauthorized() || netErr.Status == 400) {
			return ErrInvalidCredentials
		}
		return errors.Wrap(err, "login")
	}
	if err := s.session.Set(token); err != nil {
		return err
	}
	zctx.From(ctx).Info("Signed in", zap.String("username", username))
	return nil
}

// Logout drops the session token. Cart and favorites are kept.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.session.Clear(); err != nil {
		return err
	}
	zctx.From(ctx).Info("Signed out")
	return nil
}

// Register creates an account. It does not sign in.
func (s *Service) Register(ctx context.Context, r storeapi.Registration) (int, error) {
	if err := validateRegistration(r); err != nil {
		return 0, err
	}
	id, err := s.api.CreateUser(ctx, r)
	if err != nil {
		return 0, errors.Wrap(err, "Error creating account")
	}
	zctx.From(ctx).Info("Registered account", zap.Int("user_id", id), zap.String("username", r.Username))
	return id, nil
}

// RequestPasswordReset pretends to send a reset link. The demo API has no
// reset endpoint; the returned message is shown to the user.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return "", err
	}
	zctx.From(ctx).Info("Password reset requested")
	return fmt.Sprintf("Password reset link has been sent to %s (demo simulation).", email), nil
}

func validateRegistration(r storeapi.Registration) error {
	required := []struct {
		field, label, value string
	}{
		{"email", "Email", r.Email},
		{"username", "Username", r.Username},
		{"password", "Password", r.Password},
		{"firstname", "First name", r.FirstName},
		{"lastname", "Last name", r.LastName},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.field, Message: f.label + " is required"}
		}
	}
	return validateEmail(r.Email)
}

func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return &ValidationError{Field: "email", Message: "Email is required"}
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 || strings.ContainsAny(email, " \t") {
		return &ValidationError{Field: "email", Message: "Enter a valid email address"}
	}
	return nil
}
