package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/existflow/kawai/internal/api"
	"github.com/existflow/kawai/internal/logger"
	"github.com/existflow/kawai/internal/model"
	"github.com/existflow/kawai/internal/token"
)

// Validation limits
const (
	MinPhoneDigits = 10
	MinPassword    = 6
)

// ErrValidation marks input rejected before any request is made.
var ErrValidation = errors.New("validation failed")

// ValidationError names the offending field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Backend is the part of the API client used for credential flows
type Backend interface {
	AdminLogin(ctx context.Context, phone, password string) (*api.LoginResult, error)
	Register(ctx context.Context, r api.RegisterRequest) error
}

// Authenticator runs admin password login and registration
type Authenticator struct {
	backend  Backend
	sessions Sessions
	log      *logger.Logger
}

// NewAuthenticator creates an Authenticator
func NewAuthenticator(backend Backend, sessions Sessions) *Authenticator {
	return &Authenticator{
		backend:  backend,
		sessions: sessions,
		log:      logger.Default().WithFields(logger.F("component", "auth")),
	}
}

// ValidatePhone accepts digits only, at least MinPhoneDigits of them
func ValidatePhone(phone string) error {
	if phone == "" {
		return &ValidationError{Field: "phone_number", Message: "is required"}
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return &ValidationError{Field: "phone_number", Message: "must contain digits only"}
		}
	}
	if len(phone) < MinPhoneDigits {
		return &ValidationError{Field: "phone_number", Message: fmt.Sprintf("must be at least %d digits", MinPhoneDigits)}
	}
	return nil
}

// AdminLogin checks credentials with the backend and opens an admin session.
func (a *Authenticator) AdminLogin(ctx context.Context, phone, password string) (model.User, error) {
	phone = strings.TrimSpace(phone)
	if err := ValidatePhone(phone); err != nil {
		return model.User{}, err
	}
	if password == "" {
		return model.User{}, &ValidationError{Field: "password", Message: "is required"}
	}

	res, err := a.backend.AdminLogin(ctx, phone, password)
	if err != nil {
		a.log.Warn("admin login failed", logger.F("phone", phone), logger.F("error", err))
		return model.User{}, err
	}

	user := res.User
	if claims, err := token.Decode(res.Token); err == nil {
		if user.PhoneNumber == "" {
			user.PhoneNumber = claims.Phone()
		}
		if user.Name == "" {
			user.Name = claims.DisplayName()
		}
	}
	if user.PhoneNumber == "" {
		user.PhoneNumber = phone
	}
	if user.Name == "" {
		user.Name = "Admin"
	}
	user.Role = model.RoleAdmin

	if err := a.sessions.Login(ctx, user, res.Token); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// RegisterForm is the sign-up form
type RegisterForm struct {
	Name        string
	PhoneNumber string
	Password    string
	SecretCode  string // Optional invite code
}

// Validate checks the form without touching the network
func (f RegisterForm) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	if err := ValidatePhone(strings.TrimSpace(f.PhoneNumber)); err != nil {
		return err
	}
	if len(f.Password) < MinPassword {
		return &ValidationError{Field: "password", Message: fmt.Sprintf("must be at least %d characters", MinPassword)}
	}
	return nil
}

// Register validates the form and creates the account
func (a *Authenticator) Register(ctx context.Context, f RegisterForm) error {
	if err := f.Validate(); err != nil {
		return err
	}
	err := a.backend.Register(ctx, api.RegisterRequest{
		Name:        strings.TrimSpace(f.Name),
		PhoneNumber: strings.TrimSpace(f.PhoneNumber),
		Password:    f.Password,
		SecretCode:  strings.TrimSpace(f.SecretCode),
	})
	if err != nil {
		a.log.Warn("registration failed", logger.F("phone", f.PhoneNumber), logger.F("error", err))
		return err
	}
	a.log.Info("registered", logger.F("phone", f.PhoneNumber))
	return nil
}
