package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"storefront/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = &domain.Problem{Kind: domain.ErrValidation, Message: "a user with that email does not exist or the password is incorrect"}
	// ErrInvalidAPIKey indicates the provided API key matches no user.
	ErrInvalidAPIKey = &domain.Problem{Kind: domain.ErrValidation, Message: "invalid API key"}
	// ErrSetupDone is returned when setup is attempted after the first user exists.
	ErrSetupDone = domain.Rule("setup has already been completed")
	// ErrEmailTaken is returned when an account already uses the email.
	ErrEmailTaken = domain.Rule("a user with that email address already exists")
)

type userRepo interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByAPIKey(ctx context.Context, key string) (*domain.User, error)
	SetAPIKey(ctx context.Context, id, key string) error
}

// Service handles admin setup, login and API keys.
type Service struct {
	repo        userRepo
	logger      *log.Logger
	passwordMin int
	newKey      func() (string, error)
}

func New(repo userRepo, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, logger: logger, passwordMin: 8, newKey: randomKey}
}

// SetupInput captures the first administrator account.
type SetupInput struct {
	Name     string `json:"usersName"`
	Email    string `json:"userEmail"`
	Password string `json:"userPassword"`
}

// Setup creates the owner account. It only succeeds while no users exist.
func (s *Service) Setup(ctx context.Context, in SetupInput) (*domain.User, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, ErrSetupDone
	}

	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.Invalid("a valid email is required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name is required")
	}
	password := in.Password
	if err := validatePassword(password, s.passwordMin); err != nil {
		return nil, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.Create(ctx, domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		IsAdmin:      true,
		IsOwner:      true,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.logger.Printf("user service: setup owner id=%s", u.ID)
	return u, nil
}

// Login validates credentials.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Authenticate resolves the user owning an API key.
func (s *Service) Authenticate(ctx context.Context, apiKey string) (*domain.User, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrInvalidAPIKey
	}
	u, err := s.repo.GetByAPIKey(ctx, apiKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidAPIKey
		}
		return nil, err
	}
	return u, nil
}

// CreateAPIKey issues a fresh API key for the user, replacing any previous one.
func (s *Service) CreateAPIKey(ctx context.Context, userID string) (string, error) {
	for i := 0; i < 5; i++ {
		key, err := s.newKey()
		if err != nil {
			return "", err
		}
		err = s.repo.SetAPIKey(ctx, userID, key)
		if err == nil {
			return key, nil
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.NotFound("user not found")
		}
		return "", err
	}
	return "", errors.New("api key collision")
}

// SessionUser is the subset of u kept on a logged-in session.
func SessionUser(u *domain.User) *domain.SessionUser {
	return &domain.SessionUser{ID: u.ID, Name: u.Name, Email: u.Email, IsAdmin: u.IsAdmin, StoreID: u.StoreID}
}

func validatePassword(p string, min int) error {
	if len(p) < min {
		return domain.Invalid(fmt.Sprintf("password must be at least %d characters", min))
	}
	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, r := range p {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return domain.Invalid("password must contain at least 1 uppercase letter, 1 lowercase letter, and 1 number")
	}
	return nil
}
