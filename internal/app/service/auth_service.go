package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"codequest/internal/common"
	"codequest/internal/common/security"
	"codequest/internal/domain/model"
	"codequest/internal/domain/repository"
	"codequest/internal/platform/logger"

	"github.com/google/uuid"
)

const (
	minPasswordLength = 8
	maxUsernameLength = 32
)

type AuthService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	LoginField string `json:"login_field"` // Can be username or email
	Password   string `json:"password"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func (req *SignupRequest) validate() error {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return common.E(common.ErrValidation, "username, email and password are required")
	}
	if utf8.RuneCountInString(req.Username) > maxUsernameLength {
		return common.E(common.ErrValidation, fmt.Sprintf("username must be at most %d characters", maxUsernameLength))
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return common.E(common.ErrValidation, "email is not valid")
	}
	if len(req.Password) < minPasswordLength {
		return common.E(common.ErrValidation, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	return nil
}

func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hashedPassword,
		Role:           model.RoleUser, // Default role
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Repo returns a Conflict for taken usernames or emails
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := security.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	logger.FromContext(ctx).Info().Str("user_id", user.ID).Msg("user signed up")

	user.HashedPassword = "" // Clear password before returning
	return &AuthResponse{User: user, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	login := strings.TrimSpace(req.LoginField)
	if login == "" || req.Password == "" {
		return nil, common.E(common.ErrValidation, "login_field and password are required")
	}

	// Try finding by email first, then by username
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(login))
	if errors.Is(err, common.ErrNotFound) {
		user, err = s.userRepo.FindByUsername(ctx, login)
	}
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.E(common.ErrUnauthorized, "Invalid credentials") // Generic message for security
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, common.E(common.ErrUnauthorized, "Invalid credentials")
	}

	token, err := security.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = ""
	return &AuthResponse{User: user, Token: token}, nil
}
