package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"autoshop/internal/config"
	"autoshop/internal/models"
	"autoshop/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Token types carried in the "type" claim.
const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

// Claims are the JWT claims issued by AuthService.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	Type     string `json:"type"`
	jwt.StandardClaims
}

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	Username   string `json:"username" validate:"required,min=3,max=150"`
	Email      string `json:"email" validate:"required,email,max=255"`
	Password   string `json:"password" validate:"required,min=8,max=128"`
	RePassword string `json:"re_password" validate:"required,eqfield=Password"`
	Phone      string `json:"phone" validate:"max=50"`
	Address    string `json:"address"`
}

// LoginInput is the sign-in payload.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is returned on successful sign-in.
type LoginResult struct {
	AuthToken    string       `json:"auth_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"-"`
}

// ProfileInput is a partial profile update; nil fields are left unchanged.
type ProfileInput struct {
	Email   *string `json:"email" validate:"omitempty,email,max=255"`
	Phone   *string `json:"phone" validate:"omitempty,max=50"`
	Address *string `json:"address"`
}

// ChangePasswordInput is the password change payload.
type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
	ReNewPassword   string `json:"re_new_password" validate:"required,eqfield=NewPassword"`
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, cfg config.JWTConfig, logger zerolog.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(cfg.Secret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		logger:     logger.With().Str("service", "auth").Logger(),
	}
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// RegisterUser validates in, hashes the password and stores the new user.
func (s *AuthService) RegisterUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	normalized, phoneErr := normalizePhone("phone", in.Phone)
	var usernameErr, emailErr error
	if taken, err := s.taken(ctx, s.userRepo.GetByUsername, in.Username); err != nil {
		return nil, err
	} else if taken {
		usernameErr = models.FieldError("username", "A user with that username already exists.")
	}
	if taken, err := s.taken(ctx, s.userRepo.GetByEmail, in.Email); err != nil {
		return nil, err
	} else if taken {
		emailErr = models.FieldError("email", "A user with that email already exists.")
	}
	if err := mergeFields(phoneErr, usernameErr, emailErr); err != nil {
		return nil, err
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hashed,
		Phone:    normalized,
		Address:  in.Address,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return user, nil
}

// taken reports whether lookup finds an existing user for value.
func (s *AuthService) taken(ctx context.Context, lookup func(context.Context, string) (*models.User, error), value string) (bool, error) {
	_, err := lookup(ctx, value)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, models.ErrUserNotFound):
		return false, nil
	default:
		return false, err
	}
}

// LoginUser authenticates a user and returns an access and a refresh token.
func (s *AuthService) LoginUser(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	access, err := s.issue(user, TokenAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.issue(user, TokenRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AuthToken: access, RefreshToken: refresh, User: user}, nil
}

// RefreshToken exchanges a valid refresh token for a new access token.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.ValidateToken(refreshToken)
	if err != nil {
		return "", err
	}
	if claims.Type != TokenRefresh {
		return "", models.ErrInvalidToken
	}
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return "", models.ErrInvalidToken
		}
		return "", err
	}
	return s.issue(user, TokenAccess, s.accessTTL)
}

func (s *AuthService) issue(user *models.User, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
		Type:     tokenType,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(ttl).Unix(),
			IssuedAt:  now.Unix(),
		},
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		s.logger.Debug().Err(err).Msg("token validation failed")
		return nil, models.ErrInvalidToken
	}
	return claims, nil
}

// GetProfile returns the user's account.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateProfile applies the non-nil fields of in.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*models.User, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Phone != nil {
		normalized, err := normalizePhone("phone", *in.Phone)
		if err != nil {
			return nil, err
		}
		user.Phone = normalized
	}
	if in.Address != nil {
		user.Address = strings.TrimSpace(*in.Address)
	}
	if in.Email != nil && !strings.EqualFold(*in.Email, user.Email) {
		email := strings.TrimSpace(*in.Email)
		taken, err := s.taken(ctx, s.userRepo.GetByEmail, email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, models.FieldError("email", "A user with that email already exists.")
		}
		user.Email = email
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	if err := validateInput(in); err != nil {
		return err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)); err != nil {
		return models.FieldError("current_password", "Invalid password.")
	}
	hashed, err := HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	user.Password = hashed
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", user.ID).Msg("password changed")
	return nil
}

// GetByUsername looks a user up by login name.
func (s *AuthService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.userRepo.GetByUsername(ctx, username)
}

// Promote grants staff rights to the user.
func (s *AuthService) Promote(ctx context.Context, userID string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsAdmin {
		return nil
	}
	user.IsAdmin = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", user.ID).Msg("user promoted to admin")
	return nil
}
