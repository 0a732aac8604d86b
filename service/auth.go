package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"synerx-dashboard/config"
	"synerx-dashboard/entities"
	"synerx-dashboard/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrEmailTaken         = errors.New("email already registered")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrResetTokenInvalid  = errors.New("reset token is invalid or expired")
)

const (
	minPasswordLength = 8
	resetTokenTTL     = time.Hour
)

type AuthService interface {
	SignUp(ctx context.Context, email, password, fullName string) (*entities.User, error)
	SignIn(ctx context.Context, email, password string) (string, *entities.User, error)
	ParseToken(tokenString string) (uuid.UUID, error)
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
	ConfirmEmail(ctx context.Context, userId uuid.UUID) error
	UpdateProfile(ctx context.Context, userId uuid.UUID, fullName, avatarURL string) error
	ChangePassword(ctx context.Context, userId uuid.UUID, current, next string) error
}

type authService struct {
	repo      repository.Repository
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthService(repo repository.Repository, cfg config.Auth) AuthService {
	return &authService{
		repo:      repo,
		jwtSecret: []byte(cfg.JWTSecret),
		tokenTTL:  cfg.TokenTTL,
	}
}

func (s *authService) SignUp(ctx context.Context, email, password, fullName string) (*entities.User, error) {
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.repo.FindUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashed),
		FullName:     fullName,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Str("user_id", user.ID.String()).Msg("user registered")
	return user, nil
}

func (s *authService) SignIn(ctx context.Context, email, password string) (string, *entities.User, error) {
	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if !user.EmailConfirmed {
		return "", nil, ErrEmailNotConfirmed
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.ID.String(),
		"exp": time.Now().Add(s.tokenTTL).Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	return tokenString, user, nil
}

func (s *authService) ParseToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidCredentials
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, ErrInvalidCredentials
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, ErrInvalidCredentials
	}

	userId, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, ErrInvalidCredentials
	}
	return userId, nil
}

// RequestPasswordReset issues a one-hour token. The token is returned to the
// caller for delivery by the mail layer; lookups of unknown emails succeed
// silently so the endpoint cannot be used to enumerate accounts.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)
	expires := time.Now().Add(resetTokenTTL)

	err = s.repo.UpdateUser(ctx, user.ID, map[string]interface{}{
		"reset_token":      token,
		"reset_expires_at": expires,
	})
	if err != nil {
		return "", err
	}

	return token, nil
}

func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	user, err := s.repo.FindUserByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResetTokenInvalid
		}
		return err
	}

	if user.ResetExpiresAt == nil || time.Now().After(*user.ResetExpiresAt) {
		return ErrResetTokenInvalid
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.repo.UpdateUser(ctx, user.ID, map[string]interface{}{
		"password_hash":    string(hashed),
		"reset_token":      nil,
		"reset_expires_at": nil,
	})
}

func (s *authService) ConfirmEmail(ctx context.Context, userId uuid.UUID) error {
	return s.repo.UpdateUser(ctx, userId, map[string]interface{}{
		"email_confirmed": true,
	})
}

func (s *authService) UpdateProfile(ctx context.Context, userId uuid.UUID, fullName, avatarURL string) error {
	updates := map[string]interface{}{}
	if fullName != "" {
		updates["full_name"] = fullName
	}
	if avatarURL != "" {
		updates["avatar_url"] = avatarURL
	}
	if len(updates) == 0 {
		return nil
	}
	return s.repo.UpdateUser(ctx, userId, updates)
}

func (s *authService) ChangePassword(ctx context.Context, userId uuid.UUID, current, next string) error {
	if len(next) < minPasswordLength {
		return ErrPasswordTooShort
	}

	user, err := s.repo.FindUserById(ctx, userId)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.repo.UpdateUser(ctx, userId, map[string]interface{}{
		"password_hash": string(hashed),
	})
}
