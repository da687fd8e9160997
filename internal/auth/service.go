package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/sharath018/invitation-backend/config"
	"github.com/sharath018/invitation-backend/internal/auditlog"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

type Service interface {
	Register(ctx context.Context, in RegisterInput, ip string) (*User, error)
	Login(ctx context.Context, in LoginInput, ip string) (*TokenPair, *User, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	ParseAccessToken(tokenStr string) (uint, error)
	GetUserByID(ctx context.Context, userID uint) (*User, error)
	EnsureAdmin(ctx context.Context, email, password string) error
}

type service struct {
	repo          Repository
	audit         auditlog.Service
	log           zerolog.Logger
	accessSecret  string
	refreshSecret string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewService(r Repository, audit auditlog.Service, cfg *config.Config, log zerolog.Logger) Service {
	return &service{
		repo:          r,
		audit:         audit,
		log:           log.With().Str("component", "auth").Logger(),
		accessSecret:  cfg.JWTAccessSecret,
		refreshSecret: cfg.JWTRefreshSecret,
		accessTTL:     time.Duration(cfg.JWTAccessTTLHours) * time.Hour,
		refreshTTL:    time.Duration(cfg.JWTRefreshTTLHours) * time.Hour,
	}
}

// =============================
// Register
// =============================

func (s *service) Register(ctx context.Context, in RegisterInput, ip string) (*User, error) {
	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logAudit(ctx, &user.ID, user.ID, "USER_REGISTERED", map[string]interface{}{"email": user.Email}, ip, auditlog.StatusSuccess)
	return user, nil
}

// =============================
// Login
// =============================

func (s *service) Login(ctx context.Context, in LoginInput, ip string) (*TokenPair, *User, error) {
	user, err := s.repo.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.logAudit(ctx, nil, 0, "LOGIN_FAILED", map[string]interface{}{"email": in.Email}, ip, auditlog.StatusFailure)
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		s.logAudit(ctx, &user.ID, user.ID, "LOGIN_FAILED", map[string]interface{}{"email": in.Email}, ip, auditlog.StatusFailure)
		return nil, nil, ErrInvalidCredentials
	}

	accessToken, err := s.signToken(user.ID, s.accessSecret, s.accessTTL)
	if err != nil {
		return nil, nil, err
	}
	refreshToken, err := s.signToken(user.ID, s.refreshSecret, s.refreshTTL)
	if err != nil {
		return nil, nil, err
	}

	s.logAudit(ctx, &user.ID, user.ID, "LOGIN_SUCCESS", nil, ip, auditlog.StatusSuccess)
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, user, nil
}

func (s *service) signToken(userID uint, secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func parseUserID(tokenStr, secret string) (uint, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok || userIDFloat <= 0 {
		return 0, ErrInvalidToken
	}
	return uint(userIDFloat), nil
}

// =============================
// Refresh
// =============================

func (s *service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	userID, err := parseUserID(refreshToken, s.refreshSecret)
	if err != nil {
		return "", err
	}
	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		return "", err
	}
	return s.signToken(userID, s.accessSecret, s.accessTTL)
}

// ParseAccessToken verifies an access token and returns its user id.
func (s *service) ParseAccessToken(tokenStr string) (uint, error) {
	return parseUserID(tokenStr, s.accessSecret)
}

func (s *service) GetUserByID(ctx context.Context, userID uint) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

// EnsureAdmin creates the bootstrap admin account, or promotes it if it already exists.
func (s *service) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	user, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if user.IsAdmin {
			return nil
		}
		if err := s.repo.SetAdmin(ctx, user.ID, true); err != nil {
			return fmt.Errorf("promote admin: %w", err)
		}
		s.log.Info().Str("email", user.Email).Msg("👑 Promoted existing user to admin")
		return nil
	case !errors.Is(err, ErrUserNotFound):
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	admin := &User{FullName: "Administrator", Email: email, PasswordHash: string(hash), IsAdmin: true}
	if err := s.repo.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	s.log.Info().Str("email", admin.Email).Msg("👑 Created bootstrap admin")
	return nil
}

func (s *service) logAudit(ctx context.Context, actor *uint, userID uint, action string, details map[string]interface{}, ip, status string) {
	if s.audit == nil {
		return
	}
	resourceID := ""
	if userID != 0 {
		resourceID = strconv.FormatUint(uint64(userID), 10)
	}
	if err := s.audit.LogAction(ctx, actor, auditlog.ResourceUser, resourceID, action, details, ip, status); err != nil {
		s.log.Warn().Err(err).Str("action", action).Msg("⚠️ audit log write failed")
	}
}
