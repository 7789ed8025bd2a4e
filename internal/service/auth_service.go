package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/yufurikuto/EduExam/internal/config"
	"github.com/yufurikuto/EduExam/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionInvalidated = errors.New("session invalidated")
)

// TokenType distinguishes the kinds of issued tokens.
type TokenType string

const TokenTypeTeacher TokenType = "teacher"

const teacherIDPrefix = "teacher_"

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType `json:"token_type"`
	TeacherID string    `json:"teacher_id"`
	Name      string    `json:"name"`
}

// AuthService handles teacher login, JWT, and session management.
type AuthService struct {
	cfg   *config.Config
	cache Cache
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, cache Cache) *AuthService {
	return &AuthService{cfg: cfg, cache: cache}
}

// TeacherID derives the stable teacher identity from a login identifier by
// keeping only ASCII letters and digits.
func TeacherID(identifier string) (string, error) {
	var b strings.Builder
	for _, r := range identifier {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "", ErrInvalidCredentials
	}
	return teacherIDPrefix + b.String(), nil
}

// Login accepts any non-empty identifier and password. When an access code
// hash is configured, the password must match it.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*model.TeacherLoginResponse, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	if s.cfg.TeacherAccessCodeHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.TeacherAccessCodeHash), []byte(password)); err != nil {
			return nil, ErrInvalidCredentials
		}
	}

	teacherID, err := TeacherID(identifier)
	if err != nil {
		return nil, err
	}

	token, err := s.GenerateTeacherToken(ctx, teacherID, identifier)
	if err != nil {
		return nil, err
	}

	return &model.TeacherLoginResponse{
		Token:   token,
		Teacher: model.Teacher{ID: teacherID, Name: identifier},
	}, nil
}

// GenerateTeacherToken creates a JWT and registers its session in Redis.
// A teacher may hold several sessions at once, one per issued token.
func (s *AuthService) GenerateTeacherToken(ctx context.Context, teacherID, name string) (string, error) {
	jti := uuid.New().String()
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   teacherID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		TokenType: TokenTypeTeacher,
		TeacherID: teacherID,
		Name:      name,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	// Store session in Redis with same expiry as JWT.
	key := config.CacheKey.TeacherSessionKey(teacherID, jti)
	if err := s.cache.Set(ctx, key, now.Unix(), s.cfg.JWTExpiry).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// ValidateSession checks that the token's session still exists in Redis.
func (s *AuthService) ValidateSession(ctx context.Context, teacherID, jti string) error {
	n, err := s.cache.Exists(ctx, config.CacheKey.TeacherSessionKey(teacherID, jti)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrSessionInvalidated
		}
		return fmt.Errorf("check session: %w", err)
	}
	if n == 0 {
		return ErrSessionInvalidated
	}
	return nil
}

// Logout ends the session of one token.
func (s *AuthService) Logout(ctx context.Context, teacherID, jti string) error {
	return s.cache.Del(ctx, config.CacheKey.TeacherSessionKey(teacherID, jti)).Err()
}
