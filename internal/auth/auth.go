package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/ukydev/fleet-maintenance/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrUnknownRole  = errors.New("unknown role")
)

// tokenIssuer identifies tokens minted by this service; tokens from other
// issuers are rejected even when signed with the same secret.
const tokenIssuer = "fleet-maintenance"

// tokenClaims is the signed payload of an access token: the registered
// claims plus the username and fleet role the middleware needs for its
// authorization decisions. The user id travels in the Subject claim.
type tokenClaims struct {
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Service issues and validates access tokens and password hashes.
type Service struct {
	jwtSecret []byte
	tokenExp  time.Duration
}

// NewService creates an auth service configured from JWT_SECRET and
// JWT_EXPIRY (a Go duration string, default 24h).
func NewService() (*Service, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default-secret-key-change-in-production"
	}

	exp := 24 * time.Hour
	if expStr := os.Getenv("JWT_EXPIRY"); expStr != "" {
		if parsed, err := time.ParseDuration(expStr); err == nil {
			exp = parsed
		}
	}

	return &Service{
		jwtSecret: []byte(secret),
		tokenExp:  exp,
	}, nil
}

// HashPassword hashes a password using bcrypt
func (s *Service) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPassword checks if a password matches a hash
func (s *Service) CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateToken issues a signed access token for a user. The role is
// validated against the fleet role set here, so a token can never carry a
// role the authorization middleware would not understand.
func (s *Service) GenerateToken(user *models.User) (string, error) {
	if !models.IsValidRole(user.Role) {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, user.Role)
	}

	now := time.Now()
	claims := tokenClaims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenExp)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// GenerateRefreshToken generates an opaque refresh token.
func (s *Service) GenerateRefreshToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

// ValidateToken verifies a token's signature, expiry, issuer and role and
// returns the claims the middleware attaches to the request context.
func (s *Service) ValidateToken(tokenString string) (*models.Claims, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	var claims tokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	if !models.IsValidRole(claims.Role) {
		return nil, ErrUnknownRole
	}

	out := &models.Claims{
		UserID:   claims.Subject,
		Username: claims.Username,
		Role:     claims.Role,
	}
	if claims.ExpiresAt != nil {
		out.Exp = claims.ExpiresAt.Unix()
	}
	return out, nil
}

// ExtractTokenFromHeader extracts the bearer token from an Authorization
// header value.
func (s *Service) ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrInvalidToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrInvalidToken
	}

	return parts[1], nil
}

// ValidatePassword validates password strength
func (s *Service) ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters long")
	}
	return nil
}

// ValidateEmail validates email format
func (s *Service) ValidateEmail(email string) error {
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return errors.New("invalid email format")
	}
	return nil
}

// ValidateUsername validates username format
func (s *Service) ValidateUsername(username string) error {
	if len(username) < 3 {
		return errors.New("username must be at least 3 characters long")
	}
	if len(username) > 50 {
		return errors.New("username must be less than 50 characters")
	}
	return nil
}
