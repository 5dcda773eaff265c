package jwt

//go:generate go run go.uber.org/mock/mockgen -source=./jwt.go -destination=./mocks/jwt_mock.go -package=mocks

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"consultation/config"
	"consultation/shared/constant"
	"consultation/shared/timezone"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrInvalidClaim  = errors.New("invalid token claim")
	ErrMissingHeader = errors.New("authorization header is required")
	ErrMalformed     = errors.New("authorization header must start with 'Bearer '")
)

// Claims are the actor claims issued by the identity service. Admin console users carry
// UserType ADMIN, booking site customers END_USER.
type Claims struct {
	UserID       string `json:"user_id"`
	AdminID      string `json:"admin_id,omitempty"`
	Email        string `json:"email"`
	Role         string `json:"role,omitempty"`
	Organisation string `json:"organisation"`
	UserType     string `json:"user_type"`
	jwt.RegisteredClaims
}

// ActorType maps the token's user type onto the orchestration actor.
func (c *Claims) ActorType() string {
	if c.UserType == constant.ActorEndUser || c.Role == constant.RoleEndUser {
		return constant.ActorEndUser
	}

	return constant.ActorAdmin
}

type JWT interface {
	ValidateToken(tokenString string) (*Claims, error)
	Sign(claims Claims, ttl time.Duration) (string, error)
}

type Service struct {
	secret []byte
	issuer string
}

func New(cfg *config.Config) JWT {
	return &Service{
		secret: []byte(cfg.JWT.AccessSecret),
		issuer: cfg.App.Name,
	}
}

// Sign issues an access token. Production tokens come from the identity service; this
// is used for service accounts and local tooling.
func (s *Service) Sign(claims Claims, ttl time.Duration) (string, error) {
	now := timezone.Now()
	tokenID := uuid.New().String()

	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    s.issuer,
		Subject:   claims.UserID,
		ID:        tokenID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}

		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.UserID == "" || claims.Organisation == "" {
		return nil, ErrInvalidClaim
	}

	return claims, nil
}

// ExtractTokenFromHeader strips the Bearer prefix of an Authorization header.
func ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingHeader
	}

	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || token == "" {
		return "", ErrMalformed
	}

	return token, nil
}
