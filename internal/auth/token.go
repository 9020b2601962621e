package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mblog/apiserver/config"
)

// ErrInvalidToken is returned for any token that fails verification:
// bad signature, wrong purpose, malformed, or expired.
var ErrInvalidToken = errors.New("invalid token")

// Purpose salts. Each token kind signs with a key derived from the shared
// secret and its own salt, so a token minted for one purpose never
// verifies under the other.
const (
	saltAccess       = "access-token"
	saltVerification = "email-verification"
)

// TokenService issues and verifies the two stateless token kinds:
// bearer access tokens bound to a username, and email verification
// tokens bound to an email address.
type TokenService struct {
	accessKey       []byte
	verificationKey []byte
	accessTTL       time.Duration
	verificationTTL time.Duration
}

func NewTokenService(cfg config.TokenConfig) (*TokenService, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, errors.New("token secret is required")
	}
	return &TokenService{
		accessKey:       deriveKey(cfg.Secret, saltAccess),
		verificationKey: deriveKey(cfg.Secret, saltVerification),
		accessTTL:       cfg.AccessTTL,
		verificationTTL: cfg.VerificationTTL,
	}, nil
}

func deriveKey(secret, salt string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(salt))
	return mac.Sum(nil)
}

type verificationClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// IssueAccessToken mints a signed bearer token for the given username.
func (s *TokenService) IssueAccessToken(username string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.accessKey)
}

// VerifyAccessToken returns the username the token was issued for.
// Expired tokens fail regardless of signature validity.
func (s *TokenService) VerifyAccessToken(tokenString string) (string, error) {
	claims := jwt.RegisteredClaims{}
	if err := s.parse(tokenString, &claims, s.accessKey); err != nil {
		return "", err
	}
	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return subject, nil
}

// IssueVerificationToken mints a signed token proving control of email,
// valid for the configured verification window.
func (s *TokenService) IssueVerificationToken(email string) (string, error) {
	now := time.Now()
	claims := verificationClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.verificationTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.verificationKey)
}

// VerifyVerificationToken returns the email the token was issued for.
func (s *TokenService) VerifyVerificationToken(tokenString string) (string, error) {
	claims := verificationClaims{}
	if err := s.parse(tokenString, &claims, s.verificationKey); err != nil {
		return "", err
	}
	email := strings.TrimSpace(claims.Email)
	if email == "" {
		return "", fmt.Errorf("%w: missing email", ErrInvalidToken)
	}
	return email, nil
}

func (s *TokenService) parse(tokenString string, claims jwt.Claims, key []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return key, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
