package app

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/trustdelivery/backoffice/internal/identity/domain"
)

const tokenIssuer = "trustdelivery-backoffice"

var (
	// ErrTokenExpired means the token was well-formed and correctly signed
	// but its expiry has passed. Clients should log in again.
	ErrTokenExpired = errors.New("token has expired")
	// ErrTokenInvalid means the token is malformed, tampered with, or signed
	// with the wrong key.
	ErrTokenInvalid = errors.New("token is invalid")
)

// TokenConfig carries the signing parameters for session tokens.
type TokenConfig struct {
	Secret       string
	TTL          time.Duration
	RefreshBelow time.Duration
}

// TokenClaims is the identity carried inside a session token. Role and email
// are convenience claims only; the auth middleware always re-fetches the
// account for the current role and status.
type TokenClaims struct {
	AccountID string
	Role      domain.Role
	Email     string
	ExpiresAt time.Time
}

// TokenService signs and verifies stateless HS256 session tokens. There is no
// revocation list; a token dies by expiry, or is refused server-side when its
// account is gone, locked, or inactive.
type TokenService struct {
	cfg TokenConfig
	now func() time.Time
}

// NewTokenService creates a TokenService.
func NewTokenService(cfg TokenConfig) *TokenService {
	return &TokenService{cfg: cfg, now: time.Now}
}

// Issue mints a session token for the account with the configured TTL.
func (s *TokenService) Issue(account *domain.Account) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub": account.ID,
		"rol": string(account.Role),
		"eml": account.Email,
		"iat": now.Unix(),
		"exp": now.Add(s.cfg.TTL).Unix(),
		"iss": tokenIssuer,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
}

// Verify parses and validates a token, distinguishing an expired token from a
// malformed or tampered one so the client can be told whether to log in again.
func (s *TokenService) Verify(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(s.cfg.Secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}
	sub, _ := claims["sub"].(string)
	roleStr, _ := claims["rol"].(string)
	email, _ := claims["eml"].(string)
	if sub == "" {
		return nil, ErrTokenInvalid
	}
	role, err := domain.ParseRole(roleStr)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrTokenInvalid
	}

	return &TokenClaims{
		AccountID: sub,
		Role:      role,
		Email:     email,
		ExpiresAt: exp.Time,
	}, nil
}

// RefreshIfNeeded reissues a token when the current one has less than the
// configured threshold of validity left. Returns the replacement token and
// true, or "" and false when the current token is still comfortably valid.
func (s *TokenService) RefreshIfNeeded(expiresAt time.Time, account *domain.Account) (string, bool, error) {
	if expiresAt.Sub(s.now()) >= s.cfg.RefreshBelow {
		return "", false, nil
	}
	token, err := s.Issue(account)
	if err != nil {
		return "", false, err
	}
	return token, true, nil
}
