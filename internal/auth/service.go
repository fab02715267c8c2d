package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/swiftpay/swiftpay/internal/config"
	"github.com/swiftpay/swiftpay/internal/domain"
	"github.com/swiftpay/swiftpay/internal/identity"
)

const (
	issuer = "swiftpay"

	typeAccess  = "access"
	typeRefresh = "refresh"
)

// Claims is the JWT payload of access and refresh tokens.
type Claims struct {
	Role    domain.Role `json:"role"`
	Version int         `json:"ver"`
	Type    string      `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair is handed to clients after login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Service issues and verifies session tokens.
type Service struct {
	cfg config.Config
	ids *identity.Service
	now func() time.Time
}

// NewService builds the token service.
func NewService(cfg config.Config, ids *identity.Service) *Service {
	return &Service{cfg: cfg, ids: ids, now: time.Now}
}

// Login authenticates credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, email, password string) (domain.Account, identity.Credential, TokenPair, error) {
	account, cred, err := s.ids.Authenticate(ctx, email, password)
	if err != nil {
		return domain.Account{}, identity.Credential{}, TokenPair{}, err
	}
	access, err := s.sign(account.ID, account.Role, cred.TokenVersion, typeAccess, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return domain.Account{}, identity.Credential{}, TokenPair{}, err
	}
	refresh, err := s.sign(account.ID, account.Role, cred.TokenVersion, typeRefresh, s.cfg.RefreshSecret, s.cfg.RefreshTokenTTL)
	if err != nil {
		return domain.Account{}, identity.Credential{}, TokenPair{}, err
	}
	pair := TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresIn: int64(s.cfg.AccessTokenTTL.Seconds())}
	return account, cred, pair, nil
}

// Refresh exchanges a valid refresh token for a new access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.parse(refreshToken, typeRefresh, s.cfg.RefreshSecret)
	if err != nil {
		return TokenPair{}, err
	}
	principal, err := s.ids.Principal(ctx, claims.Subject, claims.Version)
	if err != nil {
		return TokenPair{}, err
	}
	access, err := s.sign(principal.ID, principal.Role, claims.Version, typeAccess, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, ExpiresIn: int64(s.cfg.AccessTokenTTL.Seconds())}, nil
}

// Logout bumps the token version so every outstanding token stops working.
func (s *Service) Logout(ctx context.Context, accountID string) error {
	_, err := s.ids.BumpTokenVersion(ctx, accountID)
	return err
}

// ParseAccess verifies an access token's signature, expiry and type.
func (s *Service) ParseAccess(token string) (Claims, error) {
	return s.parse(token, typeAccess, s.cfg.JWTSecret)
}

// Resolve verifies an access token and loads the current principal. Role
// comes from the stored account, not the token, so role changes apply at once.
func (s *Service) Resolve(ctx context.Context, token string) (domain.Principal, error) {
	claims, err := s.ParseAccess(token)
	if err != nil {
		return domain.Principal{}, err
	}
	return s.ids.Principal(ctx, claims.Subject, claims.Version)
}

func (s *Service) sign(subject string, role domain.Role, version int, typ, secret string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		Role:    role,
		Version: version,
		Type:    typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func (s *Service) parse(token, typ, secret string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, fmt.Errorf("%w: token expired", domain.ErrUnauthorized)
		}
		return Claims{}, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}
	if claims.Type != typ || claims.Subject == "" {
		return Claims{}, fmt.Errorf("%w: wrong token type", domain.ErrUnauthorized)
	}
	return claims, nil
}
