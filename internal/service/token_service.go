package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-vidtube/internal/model"
	"go-vidtube/pkg/apierror"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	issueFailed = "Something went wrong while generating refresh and access tokens"
)

// TokenService mints and verifies the access/refresh pair. Access and refresh
// tokens are signed with different secrets so one can never stand in for the
// other.
type TokenService struct {
	users         UserStore
	tokens        TokenStore
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenService(users UserStore, tokens TokenStore, accessSecret string, refreshSecret string, accessTTL time.Duration, refreshTTL time.Duration) (*TokenService, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("token secrets are required")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("access and refresh token secrets must differ")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}

	return &TokenService{
		users:         users,
		tokens:        tokens,
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *TokenService) AccessTTL() time.Duration  { return s.accessTTL }
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

// IssuePair signs a new pair for userID and makes the refresh token the only
// valid one for that user.
func (s *TokenService) IssuePair(ctx context.Context, userID string) (model.TokenPair, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.TokenPair{}, apierror.Internal(issueFailed, err)
	}

	pair, err := s.mint(user)
	if err != nil {
		return model.TokenPair{}, apierror.Internal(issueFailed, err)
	}

	if err := s.tokens.Store(ctx, user.ID, pair.RefreshToken); err != nil {
		return model.TokenPair{}, apierror.Internal(issueFailed, err)
	}

	return pair, nil
}

// Rotate exchanges a refresh token for a new pair. The exchange is a single
// compare-and-swap on the stored token, so a presented token is honoured at
// most once even under concurrent refreshes.
func (s *TokenService) Rotate(ctx context.Context, token string) (model.TokenPair, error) {
	if token == "" {
		return model.TokenPair{}, apierror.Unauthorized("Unauthorized request")
	}

	claims, err := s.parse(token, s.refreshSecret, tokenTypeRefresh)
	if err != nil {
		return model.TokenPair{}, apierror.Unauthorized("Invalid refresh token")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.TokenPair{}, apierror.Unauthorized("Invalid refresh token")
		}
		return model.TokenPair{}, apierror.Internal(issueFailed, err)
	}

	pair, err := s.mint(user)
	if err != nil {
		return model.TokenPair{}, apierror.Internal(issueFailed, err)
	}

	swapped, err := s.tokens.Swap(ctx, user.ID, token, pair.RefreshToken)
	if err != nil {
		return model.TokenPair{}, apierror.Internal(issueFailed, err)
	}
	if !swapped {
		return model.TokenPair{}, apierror.Unauthorized("Refresh token is expired or used")
	}

	return pair, nil
}

func (s *TokenService) mint(user model.User) (model.TokenPair, error) {
	now := s.now()

	accessToken, err := sign(s.accessSecret, jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"email":    user.Email,
		"fullName": user.FullName,
		"typ":      tokenTypeAccess,
		"jti":      uuid.NewString(),
		"iat":      now.Unix(),
		"exp":      now.Add(s.accessTTL).Unix(),
	})
	if err != nil {
		return model.TokenPair{}, err
	}

	refreshToken, err := sign(s.refreshSecret, jwt.MapClaims{
		"sub": user.ID,
		"typ": tokenTypeRefresh,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(s.refreshTTL).Unix(),
	})
	if err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessTTL:    s.accessTTL,
		RefreshTTL:   s.refreshTTL,
	}, nil
}

func (s *TokenService) ValidateAccess(token string) (*model.AuthClaims, error) {
	if token == "" {
		return nil, apierror.Unauthorized("Unauthorized request")
	}

	claims, err := s.parse(token, s.accessSecret, tokenTypeAccess)
	if err != nil {
		return nil, apierror.Unauthorized("Invalid access token")
	}
	return claims, nil
}

// Revoke drops the stored refresh token, ending the session.
func (s *TokenService) Revoke(ctx context.Context, userID string) error {
	if err := s.tokens.Revoke(ctx, userID); err != nil {
		return apierror.Internal("Something went wrong while logging out", err)
	}
	return nil
}

func (s *TokenService) parse(token string, secret []byte, expectedType string) (*model.AuthClaims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}

	claimsMap, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("unexpected claims type")
	}

	claims := &model.AuthClaims{}
	claims.Type, _ = claimsMap["typ"].(string)
	claims.UserID, _ = claimsMap["sub"].(string)
	claims.Username, _ = claimsMap["username"].(string)
	claims.Email, _ = claimsMap["email"].(string)
	claims.FullName, _ = claimsMap["fullName"].(string)
	claims.TokenID, _ = claimsMap["jti"].(string)

	if claims.Type != expectedType {
		return nil, fmt.Errorf("token type %q, want %q", claims.Type, expectedType)
	}
	if claims.UserID == "" {
		return nil, errors.New("token has no subject")
	}

	return claims, nil
}

func sign(secret []byte, claims jwt.MapClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
