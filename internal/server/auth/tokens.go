package auth

import (
	"time"

	"github.com/chouaib-skitou/Festivio/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenSecrets holds one HMAC secret per token purpose.
type TokenSecrets struct {
	Access       []byte
	Refresh      []byte
	Verification []byte
	Reset        []byte
}

// TokenTTLs holds one lifetime per token purpose.
type TokenTTLs struct {
	Access       time.Duration
	Refresh      time.Duration
	Verification time.Duration
	Reset        time.Duration
}

// TokenService mints and checks stateless signed tokens.
type TokenService struct {
	secrets TokenSecrets
	ttls    TokenTTLs

	// Now is the clock used for iat/exp and for verification.
	Now func() time.Time
}

func NewTokenService(secrets TokenSecrets, ttls TokenTTLs) *TokenService {
	return &TokenService{secrets: secrets, ttls: ttls, Now: time.Now}
}

func (s *TokenService) IssueAccessToken(userID, role string) (string, error) {
	return s.issue(userID, role, PurposeAccess)
}

func (s *TokenService) IssueRefreshToken(userID string) (string, error) {
	return s.issue(userID, "", PurposeRefresh)
}

func (s *TokenService) IssueEmailVerificationToken(userID string) (string, error) {
	return s.issue(userID, "", PurposeVerification)
}

func (s *TokenService) IssuePasswordResetToken(userID string) (string, error) {
	return s.issue(userID, "", PurposeReset)
}

// Verify checks token for the given purpose using that purpose's secret.
func (s *TokenService) Verify(token string, purpose Purpose) (*Claims, error) {
	secret, _ := s.params(purpose)
	return VerifyClaims(token, secret, purpose, s.Now())
}

// ResetTTL is the lifetime of password-reset tokens, also used as the
// default ledger expiry.
func (s *TokenService) ResetTTL() time.Duration { return s.ttls.Reset }

// issue stamps a random jti so two tokens minted in the same second differ.
func (s *TokenService) issue(userID, role string, purpose Purpose) (string, error) {
	secret, ttl := s.params(purpose)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID, ID: uuid.NewString()},
		Purpose:          purpose,
		Role:             role,
	}
	return SignClaims(claims, secret, ttl, s.Now())
}

func (s *TokenService) params(purpose Purpose) ([]byte, time.Duration) {
	switch purpose {
	case PurposeAccess:
		return s.secrets.Access, s.ttls.Access
	case PurposeRefresh:
		return s.secrets.Refresh, s.ttls.Refresh
	case PurposeVerification:
		return s.secrets.Verification, s.ttls.Verification
	case PurposeReset:
		return s.secrets.Reset, s.ttls.Reset
	default:
		return nil, 0
	}
}

// RefreshAccessToken mints a new access token for the subject of a valid
// refresh token. roleOf supplies the subject's current role; its errors are
// returned unchanged. The refresh token itself is not rotated.
func (s *TokenService) RefreshAccessToken(refreshToken string, roleOf func(userID string) (string, error)) (string, error) {
	claims, err := s.Verify(refreshToken, PurposeRefresh)
	if err != nil {
		return "", common.ErrInvalidRefreshToken
	}

	role, err := roleOf(claims.Subject)
	if err != nil {
		return "", err
	}

	return s.IssueAccessToken(claims.Subject, role)
}
