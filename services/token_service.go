package services

import (
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"blog-cms/metrics"
	"blog-cms/models"
)

// Reasons a token is rejected. They are logged and counted but never
// returned to the caller.
const (
	RejectEmpty         = "empty"
	RejectMalformed     = "malformed"
	RejectBadSignature  = "bad_signature"
	RejectExpired       = "expired"
	RejectAlgorithm     = "unsupported_algorithm"
	RejectInvalidClaims = "invalid_claims"
)

var errUnsupportedAlgorithm = errors.New("unsupported signing algorithm")

// SessionClaims is the payload of a session token. Subject carries the email.
type SessionClaims struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Authorities string `json:"authorities"`
	jwt.RegisteredClaims
}

// TokenService issues and validates signed session tokens.
type TokenService interface {
	Issue(principal *models.Principal) (string, error)
	Validate(token string) (*models.Principal, error)
}

type TokenOption func(*tokenService)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(s *tokenService) { s.now = now }
}

func WithTokenLogger(log *slog.Logger) TokenOption {
	return func(s *tokenService) { s.log = log }
}

func WithTokenMetrics(rec metrics.Recorder) TokenOption {
	return func(s *tokenService) { s.metrics = rec }
}

type tokenService struct {
	secret     []byte
	expiration time.Duration
	method     jwt.SigningMethod
	parser     *jwt.Parser
	now        func() time.Time
	log        *slog.Logger
	metrics    metrics.Recorder
}

// NewTokenService signs tokens with HS512 using secret. Tokens expire
// expiration after they are issued.
func NewTokenService(secret string, expiration time.Duration, opts ...TokenOption) TokenService {
	s := &tokenService{
		secret:     []byte(secret),
		expiration: expiration,
		method:     jwt.SigningMethodHS512,
		// Expiry is checked against s.now instead of the library clock.
		parser:  jwt.NewParser(jwt.WithoutClaimsValidation()),
		now:     time.Now,
		log:     slog.Default(),
		metrics: metrics.Noop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *tokenService) Issue(principal *models.Principal) (string, error) {
	if principal == nil || principal.ID == 0 {
		return "", oops.In("token").Errorf("cannot issue a token without a principal")
	}

	issuedAt := s.now()
	claims := SessionClaims{
		ID:          principal.ID,
		Name:        principal.Name,
		Authorities: principal.AuthoritiesClaim(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        ulid.Make().String(),
			Subject:   principal.Email,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.expiration)),
		},
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", oops.In("token").With("user_id", principal.ID).Wrapf(err, "sign token")
	}
	s.metrics.RecordTokenIssued()
	return signed, nil
}

// Validate checks the signature, then expiry, then decodes the claims.
// Every failure returns the same UNAUTHENTICATED error.
func (s *tokenService) Validate(token string) (*models.Principal, error) {
	principal, reason := s.validate(token)
	if reason != "" {
		s.log.Debug("session token rejected", "reason", reason)
		s.metrics.RecordTokenRejected(reason)
		return nil, oops.Code(models.CodeUnauthenticated).Errorf("authentication required")
	}
	return principal, nil
}

func (s *tokenService) validate(token string) (*models.Principal, string) {
	if token == "" {
		return nil, RejectEmpty
	}

	var claims SessionClaims
	_, err := s.parser.ParseWithClaims(token, &claims, s.keyFunc)
	if err != nil {
		return nil, rejectReason(err)
	}

	if claims.ExpiresAt == nil || !s.now().Before(claims.ExpiresAt.Time) {
		return nil, RejectExpired
	}

	principal, err := models.PrincipalFromClaims(claims.ID, claims.Subject, claims.Name, claims.Authorities)
	if err != nil {
		return nil, RejectInvalidClaims
	}
	return principal, ""
}

func (s *tokenService) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method == nil || t.Method.Alg() != s.method.Alg() {
		return nil, errUnsupportedAlgorithm
	}
	return s.secret, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, errUnsupportedAlgorithm):
		return RejectAlgorithm
	case errors.Is(err, jwt.ErrTokenMalformed):
		return RejectMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return RejectBadSignature
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return RejectAlgorithm
	}
	return RejectMalformed
}

