package services

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-cms/logging"
	"blog-cms/models"
)

var issuedAt = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func alice() *models.Principal {
	return models.NewPrincipal(&models.User{ID: 1, Email: "alice@example.com", Name: "Alice", Role: models.RoleUser})
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newTestTokenService(secret string, c *clock, rec *fakeRecorder) TokenService {
	return NewTokenService(secret, time.Hour,
		WithClock(c.Now),
		WithTokenLogger(logging.Discard()),
		WithTokenMetrics(rec),
	)
}

func TestTokenService_RoundTrip(t *testing.T) {
	rec := newFakeRecorder()
	svc := newTestTokenService(testSecret, &clock{now: issuedAt}, rec)

	token, err := svc.Issue(alice())
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	got, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, uint(1), got.ID)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, models.RoleUser, got.Role)
	assert.Equal(t, []string{"ROLE_USER"}, got.Authorities)
	assert.Equal(t, 1, rec.issued)
}

func TestTokenService_Claims(t *testing.T) {
	svc := newTestTokenService(testSecret, &clock{now: issuedAt}, newFakeRecorder())
	token, err := svc.Issue(alice())
	require.NoError(t, err)

	var claims SessionClaims
	parsed, err := jwt.NewParser(jwt.WithoutClaimsValidation()).ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)

	assert.Equal(t, "HS512", parsed.Method.Alg())
	assert.Equal(t, "alice@example.com", claims.Subject)
	assert.Equal(t, uint(1), claims.ID)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, "ROLE_USER", claims.Authorities)
	assert.True(t, claims.IssuedAt.Time.Equal(issuedAt))
	assert.True(t, claims.ExpiresAt.Time.Equal(issuedAt.Add(time.Hour)))
	assert.NotEmpty(t, claims.RegisteredClaims.ID)
}

func TestTokenService_ExpiryBoundary(t *testing.T) {
	c := &clock{now: issuedAt}
	rec := newFakeRecorder()
	svc := newTestTokenService(testSecret, c, rec)

	token, err := svc.Issue(alice())
	require.NoError(t, err)

	c.now = issuedAt.Add(time.Hour - time.Nanosecond)
	_, err = svc.Validate(token)
	assert.NoError(t, err)

	c.now = issuedAt.Add(time.Hour)
	_, err = svc.Validate(token)
	assert.Equal(t, models.CodeUnauthenticated, models.ErrorCode(err))

	c.now = issuedAt.Add(48 * time.Hour)
	_, err = svc.Validate(token)
	assert.Equal(t, models.CodeUnauthenticated, models.ErrorCode(err))

	assert.Equal(t, []string{RejectExpired, RejectExpired}, rec.rejected)
}

func TestTokenService_ForeignSecret(t *testing.T) {
	c := &clock{now: issuedAt}
	rec := newFakeRecorder()
	ours := newTestTokenService(testSecret, c, rec)
	theirs := newTestTokenService("another-secret-another-secret-another-secret", c, newFakeRecorder())

	token, err := theirs.Issue(alice())
	require.NoError(t, err)

	_, err = ours.Validate(token)
	assert.Equal(t, models.CodeUnauthenticated, models.ErrorCode(err))
	assert.Equal(t, []string{RejectBadSignature}, rec.rejected)
}

func TestTokenService_RejectionsLookAlike(t *testing.T) {
	c := &clock{now: issuedAt}
	svc := newTestTokenService(testSecret, c, newFakeRecorder())

	valid, err := svc.Issue(alice())
	require.NoError(t, err)
	bob, err := svc.Issue(models.NewPrincipal(&models.User{ID: 2, Email: "bob@example.com", Name: "Bob", Role: models.RoleUser}))
	require.NoError(t, err)

	// Bob's payload under Alice's signature.
	vp, bp := strings.Split(valid, "."), strings.Split(bob, ".")
	spliced := vp[0] + "." + bp[1] + "." + vp[2]

	hs256, err := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		ID: 1, Authorities: "ROLE_USER",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice@example.com", ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, SessionClaims{
		ID: 1, Authorities: "ROLE_USER",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice@example.com", ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badAuthority, err := jwt.NewWithClaims(jwt.SigningMethodHS512, SessionClaims{
		ID: 1, Authorities: "ROLE_ROOT",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice@example.com", ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		reason string
	}{
		{name: "empty", token: "", reason: RejectEmpty},
		{name: "garbage", token: "not-a-token", reason: RejectMalformed},
		{name: "bad segments", token: "a.b.c", reason: RejectMalformed},
		{name: "tampered payload", token: spliced, reason: RejectBadSignature},
		{name: "other algorithm", token: hs256, reason: RejectAlgorithm},
		{name: "alg none", token: none, reason: RejectAlgorithm},
		{name: "unknown authority", token: badAuthority, reason: RejectInvalidClaims},
	}

	var messages []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newFakeRecorder()
			svc := newTestTokenService(testSecret, c, rec)

			p, err := svc.Validate(tt.token)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.Equal(t, models.CodeUnauthenticated, models.ErrorCode(err))
			assert.Equal(t, []string{tt.reason}, rec.rejected)
			messages = append(messages, err.Error())
		})
	}

	for _, m := range messages {
		assert.Equal(t, messages[0], m)
	}
}

func TestTokenService_IssueRequiresPrincipal(t *testing.T) {
	svc := newTestTokenService(testSecret, &clock{now: issuedAt}, newFakeRecorder())
	_, err := svc.Issue(nil)
	assert.Error(t, err)
}
