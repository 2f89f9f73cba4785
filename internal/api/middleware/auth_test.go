package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonbook/salon-api/internal/core/domain"
)

type stubVerifier struct {
	identity domain.Identity
	err      error
	got      string
}

func (s *stubVerifier) VerifyToken(token string) (domain.Identity, error) {
	s.got = token
	return s.identity, s.err
}

func unreachable(t *testing.T) echo.HandlerFunc {
	return func(echo.Context) error {
		t.Fatal("should not reach next handler")
		return nil
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	verifier := &stubVerifier{identity: domain.Identity{ID: "u1", Role: domain.RoleAdmin}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TokenHeader, "signed-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen domain.Identity
	handler := Auth(verifier)(func(c echo.Context) error {
		identity, ok := IdentityFrom(c)
		require.True(t, ok, "identity not set")
		seen = identity
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, handler(c))
	assert.Equal(t, domain.Identity{ID: "u1", Role: domain.RoleAdmin}, seen)
	assert.Equal(t, "signed-token", verifier.got)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := Auth(&stubVerifier{})(unreachable(t))(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_BearerPrefixIsNotStripped(t *testing.T) {
	e := echo.New()
	verifier := &stubVerifier{err: domain.ErrUnauthorized}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TokenHeader, "Bearer abc")
	c := e.NewContext(req, httptest.NewRecorder())

	err := Auth(verifier)(unreachable(t))(c)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
	assert.Equal(t, "Bearer abc", verifier.got, "header value must be passed through")
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TokenHeader, "tampered")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := Auth(&stubVerifier{err: domain.ErrUnauthorized})(unreachable(t))(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIdentityFrom_Empty(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, ok := IdentityFrom(c)
	assert.False(t, ok, "expected no identity")

	SetIdentity(c, domain.Identity{})
	_, ok = IdentityFrom(c)
	assert.False(t, ok, "identity without id must be rejected")
}
