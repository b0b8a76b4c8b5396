package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"agency-portal/pkg/config"
	"agency-portal/pkg/jwtutil"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authContext(t *testing.T, authorization string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuth_ValidToken(t *testing.T) {
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})

	token, err := jwtutil.GenerateToken(7, "staff@agency.test")
	require.NoError(t, err)

	c, rec := authContext(t, "Bearer "+token)
	err = Auth(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(7), c.Get("user_id"))
	assert.Equal(t, "staff@agency.test", c.Get("email"))
}

func TestAuth_MissingHeader(t *testing.T) {
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})

	c, rec := authContext(t, "")
	err := Auth(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_MalformedHeader(t *testing.T) {
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})

	c, rec := authContext(t, "Basic dXNlcjpwYXNz")
	err := Auth(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_GarbageToken(t *testing.T) {
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})

	c, rec := authContext(t, "Bearer not.a.token")
	err := Auth(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_ExpiredToken(t *testing.T) {
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: -1})
	token, err := jwtutil.GenerateToken(7, "staff@agency.test")
	require.NoError(t, err)

	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})

	c, rec := authContext(t, "Bearer "+token)
	err = Auth(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
