package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func testJWT() JWT {
	return JWT{Secret: []byte("s3cret"), Issuer: "insightval", TokenTTL: time.Minute}
}

func TestJWT_SignVerify(t *testing.T) {
	j := testJWT()
	tok, exp, err := j.Sign(Claims{Role: "analyst", RegisteredClaims: jwt.RegisteredClaims{Subject: "kim"}})
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Minute), exp, 5*time.Second)

	claims, err := j.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, "kim", claims.Subject)
	require.Equal(t, "analyst", claims.Role)
	require.Equal(t, "insightval", claims.Issuer)

	_, err = JWT{Secret: []byte("other"), Issuer: "insightval"}.Verify(tok)
	require.Error(t, err)
	_, err = JWT{Secret: j.Secret, Issuer: "someone-else"}.Verify(tok)
	require.Error(t, err)

	expired, _, err := j.Sign(Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))}})
	require.NoError(t, err)
	_, err = j.Verify(expired)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func newRouter(enabled bool, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequireBearerMiddleware(enabled, testJWT()))
	r.Use(WriteAuditMiddleware(logger))
	handler := func(c *gin.Context) {
		claims, _ := ClaimsFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"subject": claims.Subject})
	}
	r.GET("/healthz", handler)
	r.GET("/api/insights", handler)
	r.POST("/api/insights", handler)
	return r
}

func serve(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireBearerMiddleware(t *testing.T) {
	r := newRouter(true, nil)

	require.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/healthz", "").Code)
	require.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/api/insights", "").Code)
	require.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/api/insights", "garbage").Code)

	tok, _, err := testJWT().Sign(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "kim"}})
	require.NoError(t, err)
	w := serve(r, http.MethodGet, "/api/insights", tok)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"subject":"kim"}`, w.Body.String())

	open := newRouter(false, nil)
	require.Equal(t, http.StatusOK, serve(open, http.MethodGet, "/api/insights", "").Code)
}

func TestWriteAuditMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := newRouter(false, zap.New(core))

	serve(r, http.MethodGet, "/api/insights", "")
	require.Zero(t, logs.Len())

	serve(r, http.MethodPost, "/api/insights", "")
	entries := logs.FilterMessage("http write").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "POST", fields["method"])
	require.Equal(t, "/api/insights", fields["path"])
	require.EqualValues(t, http.StatusOK, fields["status"])
}

func TestBearerToken(t *testing.T) {
	require.Equal(t, "abc", bearerToken("Bearer abc"))
	require.Equal(t, "abc", bearerToken("bearer  abc "))
	require.Empty(t, bearerToken("Basic abc"))
	require.Empty(t, bearerToken("abc"))
	require.Empty(t, bearerToken(""))
}
