package httpkit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type staticJWT string

func (s staticJWT) GetJWTAccessSecret() string { return string(s) }

func actorEngine(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(OptionalAuth(staticJWT(secret)))
	engine.GET("/whoami", func(c *gin.Context) {
		actor := GetActor(c)
		if !actor.IsAuthenticated() {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, actor.UserID.String())
	})
	return engine
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestOptionalAuthAnonymousWithoutToken(t *testing.T) {
	rec := httptest.NewRecorder()
	actorEngine("secret").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "anonymous" {
		t.Fatalf("expected anonymous 200, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestOptionalAuthSetsActorFromValidToken(t *testing.T) {
	userID := uuid.New()
	token := signToken(t, "secret", jwt.MapClaims{
		"sub":  userID.String(),
		"type": "access",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	actorEngine("secret").ServeHTTP(rec, req)

	if rec.Body.String() != userID.String() {
		t.Fatalf("expected %s, got %q", userID, rec.Body.String())
	}
}

func TestOptionalAuthRejectsBadSignature(t *testing.T) {
	token := signToken(t, "other", jwt.MapClaims{"sub": uuid.NewString()})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	actorEngine("secret").ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequestIDEchoesHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("expected request id to be echoed, got %q", got)
	}
}
