package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	authMiddleware "github.com/samirwankhede/roomstats/internal/middleware"
	authService "github.com/samirwankhede/roomstats/internal/service/auth"
)

func TestToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, err := authService.NewAuthService(zap.NewNop(), "hunter22", "s3cret", time.Hour)
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}
	r := gin.New()
	NewAuthHandler(zap.NewNop(), svc).Register(r)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/token", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := post(`{"password":"hunter22"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp authService.LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if _, err := authMiddleware.Parse("s3cret", resp.Token); err != nil {
		t.Errorf("Expected a valid token, got %v", err)
	}

	if w := post(`{"password":"nope"}`); w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", w.Code)
	}
	if w := post(`{}`); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}
