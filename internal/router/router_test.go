package router

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/blues/giftreg/internal/config"
	"github.com/blues/giftreg/internal/database"
	"github.com/blues/giftreg/internal/handler"
	"github.com/blues/giftreg/internal/logger"
	"github.com/blues/giftreg/internal/logic"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func setupTestRouter(t *testing.T, origins []string) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := database.Init(config.DatabaseConfig{Driver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "gifts.db")})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	log := logger.NewNop()
	h := Handlers{
		Gifts:      handler.NewGiftHandler(logic.NewGiftLogic(db), logic.NewContributionLogic(db)),
		Contribute: handler.NewContributeHandler(nil),
		Webhook:    handler.NewWebhookHandler(nil),
	}
	return Setup(config.ServerConfig{CORSOrigins: origins}, db, h, log), db
}

func TestHealth(t *testing.T) {
	r, db := setupTestRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	for _, h := range []string{"X-Content-Type-Options", "X-Frame-Options", "X-XSS-Protection", "Strict-Transport-Security"} {
		if w.Header().Get(h) == "" {
			t.Errorf("missing security header %s", h)
		}
	}

	sqlDB, _ := db.DB()
	sqlDB.Close()
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status with closed database = %d", w.Code)
	}
}

func TestGiftsRoute(t *testing.T) {
	r, _ := setupTestRouter(t, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/gifts", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d body = %s", w.Code, w.Body.String())
	}
}

func TestCORS(t *testing.T) {
	r, _ := setupTestRouter(t, []string{"https://casamento.example.com"})

	req := httptest.NewRequest(http.MethodOptions, "/api/contribute", nil)
	req.Header.Set("Origin", "https://casamento.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://casamento.example.com" {
		t.Errorf("allow origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/gifts", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected allow origin %q", got)
	}
}
