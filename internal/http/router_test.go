package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/matrix-academy/go-course-backend/internal/config"
	"github.com/matrix-academy/go-course-backend/internal/domain"
	"github.com/matrix-academy/go-course-backend/internal/payments"
	"github.com/matrix-academy/go-course-backend/internal/repo"
)

const routerWebhookSecret = "whsec_router_test"

func testConfig() config.Config {
	return config.Config{
		GinMode:     gin.TestMode,
		APIBasePath: "/api/v1",
		RateRPS:     1000,
		RateBurst:   1000,
		Payment: config.PaymentConfig{
			WebhookSecret:      routerWebhookSecret,
			FrontendURL:        "http://localhost:5173",
			SignatureTolerance: 5 * time.Minute,
		},
		IdempotencyTTL: time.Hour,
	}
}

func newRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "router_test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	r := gin.New()
	RegisterRoutes(r, db, &payments.DevSessionCreator{}, testConfig())
	return r, db
}

func seedRouterCourse(t *testing.T, db *gorm.DB) *domain.Course {
	t.Helper()
	c := &domain.Course{ID: uuid.NewString(), Title: "Intro to Go", Description: "d", Price: 49.99}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
	return c
}

func TestRouter_Health(t *testing.T) {
	r, _ := newRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("request id not set by middleware")
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	r, _ := newRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestRouter_NoRouteEnvelope(t *testing.T) {
	r, _ := newRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
	var er struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("json: %v body=%s", err, w.Body.String())
	}
	if er.Code != "not_found" {
		t.Fatalf("code=%q", er.Code)
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	r, _ := newRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/courses", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestRouter_PurchaseFlow(t *testing.T) {
	r, db := newRouter(t)
	course := seedRouterCourse(t, db)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/courses/"+course.ID+"/purchase", nil)
	req.Header.Set("X-User-ID", "u1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("purchase: status=%d body=%s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/courses/"+course.ID+"/entitlement", nil)
	req.Header.Set("X-User-ID", "u1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("entitlement: status=%d", w.Code)
	}
	var ent struct {
		Owned bool `json:"owned"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &ent); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !ent.Owned {
		t.Fatalf("entitlement not visible after purchase")
	}
}

func TestRouter_WebhookEndToEnd(t *testing.T) {
	r, db := newRouter(t)
	course := seedRouterCourse(t, db)

	payload := []byte(fmt.Sprintf(
		`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1","metadata":{"userId":"u1","courseId":%q}}}}`,
		course.ID,
	))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(payments.SignatureHeader, payments.SignatureFor(payload, routerWebhookSecret, time.Now().Unix()))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("webhook: status=%d body=%s", w.Code, w.Body.String())
	}

	var count int64
	if err := db.Model(&domain.Purchase{}).Where("user_id = ? AND course_id = ?", "u1", course.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("grant rows = %d, want 1", count)
	}
}

func TestRouter_BadIdempotencyKeyRejected(t *testing.T) {
	r, db := newRouter(t)
	course := seedRouterCourse(t, db)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/courses/"+course.ID+"/purchase", nil)
	req.Header.Set("X-User-ID", "u1")
	req.Header.Set("Idempotency-Key", "bad key with spaces\x7f")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400 from idempotency validator", w.Code)
	}
}
