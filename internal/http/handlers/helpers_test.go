package handlers

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/matrix-academy/go-course-backend/internal/domain"
	"github.com/matrix-academy/go-course-backend/internal/payments"
	"github.com/matrix-academy/go-course-backend/internal/services"
)

// testRig is a fully wired transport surface over a throwaway database:
// real services, real store, no middleware beyond routing.
type testRig struct {
	DB     *gorm.DB
	Engine *gin.Engine
}

func newTestRig(t *testing.T, sessions payments.SessionCreator, webhook WebhookConfig) *testRig {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("handlers_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := db.AutoMigrate(
		&domain.Course{},
		&domain.Lesson{},
		&domain.Purchase{},
		&domain.LessonProgress{},
		&domain.Idempotency{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	gate := &services.AccessGate{DB: db}
	if sessions == nil {
		sessions = &payments.DevSessionCreator{}
	}
	h := New(
		&services.CourseService{DB: db},
		&services.PurchaseService{DB: db},
		&services.ProgressService{DB: db, Gate: gate},
		&services.LessonService{DB: db, Gate: gate},
		&services.CheckoutService{DB: db, Sessions: sessions, FrontendURL: "http://localhost:5173"},
		&services.WebhookService{DB: db},
		webhook,
	)

	r := gin.New()
	r.GET("/courses", h.ListCourses)
	r.GET("/courses/:id", h.GetCourse)
	r.POST("/courses/:id/purchase", h.PurchaseCourse)
	r.POST("/courses/:id/checkout-session", h.CreateCheckoutSession)
	r.GET("/courses/:id/entitlement", h.GetEntitlement)
	r.GET("/me/purchases", h.ListMyPurchases)
	r.GET("/courses/:id/progress", h.GetCourseProgress)
	r.PUT("/courses/:id/lessons/:lessonID/progress", h.SetLessonProgress)
	r.GET("/lessons/:id", h.GetLesson)
	r.POST("/webhooks/payment", h.PaymentWebhook)

	return &testRig{DB: db, Engine: r}
}

func (rig *testRig) seedCourse(t *testing.T, title string, price float64) *domain.Course {
	t.Helper()
	c := &domain.Course{ID: uuid.NewString(), Title: title, Description: "about " + title, Price: price}
	if err := rig.DB.Create(c).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
	return c
}

func (rig *testRig) seedLesson(t *testing.T, courseID, title string, order int) *domain.Lesson {
	t.Helper()
	l := &domain.Lesson{ID: uuid.NewString(), CourseID: courseID, Title: title, Content: "body", Order: order}
	if err := rig.DB.Create(l).Error; err != nil {
		t.Fatalf("seed lesson: %v", err)
	}
	return l
}

func (rig *testRig) seedPurchase(t *testing.T, userID, courseID string) *domain.Purchase {
	t.Helper()
	p := &domain.Purchase{ID: uuid.NewString(), UserID: userID, CourseID: courseID}
	if err := rig.DB.Create(p).Error; err != nil {
		t.Fatalf("seed purchase: %v", err)
	}
	return p
}
