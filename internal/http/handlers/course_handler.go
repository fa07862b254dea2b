// Course catalog HTTP handlers.
//
// This file exposes REST endpoints for the public course catalog:
//   - GET /courses        (list, paginated, ETag support)
//   - GET /courses/{id}   (detail with lesson outline)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
// The catalog is ungated; lesson bodies never appear here.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/matrix-academy/go-course-backend/internal/domain"
	"github.com/matrix-academy/go-course-backend/internal/payments"
	"github.com/matrix-academy/go-course-backend/internal/repo"
	"github.com/matrix-academy/go-course-backend/internal/services"
	"github.com/matrix-academy/go-course-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// CourseService defines catalog reads consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type CourseService interface {
	// ListPage returns a page of the catalog and the total course count.
	ListPage(ctx context.Context, page, pageSize int) ([]services.CourseSummary, int64, error)
	// Get returns one course with its ordered lesson outline.
	Get(ctx context.Context, courseID string) (*services.CourseDetail, error)
}

// PurchaseService defines entitlement writes and reads consumed by handlers.
type PurchaseService interface {
	// Purchase grants the user an entitlement for the course.
	Purchase(ctx context.Context, userID, courseID string) (*services.PurchaseResult, error)
	// HasPurchased reports ownership and, when owned, the grant time.
	HasPurchased(ctx context.Context, userID, courseID string) (bool, *time.Time, error)
	// ListPage returns a page of the user's purchases and the total count.
	ListPage(ctx context.Context, userID string, page, pageSize int) ([]services.PurchaseRecord, int64, error)
}

// ProgressService defines lesson-completion writes and aggregate reads.
type ProgressService interface {
	// SetLessonProgress upserts the caller's completion state for a lesson.
	SetLessonProgress(ctx context.Context, userID, courseID, lessonID string, completed bool) (*domain.LessonProgress, error)
	// GetCourseProgress returns the derived completion view for a course.
	GetCourseProgress(ctx context.Context, userID, courseID string) (*services.CourseProgress, error)
}

// LessonService defines gated lesson content reads.
type LessonService interface {
	// Get returns the full lesson body for an entitled user.
	Get(ctx context.Context, userID, lessonID string) (*services.LessonView, error)
}

// CheckoutService defines checkout session creation at the provider boundary.
type CheckoutService interface {
	// CreateSession opens a provider checkout session for the purchase.
	CreateSession(ctx context.Context, userID, courseID string) (*services.CheckoutSession, error)
}

// WebhookService consumes verified payment events.
type WebhookService interface {
	// Process converts a verified event into an entitlement write.
	Process(ctx context.Context, ev payments.Event) (services.Ack, error)
}

//
// Handler wiring
//

// WebhookConfig carries the signature-verification settings the webhook
// endpoint needs. An empty Secret disables the endpoint.
type WebhookConfig struct {
	Secret    string
	Tolerance time.Duration
}

// Handlers groups HTTP endpoints for courses, lessons, purchases, progress,
// checkout and the payment webhook. It depends on abstract service interfaces
// to keep transport concerns separate from business logic.
type Handlers struct {
	courseSvc   CourseService
	purchaseSvc PurchaseService
	progressSvc ProgressService
	lessonSvc   LessonService
	checkoutSvc CheckoutService
	webhookSvc  WebhookService
	webhook     WebhookConfig
}

// New constructs and returns a Handlers instance bound to the given services.
func New(courseSvc CourseService, purchaseSvc PurchaseService, progressSvc ProgressService, lessonSvc LessonService, checkoutSvc CheckoutService, webhookSvc WebhookService, webhook WebhookConfig) *Handlers {
	return &Handlers{
		courseSvc:   courseSvc,
		purchaseSvc: purchaseSvc,
		progressSvc: progressSvc,
		lessonSvc:   lessonSvc,
		checkoutSvc: checkoutSvc,
		webhookSvc:  webhookSvc,
		webhook:     webhook,
	}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListCoursesResponse wraps a page of the catalog and pagination information.
type ListCoursesResponse struct {
	Courses    []services.CourseSummary `json:"courses"`
	Pagination Pagination               `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// paginationFor derives the response metadata for one page.
func paginationFor(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

//
// Handlers
//

// ListCourses godoc
// @ID          listCourses
// @Summary     List courses (paginated)
// @Description Returns a page of the public catalog. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Courses
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListCoursesResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /courses [get]
func (h *Handlers) ListCourses(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, ok := h.courseSvc.(*services.CourseService); ok {
		db = svc.DB
	}
	if db != nil {
		count, maxTS, err := repo.CatalogStats(ctx, db)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"courses:%d:%d"`, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.courseSvc.ListPage(ctx, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	ok(c, http.StatusOK, ListCoursesResponse{
		Courses:    items,
		Pagination: paginationFor(page, pageSize, total),
	})
}

// GetCourse godoc
// @ID          getCourse
// @Summary     Get a course
// @Description Returns course metadata and the ordered lesson outline (titles only, no content). Ungated.
// @Tags        Courses
// @Produce     json
//
// @Param       id  path  string  true  "Course ID"
//
// @Success     200  {object} services.CourseDetail
// @Failure     404  {object} handlers.ErrorResponse "Course not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /courses/{id} [get]
func (h *Handlers) GetCourse(c *gin.Context) {
	detail, err := h.courseSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "course not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, detail)
}
