// Progress HTTP handlers.
//
// This file exposes REST endpoints for lesson-completion tracking:
//   - PUT /courses/{id}/lessons/{lessonID}/progress  (mark complete/incomplete)
//   - GET /courses/{id}/progress                     (derived course completion)
//
// Ordering of failures is fixed: a missing lesson or course is a 404 before
// ownership is ever considered, so an unentitled caller cannot probe which
// lesson ids exist behind the 403.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matrix-academy/go-course-backend/internal/services"
)

//
// DTOs
//

// SetProgressRequest is the JSON payload for marking a lesson complete or
// rolling the mark back.
type SetProgressRequest struct {
	// Completed is the desired completion state; the write is
	// latest-write-wins.
	Completed *bool `json:"completed" binding:"required" example:"true"`
}

// ProgressResponse echoes the stored completion state after a write.
type ProgressResponse struct {
	LessonID    string  `json:"lesson_id"`
	Completed   bool    `json:"completed"`
	CompletedAt *string `json:"completed_at"`
}

//
// Handlers
//

// SetLessonProgress godoc
// @ID          setLessonProgress
// @Summary     Set lesson completion
// @Description Marks a lesson complete or incomplete for the caller. Requires ownership
// @Description of the course. Re-sending the same state is a no-op that succeeds.
// @Tags        Progress
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Course ID"
// @Param       lessonID   path    string  true  "Lesson ID"
// @Param       body       body    handlers.SetProgressRequest  true  "Desired completion state"
//
// @Success     200  {object} handlers.ProgressResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     403  {object} handlers.ErrorResponse "Course not purchased"
// @Failure     404  {object} handlers.ErrorResponse "Lesson not found in course"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /courses/{id}/lessons/{lessonID}/progress [put]
func (h *Handlers) SetLessonProgress(c *gin.Context) {
	courseID := c.Param("id")
	lessonID := c.Param("lessonID")

	var req SetProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Completed == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "completed (boolean) required")
		return
	}

	rec, err := h.progressSvc.SetLessonProgress(c.Request.Context(), userID(c), courseID, lessonID, *req.Completed)
	if err != nil {
		switch err {
		case services.ErrLessonNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "lesson not found")
		case services.ErrCourseNotPurchased:
			fail(c, http.StatusForbidden, ErrCodeForbidden, "course not purchased")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	resp := ProgressResponse{LessonID: rec.LessonID, Completed: rec.Completed}
	if rec.CompletedAt != nil {
		s := rec.CompletedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		resp.CompletedAt = &s
	}
	ok(c, http.StatusOK, resp)
}

// GetCourseProgress godoc
// @ID          getCourseProgress
// @Summary     Get course progress
// @Description Returns the caller's derived completion for a course: completed count,
// @Description total lessons, and a rounded percentage (0 when the course has no lessons).
// @Tags        Progress
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Course ID"
//
// @Success     200  {object} services.CourseProgress
// @Failure     403  {object} handlers.ErrorResponse "Course not purchased"
// @Failure     404  {object} handlers.ErrorResponse "Course not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /courses/{id}/progress [get]
func (h *Handlers) GetCourseProgress(c *gin.Context) {
	prog, err := h.progressSvc.GetCourseProgress(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		switch err {
		case services.ErrCourseNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "course not found")
		case services.ErrCourseNotPurchased:
			fail(c, http.StatusForbidden, ErrCodeForbidden, "course not purchased")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, prog)
}
