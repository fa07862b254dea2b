// Lesson HTTP handlers.
//
// This file exposes the gated lesson content endpoint:
//   - GET /lessons/{id}
//
// The lesson body (content, video URL) is only served to callers who own the
// parent course. Lookup order is fixed: an unknown lesson id is a 404 before
// ownership is ever checked.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matrix-academy/go-course-backend/internal/services"
)

// GetLesson godoc
// @ID          getLesson
// @Summary     Get lesson content
// @Description Returns the full lesson (content, video URL, caller's progress, and the
// @Description id of the next lesson in the course). Requires ownership of the course.
// @Tags        Lessons
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Lesson ID"
//
// @Success     200  {object} services.LessonView
// @Failure     403  {object} handlers.ErrorResponse "Course not purchased"
// @Failure     404  {object} handlers.ErrorResponse "Lesson not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /lessons/{id} [get]
func (h *Handlers) GetLesson(c *gin.Context) {
	view, err := h.lessonSvc.Get(c.Request.Context(), userID(c), c.Param("id"))
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
	ok(c, http.StatusOK, view)
}
