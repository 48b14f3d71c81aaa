package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mentora-inc/mentora/internal/shared/utils"
)

const TeacherIDKey = "teacher_id"

// RequireTeacher resolves the authenticated teacher from the X-Teacher-ID
// header set by the platform gateway. The gateway has already verified the
// session; this service only needs the identity.
func RequireTeacher() gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.GetHeader("X-Teacher-ID")
		if idStr == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "missing teacher identity")
			c.Abort()
			return
		}

		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil || id == 0 {
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid teacher identity")
			c.Abort()
			return
		}

		c.Set(TeacherIDKey, uint(id))
		c.Next()
	}
}

// TeacherIDFromContext returns the teacher id set by RequireTeacher.
func TeacherIDFromContext(c *gin.Context) (uint, bool) {
	v, exists := c.Get(TeacherIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
