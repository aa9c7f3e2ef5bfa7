package directory

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// 生徒の在籍照会（出席画面の学年度セレクタが使う）
	r.GET("/students/:username/enrollments", h.StudentEnrollments)
}

// GET /students/:username/enrollments
func (h *Handler) StudentEnrollments(c *gin.Context) {
	username := c.Param("username")

	rows, err := h.svc.StudentEnrollments(c.Request.Context(), username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "enrollment lookup failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username":    username,
		"enrollments": rows,
	})
}
