package leave

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/leaves/summary", h.Summary)
}

// GET /leaves/summary?username=&from=&to=
func (h *Handler) Summary(c *gin.Context) {
	resp, err := h.svc.Summary(c.Request.Context(), c.Query("username"), c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(toHTTPStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
