package attendance

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// セッション出席（授業・活動の出席記録フローから呼ばれる）
	r.POST("/attendance/sessions", h.RecordSession)
	r.DELETE("/attendance/sessions", h.DeleteSessions)

	// 保守用の冪等一括再計算
	r.POST("/attendance/sync", h.SyncRange)

	// 日次サマリ照会
	r.GET("/attendance/daily", h.GetDaily)
}

// ---------- handlers ----------

// POST /attendance/sessions
func (h *Handler) RecordSession(c *gin.Context) {
	var req RecordSessionAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrInvalid("invalid json or missing required fields"))
		return
	}

	resp, err := h.svc.RecordSessionAttendance(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DELETE /attendance/sessions
func (h *Handler) DeleteSessions(c *gin.Context) {
	var req DeleteSessionAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrInvalid("invalid json or missing required fields"))
		return
	}

	resp, err := h.svc.DeleteSessionAttendance(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// POST /attendance/sync
func (h *Handler) SyncRange(c *gin.Context) {
	var req SyncRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrInvalid("invalid json or missing required fields"))
		return
	}

	resp, err := h.svc.SyncRange(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GET /attendance/daily?username=&from=&to=
func (h *Handler) GetDaily(c *gin.Context) {
	resp, err := h.svc.GetDailySummaries(c.Request.Context(), c.Query("username"), c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(toHTTPStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
