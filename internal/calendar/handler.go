package calendar

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// 判定・照会
	r.GET("/calendar/day-status", h.DayStatus)
	r.GET("/calendar/events", h.ListEvents)

	// 設定（管理者向け）
	r.POST("/calendar/holidays", h.CreateHolidayEvent)
	r.DELETE("/calendar/holidays/:event_ulid", h.DeleteHolidayEvent)
	r.POST("/calendar/special-working-days", h.CreateSpecialWorkingDay)
	r.PUT("/calendar/weekend-policy", h.SetWeekendPolicy)
}

// ---------- handlers ----------

// GET /calendar/day-status?campus_id=&date=&academic_year_id=
func (h *Handler) DayStatus(c *gin.Context) {
	campusID := parseUintDefault(c.Query("campus_id"), 0)
	yearID := parseUintDefault(c.Query("academic_year_id"), 0)

	resp, err := h.svc.DayStatus(c.Request.Context(), campusID, c.Query("date"), yearID)
	if err != nil {
		c.JSON(toHTTPStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GET /calendar/events?campus_id=&from=&to=
func (h *Handler) ListEvents(c *gin.Context) {
	campusID := parseUintDefault(c.Query("campus_id"), 0)

	resp, err := h.svc.ListEvents(c.Request.Context(), campusID, c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(toHTTPStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) CreateHolidayEvent(c *gin.Context) {
	var req CreateHolidayEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrInvalid("invalid json or missing required fields"))
		return
	}

	resp, err := h.svc.CreateHolidayEvent(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), err)
		return
	}
	c.Header("Location", "/calendar/holidays/"+resp.EventULID)
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) DeleteHolidayEvent(c *gin.Context) {
	campusID := parseUintDefault(c.Query("campus_id"), 0)

	if err := h.svc.DeleteHolidayEvent(c.Request.Context(), campusID, c.Param("event_ulid")); err != nil {
		c.JSON(toHTTPStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *Handler) CreateSpecialWorkingDay(c *gin.Context) {
	var req CreateSpecialWorkingDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrInvalid("invalid json or missing required fields"))
		return
	}

	resp, err := h.svc.CreateSpecialWorkingDay(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) SetWeekendPolicy(c *gin.Context) {
	var req UpsertWeekendPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrInvalid("invalid json or missing required fields"))
		return
	}

	if err := h.svc.SetWeekendPolicy(c.Request.Context(), req); err != nil {
		c.JSON(toHTTPStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "policy saved"})
}

func parseUintDefault(s string, def uint64) uint64 {
	if s == "" {
		return def
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return def
	}
	return v
}
