package report

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/attendance/report", h.BuildReport)
	r.GET("/attendance/report/export", h.ExportCSV)
}

// ---------- handlers ----------

// GET /attendance/report?campus_id=&roles=Student,Teacher&from=&to=&academic_year=&class_id=&section_id=
func (h *Handler) BuildReport(c *gin.Context) {
	q, ok := parseQuery(c)
	if !ok {
		return
	}

	resp, err := h.svc.BuildReport(c.Request.Context(), q)
	if err != nil {
		c.JSON(toHTTPStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GET /attendance/report/export?...&encoding=sjis
func (h *Handler) ExportCSV(c *gin.Context) {
	q, ok := parseQuery(c)
	if !ok {
		return
	}

	encoding := c.DefaultQuery("encoding", EncodingUTF8)
	data, err := h.svc.ExportCSV(c.Request.Context(), q, encoding)
	if err != nil {
		c.JSON(toHTTPStatus(err), err)
		return
	}

	filename := "attendance_" + q.From + "_" + q.To + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	contentType := "text/csv; charset=utf-8"
	if encoding == EncodingSJIS {
		contentType = "text/csv; charset=Shift_JIS"
	}
	c.Data(http.StatusOK, contentType, data)
}

func parseQuery(c *gin.Context) (Query, bool) {
	q := Query{
		CampusID:         parseUintDefault(c.Query("campus_id"), 0),
		TenantID:         parseUintDefault(c.Query("tenant_id"), 0),
		AcademicYearName: c.Query("academic_year"),
		From:             c.Query("from"),
		To:               c.Query("to"),
		ClassID:          parseUintDefault(c.Query("class_id"), 0),
		SectionID:        parseUintDefault(c.Query("section_id"), 0),
	}
	if v := c.Query("roles"); v != "" {
		for _, r := range strings.Split(v, ",") {
			if r = strings.TrimSpace(r); r != "" {
				q.Roles = append(q.Roles, r)
			}
		}
	}
	if q.CampusID == 0 || len(q.Roles) == 0 || q.From == "" || q.To == "" {
		c.JSON(http.StatusBadRequest, ErrInvalid("campus_id, roles, from and to are required"))
		return q, false
	}
	return q, true
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
