package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"gudang/internal/core/apperror"
	"gudang/internal/domain/reports"
)

// ReportsHandler handles aggregation requests over the movement log.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, service: service}
}

// Summary groups movements into weekly or monthly buckets per item and
// direction.
func (h *ReportsHandler) Summary(c *gin.Context) {
	period := reports.Period(c.DefaultQuery("period", string(reports.PeriodMonth)))

	rows, err := h.service.SummaryByPeriod(c.Request.Context(), period)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rows)
}

// Totals reconciles in/out totals inside an optional date window against
// current stock.
func (h *ReportsHandler) Totals(c *gin.Context) {
	var window reports.DateRange
	for _, bound := range []struct {
		key  string
		dest **time.Time
	}{
		{"date_from", &window.From},
		{"date_to", &window.To},
	} {
		raw := c.Query(bound.key)
		if raw == "" {
			continue
		}
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("date must be formatted YYYY-MM-DD").
				WithDetail("field", bound.key))
			return
		}
		*bound.dest = &parsed
	}

	rows, err := h.service.TotalsForPeriod(c.Request.Context(), window)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rows)
}

// Compare compares consumption between two months, optionally restricted
// to a comma-separated list of item names.
func (h *ReportsHandler) Compare(c *gin.Context) {
	monthA := c.Query("month_a")
	monthB := c.Query("month_b")
	if monthA == "" || monthB == "" {
		h.Error(c, apperror.NewValidation("month_a and month_b are required"))
		return
	}

	var itemFilter []string
	if raw := c.Query("items"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				itemFilter = append(itemFilter, name)
			}
		}
	}

	rows, err := h.service.CompareMonths(c.Request.Context(), monthA, monthB, itemFilter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rows)
}
