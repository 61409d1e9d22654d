package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"gudang/internal/core/apperror"
	"gudang/internal/domain/ledger"
	"gudang/internal/infrastructure/http/v1/dto"
)

const dateLayout = "2006-01-02"

// LedgerHandler handles stock receipt, issue and movement log requests.
type LedgerHandler struct {
	*BaseHandler
	engine *ledger.Engine
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(base *BaseHandler, engine *ledger.Engine) *LedgerHandler {
	return &LedgerHandler{BaseHandler: base, engine: engine}
}

// ReceiveSingle records a single-line stock receipt.
func (h *LedgerHandler) ReceiveSingle(c *gin.Context) {
	var req dto.ReceiptRequest
	if !h.BindJSON(c, &req) {
		return
	}

	res, err := h.engine.ReceiveSingle(c.Request.Context(), req.Line(), ledger.ReceiptFields{
		Supplier: req.Supplier,
		Note:     req.Note,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.TrxResponse{TrxCode: res.TrxCode})
}

// ReceiveBatch records a multi-line stock receipt under one bundle code.
func (h *LedgerHandler) ReceiveBatch(c *gin.Context) {
	var req dto.ReceiptBatchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	res, err := h.engine.ReceiveBatch(c.Request.Context(), req.Lines, ledger.ReceiptFields{
		Supplier: req.Supplier,
		Note:     req.Note,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.TrxResponse{TrxCode: res.TrxCode})
}

// IssueSingle records a single-line stock issue.
func (h *LedgerHandler) IssueSingle(c *gin.Context) {
	var req dto.IssueRequest
	if !h.BindJSON(c, &req) {
		return
	}

	res, err := h.engine.IssueSingle(c.Request.Context(), req.Line(), ledger.IssueFields{
		Requester: req.Requester,
		Note:      req.Note,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.TrxResponse{TrxCode: res.TrxCode})
}

// IssueBatch records a multi-line stock issue under one bundle code.
func (h *LedgerHandler) IssueBatch(c *gin.Context) {
	var req dto.IssueBatchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	res, err := h.engine.IssueBatch(c.Request.Context(), req.Lines, ledger.IssueFields{
		Requester: req.Requester,
		Note:      req.Note,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.TrxResponse{TrxCode: res.TrxCode})
}

// Movements returns movement log records matching query filters.
func (h *LedgerHandler) Movements(c *gin.Context) {
	filter := ledger.Filter{
		TrxType:     ledger.MovementType(c.Query("trx_type")),
		BundleCode:  c.Query("bundle_code"),
		Limit:       h.ParseIntQuery(c, "limit", 0),
		NewestFirst: c.Query("order") == "desc",
	}
	if filter.TrxType != "" && filter.TrxType != ledger.MovementIn && filter.TrxType != ledger.MovementOut {
		h.Error(c, apperror.NewValidation("trx_type must be in or out"))
		return
	}

	for _, bound := range []struct {
		key  string
		dest **time.Time
	}{
		{"date_from", &filter.FromDate},
		{"date_to", &filter.ToDate},
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

	movements, err := h.engine.Movements(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, movements)
}

// Bundle returns all movements written by one submitted transaction.
func (h *LedgerHandler) Bundle(c *gin.Context) {
	code := c.Param("code")
	movements, err := h.engine.Bundle(c.Request.Context(), code)
	if err != nil {
		h.Error(c, err)
		return
	}
	if len(movements) == 0 {
		h.Error(c, apperror.NewNotFound("bundle", code))
		return
	}
	h.OK(c, movements)
}
