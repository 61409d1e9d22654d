package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gudang/internal/core/apperror"
	"gudang/internal/domain/importer"
	"gudang/internal/domain/ledger"
	"gudang/internal/domain/snapshot"
	"gudang/internal/infrastructure/storage/postgres"
)

// maxUploadBytes caps CSV and snapshot uploads.
const maxUploadBytes = 32 << 20

// AdminHandler handles bulk import, snapshot transfer and store reset.
type AdminHandler struct {
	*BaseHandler
	importer  *importer.Service
	snapshots *snapshot.Service
	txm       *postgres.TxManager
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(base *BaseHandler, imp *importer.Service, snapshots *snapshot.Service, txm *postgres.TxManager) *AdminHandler {
	return &AdminHandler{BaseHandler: base, importer: imp, snapshots: snapshots, txm: txm}
}

// ImportCSV records a whole CSV file of receipt rows as one batch receipt.
func (h *AdminHandler) ImportCSV(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.Error(c, apperror.NewValidation("file form field is required").WithCause(err))
		return
	}
	defer file.Close()

	res, err := h.importer.Import(c.Request.Context(),
		io.LimitReader(file, maxUploadBytes),
		ledger.ReceiptFields{
			Supplier: c.PostForm("supplier"),
			Note:     fmt.Sprintf("csv import: %s", header.Filename),
		})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, res)
}

// ExportSnapshot streams the whole store as a compressed archive.
func (h *AdminHandler) ExportSnapshot(c *gin.Context) {
	data, err := h.snapshots.Export(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	filename := fmt.Sprintf("gudang-snapshot-%s.json.zst", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/zstd", data)
}

// RestoreSnapshot loads an archive into an empty store. Admin only.
func (h *AdminHandler) RestoreSnapshot(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxUploadBytes))
	if err != nil {
		h.Error(c, apperror.NewValidation("failed to read request body").WithCause(err))
		return
	}
	if len(data) == 0 {
		h.Error(c, apperror.NewValidation("request body is empty"))
		return
	}

	if err := h.snapshots.Restore(c.Request.Context(), data); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "snapshot restored")
}

// ResetStore removes all items and movements. Admin only.
func (h *AdminHandler) ResetStore(c *gin.Context) {
	if err := postgres.ResetStore(c.Request.Context(), h.txm); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "store reset")
}
