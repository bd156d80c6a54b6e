package backup

import (
	"fmt"
	"io"
	"net/http"

	"github.com/noah-isme/billd/internal/common"
)

// maxImportBytes bounds how large an uploaded snapshot may be.
const maxImportBytes = 32 << 20

// Handler exposes HTTP handlers for backup export and import.
type Handler struct {
	Svc *Service
}

// Export handles GET /api/v1/backup/export.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Svc.Export(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to export data", nil)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "billd-backup-"+snap.ExportDate[:10]+".json"))
	common.JSON(w, http.StatusOK, snap)
}

// Import handles POST /api/v1/backup/import. The body is a snapshot document.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "unable to read request body", nil)
		return
	}
	result, err := h.Svc.Import(r.Context(), raw)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "IMPORT_FAILED", "invalid file format", map[string]any{
			"invoicesImported": result.InvoicesImported,
		})
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}
