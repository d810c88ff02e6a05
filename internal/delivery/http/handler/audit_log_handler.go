package handler

import (
	"net/http"
	"strconv"

	"go-clinic-workflow/internal/usecase"
	"go-clinic-workflow/pkg/response"

	"github.com/gorilla/mux"
)

type AuditLogHandler struct {
	auditLogUsecase usecase.AuditLogUsecase
}

func NewAuditLogHandler(auditLogUsecase usecase.AuditLogUsecase) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUsecase: auditLogUsecase,
	}
}

func (h *AuditLogHandler) GetAuditLog(w http.ResponseWriter, r *http.Request) {
	auditLogID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid audit log ID")
		return
	}

	auditLog, err := h.auditLogUsecase.GetAuditLog(r.Context(), auditLogID)
	if err != nil {
		writeError(w, err, "Failed to get audit log")
		return
	}

	response.Success(w, http.StatusOK, "Audit log retrieved successfully", auditLog)
}

// GetAllAuditLogs lists audit entries newest first. ?page=&limit=
func (h *AuditLogHandler) GetAllAuditLogs(w http.ResponseWriter, r *http.Request) {
	page, err := optionalInt(r.URL.Query().Get("page"))
	if err != nil {
		response.BadRequest(w, "Invalid page")
		return
	}
	limit, err := optionalInt(r.URL.Query().Get("limit"))
	if err != nil {
		response.BadRequest(w, "Invalid limit")
		return
	}

	auditLogs, err := h.auditLogUsecase.GetAllAuditLogs(r.Context(), page, limit)
	if err != nil {
		writeError(w, err, "Failed to get audit logs")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Audit logs retrieved successfully", auditLogs.Logs,
		response.NewMeta(auditLogs.Page, auditLogs.Limit, auditLogs.Total))
}
