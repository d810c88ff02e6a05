package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go-clinic-workflow/internal/delivery/dto"
	"go-clinic-workflow/internal/delivery/http/middleware"
	"go-clinic-workflow/internal/usecase"
	"go-clinic-workflow/pkg/response"
	"go-clinic-workflow/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type ConsultationHandler struct {
	consultationUsecase usecase.ConsultationUsecase
	queryUsecase        usecase.ConsultationQueryUsecase
	doctorResolver      usecase.DoctorResolver
	validator           *validator.CustomValidator
}

func NewConsultationHandler(
	consultationUsecase usecase.ConsultationUsecase,
	queryUsecase usecase.ConsultationQueryUsecase,
	doctorResolver usecase.DoctorResolver,
	validator *validator.CustomValidator,
) *ConsultationHandler {
	return &ConsultationHandler{
		consultationUsecase: consultationUsecase,
		queryUsecase:        queryUsecase,
		doctorResolver:      doctorResolver,
		validator:           validator,
	}
}

// Create records a consultation for today's (or the given) appointment.
// POST /consultations
func (h *ConsultationHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, doctorID, ok := h.decodeCreate(w, r)
	if !ok {
		return
	}

	consultation, err := h.consultationUsecase.Create(r.Context(), req, doctorID)
	if err != nil {
		writeError(w, err, "Failed to create consultation")
		return
	}

	response.Success(w, http.StatusCreated, "Consultation created successfully", consultation)
}

// Record creates the consultation or updates the one already attached to the appointment.
// POST /consultations/record
func (h *ConsultationHandler) Record(w http.ResponseWriter, r *http.Request) {
	req, doctorID, ok := h.decodeCreate(w, r)
	if !ok {
		return
	}

	consultation, err := h.consultationUsecase.CreateOrUpdate(r.Context(), req, doctorID)
	if err != nil {
		writeError(w, err, "Failed to record consultation")
		return
	}

	response.Success(w, http.StatusOK, "Consultation recorded successfully", consultation)
}

func (h *ConsultationHandler) decodeCreate(w http.ResponseWriter, r *http.Request) (*dto.CreateConsultationRequest, uuid.UUID, bool) {
	var req dto.CreateConsultationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return nil, uuid.Nil, false
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return nil, uuid.Nil, false
	}

	doctorID, err := h.doctorResolver.ResolveDoctor(r.Context(), middleware.GetSessionDoctorID(r.Context()), req.DoctorID)
	if err != nil {
		writeError(w, err, "Failed to resolve doctor")
		return nil, uuid.Nil, false
	}
	return &req, doctorID, true
}

// GET /consultations
func (h *ConsultationHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	consultations, err := h.queryUsecase.ListAll(r.Context(), middleware.GetSessionDoctorID(r.Context()))
	if err != nil {
		writeError(w, err, "Failed to get consultations")
		return
	}

	response.Success(w, http.StatusOK, "Consultations retrieved successfully", consultations)
}

// GET /consultations/patient/{patientId}
func (h *ConsultationHandler) ListByPatient(w http.ResponseWriter, r *http.Request) {
	patientID, ok := pathUUID(w, r, "patientId", "Invalid patient ID")
	if !ok {
		return
	}

	consultations, err := h.queryUsecase.ListByPatient(r.Context(), patientID, middleware.GetSessionDoctorID(r.Context()))
	if err != nil {
		writeError(w, err, "Failed to get consultations")
		return
	}

	response.Success(w, http.StatusOK, "Consultations retrieved successfully", consultations)
}

// Filter pages through a patient's consultations.
// GET /consultations/filter/{patientId}?page=&limit=&start_date=&end_date=&search=&sort_order=
func (h *ConsultationHandler) Filter(w http.ResponseWriter, r *http.Request) {
	patientID, ok := pathUUID(w, r, "patientId", "Invalid patient ID")
	if !ok {
		return
	}

	q := r.URL.Query()
	page, err := optionalInt(q.Get("page"))
	if err != nil {
		response.BadRequest(w, "Invalid page")
		return
	}
	limit, err := optionalInt(q.Get("limit"))
	if err != nil {
		response.BadRequest(w, "Invalid limit")
		return
	}

	query := &dto.ConsultationQuery{
		Page:      page,
		Limit:     limit,
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
		Search:    q.Get("search"),
		SortOrder: q.Get("sort_order"),
	}
	if err := h.validator.Validate(query); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.queryUsecase.FindAll(r.Context(), query, patientID, middleware.GetSessionDoctorID(r.Context()))
	if err != nil {
		writeError(w, err, "Failed to get consultations")
		return
	}

	meta := response.NewMeta(result.Pagination.Page, result.Pagination.Limit, result.Pagination.Total)
	response.SuccessWithMeta(w, http.StatusOK, "Consultations retrieved successfully", result, meta)
}

// GET /consultations/stats
func (h *ConsultationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.queryUsecase.Stats(r.Context(), middleware.GetSessionDoctorID(r.Context()))
	if err != nil {
		writeError(w, err, "Failed to get consultation stats")
		return
	}

	response.Success(w, http.StatusOK, "Consultation stats retrieved successfully", stats)
}

// GET /consultations/search?q=
func (h *ConsultationHandler) Search(w http.ResponseWriter, r *http.Request) {
	consultations, err := h.queryUsecase.Search(r.Context(), r.URL.Query().Get("q"), middleware.GetSessionDoctorID(r.Context()))
	if err != nil {
		writeError(w, err, "Failed to search consultations")
		return
	}

	response.Success(w, http.StatusOK, "Consultations retrieved successfully", consultations)
}

// GET /consultations/appointment/{appointmentId}
func (h *ConsultationHandler) GetByAppointment(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := pathUUID(w, r, "appointmentId", "Invalid appointment ID")
	if !ok {
		return
	}

	consultation, err := h.consultationUsecase.FindByAppointment(r.Context(), appointmentID)
	if err != nil {
		writeError(w, err, "Failed to get consultation")
		return
	}
	if consultation == nil {
		response.NotFound(w, "No consultation recorded for this appointment")
		return
	}

	response.Success(w, http.StatusOK, "Consultation retrieved successfully", consultation)
}

// GET /consultations/{id}
func (h *ConsultationHandler) Get(w http.ResponseWriter, r *http.Request) {
	consultation, err := h.consultationUsecase.FindOne(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err, "Failed to get consultation")
		return
	}

	response.Success(w, http.StatusOK, "Consultation retrieved successfully", consultation)
}

// PATCH /consultations/{id}
func (h *ConsultationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateConsultationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	consultation, err := h.consultationUsecase.Update(r.Context(), mux.Vars(r)["id"], &req, middleware.GetSessionDoctorID(r.Context()))
	if err != nil {
		writeError(w, err, "Failed to update consultation")
		return
	}

	response.Success(w, http.StatusOK, "Consultation updated successfully", consultation)
}

// DELETE /consultations/{id}
func (h *ConsultationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.consultationUsecase.Remove(r.Context(), mux.Vars(r)["id"], middleware.GetSessionDoctorID(r.Context())); err != nil {
		writeError(w, err, "Failed to delete consultation")
		return
	}

	response.Success(w, http.StatusOK, "Consultation deleted successfully", nil)
}

func pathUUID(w http.ResponseWriter, r *http.Request, name, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.BadRequest(w, message)
		return uuid.Nil, false
	}
	return id, true
}

func optionalInt(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}
