package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"medassist-backend/internal/models"
	"medassist-backend/internal/services"
	"medassist-backend/pkg/httputil"
)

// AppointmentService defines the interface expected from the appointment service.
type AppointmentService interface {
	Create(ctx context.Context, caller services.Caller, req models.CreateAppointmentRequest) (*models.AppointmentResponse, error)
	List(ctx context.Context, caller services.Caller) ([]models.AppointmentResponse, error)
	Get(ctx context.Context, caller services.Caller, id uuid.UUID) (*models.AppointmentResponse, error)
	Update(ctx context.Context, caller services.Caller, id uuid.UUID, req models.UpdateAppointmentRequest) (*models.AppointmentResponse, error)
	Cancel(ctx context.Context, caller services.Caller, id uuid.UUID) error
}

type AppointmentHandlers struct {
	appointmentService AppointmentService
}

func NewAppointmentHandlers(appointmentService AppointmentService) *AppointmentHandlers {
	return &AppointmentHandlers{appointmentService: appointmentService}
}

// HandleCreate handles POST /api/appointments.
func (h *AppointmentHandlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.CreateAppointmentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	appt, err := h.appointmentService.Create(r.Context(), caller, req)
	if err != nil {
		respondServiceError(w, "AppointmentHandlers", err, "Failed to create appointment")
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, models.AppointmentEnvelope{Success: true, Data: *appt})
}

// HandleList handles GET /api/appointments.
func (h *AppointmentHandlers) HandleList(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	appts, err := h.appointmentService.List(r.Context(), caller)
	if err != nil {
		respondServiceError(w, "AppointmentHandlers", err, "Failed to list appointments")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.AppointmentListResponse{Success: true, Count: len(appts), Data: appts})
}

// HandleGet handles GET /api/appointments/{appointmentID}.
func (h *AppointmentHandlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	appt, err := h.appointmentService.Get(r.Context(), caller, id)
	if err != nil {
		respondServiceError(w, "AppointmentHandlers", err, "Failed to get appointment")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.AppointmentEnvelope{Success: true, Data: *appt})
}

// HandleUpdate handles PUT /api/appointments/{appointmentID}.
func (h *AppointmentHandlers) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	var req models.UpdateAppointmentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	appt, err := h.appointmentService.Update(r.Context(), caller, id, req)
	if err != nil {
		respondServiceError(w, "AppointmentHandlers", err, "Failed to update appointment")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.AppointmentEnvelope{Success: true, Data: *appt})
}

// HandleCancel handles DELETE /api/appointments/{appointmentID}.
func (h *AppointmentHandlers) HandleCancel(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	if err := h.appointmentService.Cancel(r.Context(), caller, id); err != nil {
		respondServiceError(w, "AppointmentHandlers", err, "Failed to cancel appointment")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.MessageResponse{Success: true, Message: "Appointment cancelled successfully"})
}

func (h *AppointmentHandlers) callerAndID(w http.ResponseWriter, r *http.Request) (services.Caller, uuid.UUID, bool) {
	caller, ok := callerFromRequest(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return services.Caller{}, uuid.Nil, false
	}
	id, ok := uuidParam(r, "appointmentID")
	if !ok {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid appointment ID")
		return services.Caller{}, uuid.Nil, false
	}
	return caller, id, true
}
