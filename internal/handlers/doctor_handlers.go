package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"medassist-backend/internal/models"
	"medassist-backend/pkg/httputil"
)

// DoctorService defines the interface expected from the doctor service.
type DoctorService interface {
	ListDoctors(ctx context.Context, filter models.DoctorFilter) ([]models.DoctorResponse, error)
	GetDoctor(ctx context.Context, id uuid.UUID) (*models.DoctorResponse, error)
	ListSpecializations(ctx context.Context) ([]string, error)
	UpsertProfile(ctx context.Context, userID uuid.UUID, role models.Role, req models.DoctorProfileRequest) (*models.DoctorResponse, error)
}

type DoctorHandlers struct {
	doctorService DoctorService
}

func NewDoctorHandlers(doctorService DoctorService) *DoctorHandlers {
	return &DoctorHandlers{doctorService: doctorService}
}

// HandleListDoctors handles GET /api/doctors?specialization=&city=&search=.
func (h *DoctorHandlers) HandleListDoctors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.DoctorFilter{
		Specialization: q.Get("specialization"),
		City:           q.Get("city"),
		Search:         q.Get("search"),
	}

	doctors, err := h.doctorService.ListDoctors(r.Context(), filter)
	if err != nil {
		respondServiceError(w, "DoctorHandlers", err, "Failed to list doctors")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.DoctorListResponse{Success: true, Count: len(doctors), Data: doctors})
}

// HandleGetDoctor handles GET /api/doctors/{doctorID}.
func (h *DoctorHandlers) HandleGetDoctor(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "doctorID")
	if !ok {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid doctor ID")
		return
	}

	doctor, err := h.doctorService.GetDoctor(r.Context(), id)
	if err != nil {
		respondServiceError(w, "DoctorHandlers", err, "Failed to get doctor")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.DoctorEnvelope{Success: true, Data: *doctor})
}

// HandleListSpecializations handles GET /api/doctors/specializations.
func (h *DoctorHandlers) HandleListSpecializations(w http.ResponseWriter, r *http.Request) {
	specs, err := h.doctorService.ListSpecializations(r.Context())
	if err != nil {
		respondServiceError(w, "DoctorHandlers", err, "Failed to list specializations")
		return
	}
	if specs == nil {
		specs = []string{}
	}

	httputil.RespondJSON(w, http.StatusOK, models.SpecializationsResponse{Success: true, Data: specs})
}

// HandleUpsertProfile handles POST /api/doctors.
func (h *DoctorHandlers) HandleUpsertProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.DoctorProfileRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	doctor, err := h.doctorService.UpsertProfile(r.Context(), caller.UserID, caller.Role, req)
	if err != nil {
		respondServiceError(w, "DoctorHandlers", err, "Failed to save doctor profile")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.DoctorEnvelope{Success: true, Data: *doctor})
}
