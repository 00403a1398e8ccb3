package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/authz"
	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/logging"
	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/models"
	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/store"
)

// ListStudents returns the user records with the Student role.
func (h *Handlers) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.users.ListByRole(r.Context(), models.RoleStudent)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Listing failed", err)
		return
	}

	profiles := make([]*UserProfile, 0, len(students))
	for _, u := range students {
		profiles = append(profiles, &UserProfile{
			ID:      u.ID,
			Email:   u.Email,
			Name:    u.Name,
			Role:    u.Role,
			SubRole: u.SubRole,
			Hostel:  u.Hostel,
		})
	}
	respondData(w, http.StatusOK, profiles)
}

// GetStudent returns one student record.
func (h *Handlers) GetStudent(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "USER_NOT_FOUND", "Student not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Lookup failed", err)
		return
	}
	if user.Role != models.RoleStudent {
		respondError(w, http.StatusNotFound, "USER_NOT_FOUND", "Student not found", nil)
		return
	}

	respondData(w, http.StatusOK, &UserProfile{
		ID:      user.ID,
		Email:   user.Email,
		Name:    user.Name,
		Role:    user.Role,
		SubRole: user.SubRole,
		Hostel:  user.Hostel,
	})
}

// ComplaintRequest is the payload for filing a complaint.
type ComplaintRequest struct {
	Description string `json:"description" validate:"required,max=4000"`
	Category    string `json:"category" validate:"required,max=64"`
	Hostel      string `json:"hostel" validate:"omitempty,max=64"`
}

// CreateComplaint files a new complaint on behalf of the caller.
func (h *Handlers) CreateComplaint(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req ComplaintRequest
	if !decodeBody(w, r, &req) {
		return
	}

	complaint := &models.Complaint{
		ID:          uuid.New().String(),
		StudentID:   p.UserID,
		Description: req.Description,
		Category:    req.Category,
		Hostel:      req.Hostel,
		Status:      models.ComplaintOpen,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := h.complaints.Put(r.Context(), complaint.ID, complaint); err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Create failed", err)
		return
	}

	logging.Info().Str("complaint_id", complaint.ID).Str("user_id", p.UserID).Msg("Complaint filed")
	respondData(w, http.StatusCreated, complaint)
}

// ListComplaints returns all complaints.
func (h *Handlers) ListComplaints(w http.ResponseWriter, r *http.Request) {
	complaints, err := h.complaints.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Listing failed", err)
		return
	}
	respondData(w, http.StatusOK, complaints)
}

// ComplaintStatusRequest updates a complaint's status.
type ComplaintStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open resolved"`
}

// UpdateComplaintStatus transitions a complaint. Resolution records who
// resolved it.
func (h *Handlers) UpdateComplaintStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req ComplaintStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	complaint, err := h.complaints.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Complaint not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Lookup failed", err)
		return
	}

	complaint.Status = req.Status
	if req.Status == models.ComplaintResolved {
		if p := authz.PrincipalFromContext(r.Context()); p != nil {
			complaint.ResolvedBy = p.UserID
		}
	}
	complaint.UpdatedAt = time.Now().UTC()
	if err := h.complaints.Put(r.Context(), id, complaint); err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Update failed", err)
		return
	}

	respondData(w, http.StatusOK, complaint)
}

// VisitorRequest registers a visitor at the gate.
type VisitorRequest struct {
	Name       string `json:"name" validate:"required,max=200"`
	Phone      string `json:"phone" validate:"omitempty,max=20"`
	VisitingID string `json:"visitingId" validate:"required"`
	Hostel     string `json:"hostel" validate:"omitempty,max=64"`
	Purpose    string `json:"purpose" validate:"omitempty,max=500"`
}

// RegisterVisitor records a visitor check-in, stamped with the gate account
// that entered it.
func (h *Handlers) RegisterVisitor(w http.ResponseWriter, r *http.Request) {
	var req VisitorRequest
	if !decodeBody(w, r, &req) {
		return
	}

	visitor := &models.Visitor{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Phone:       req.Phone,
		VisitingID:  req.VisitingID,
		Hostel:      req.Hostel,
		Purpose:     req.Purpose,
		CheckedInAt: time.Now().UTC(),
	}
	if p := authz.PrincipalFromContext(r.Context()); p != nil {
		visitor.EnteredBy = p.UserID
	}

	if err := h.visitors.Put(r.Context(), visitor.ID, visitor); err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Registration failed", err)
		return
	}
	respondData(w, http.StatusCreated, visitor)
}

// ListVisitors returns all visitor records.
func (h *Handlers) ListVisitors(w http.ResponseWriter, r *http.Request) {
	visitors, err := h.visitors.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Listing failed", err)
		return
	}
	respondData(w, http.StatusOK, visitors)
}

// CheckoutVisitor marks a visitor as departed.
func (h *Handlers) CheckoutVisitor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	visitor, err := h.visitors.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Visitor not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Lookup failed", err)
		return
	}

	now := time.Now().UTC()
	visitor.CheckedOut = &now
	if err := h.visitors.Put(r.Context(), id, visitor); err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Update failed", err)
		return
	}
	respondData(w, http.StatusOK, visitor)
}
