package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"panchayat/internal/certificate"
	"panchayat/internal/complaint"
	"panchayat/internal/identity"
	"panchayat/internal/platform/middleware"
	"panchayat/internal/transport/http/shared"
	"panchayat/pkg/requestcontext"
)

type citizensHandler struct {
	users        *identity.Service
	certificates *certificate.Service
	complaints   *complaint.Service
	logger       *slog.Logger
}

func (h *citizensHandler) Register(r chi.Router) {
	r.Route("/citizens", func(r chi.Router) {
		r.Get("/profile/me", h.handleMyProfile)
		r.Put("/profile/me", h.handleUpdateMyProfile)
		r.With(middleware.RequireRole(roleAdmin, roleClerk)).Get("/", h.handleList)
		r.With(middleware.RequireRole(roleAdmin, roleClerk)).Get("/{id}", h.handleGet)
	})
}

func (h *citizensHandler) handleMyProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUser(r.Context(), requestcontext.UserID(r.Context()))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, user)
}

type profileUpdate struct {
	FullName string `json:"full_name"`
	Mobile   string `json:"mobile"`
}

func (h *citizensHandler) handleUpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	input, ok := shared.Decode[profileUpdate](w, r)
	if !ok {
		return
	}
	user, err := h.users.UpdateOwnProfile(r.Context(), input.FullName, input.Mobile)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, user)
}

func (h *citizensHandler) handleList(w http.ResponseWriter, r *http.Request) {
	citizens, err := h.users.ListCitizens(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, citizens)
}

type citizenDetail struct {
	identity.User
	Certificates []certificate.Certificate `json:"certificates"`
	Complaints   []complaint.Complaint     `json:"complaints"`
}

func (h *citizensHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	citizen, err := h.users.GetCitizen(ctx, id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	certs, err := h.certificates.ListByCitizen(ctx, id, 0)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	complaints, err := h.complaints.ListByCitizen(ctx, id, 0)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, citizenDetail{User: citizen, Certificates: certs, Complaints: complaints})
}
