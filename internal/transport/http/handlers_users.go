package httptransport

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"panchayat/internal/certificate"
	"panchayat/internal/complaint"
	"panchayat/internal/identity"
	"panchayat/internal/platform/middleware"
	"panchayat/internal/transport/http/shared"
)

// recentLimit caps the embedded history on single-user reads.
const recentLimit = 5

type usersHandler struct {
	users        *identity.Service
	certificates *certificate.Service
	complaints   *complaint.Service
	logger       *slog.Logger
}

func (h *usersHandler) Register(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.With(middleware.RequireRole(roleAdmin, roleClerk)).Get("/", h.handleList)
		r.With(middleware.RequireRole(roleAdmin)).Get("/clerks", h.handleListClerks)
		r.With(middleware.RequireRole(roleAdmin)).Post("/clerks", h.handleCreateClerk)
		r.With(middleware.RequireRole(roleAdmin, roleClerk)).Get("/{id}", h.handleGet)
		r.With(middleware.RequireRole(roleAdmin)).Put("/{id}", h.handleUpdate)
		r.With(middleware.RequireRole(roleAdmin)).Put("/{id}/deactivate", h.handleDeactivate)
	})
}

func (h *usersHandler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	result, err := h.users.ListUsers(r.Context(), identity.Role(q.Get("role")), q.Get("q"), page, limit)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, result)
}

func (h *usersHandler) handleListClerks(w http.ResponseWriter, r *http.Request) {
	clerks, err := h.users.ListClerks(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, clerks)
}

func (h *usersHandler) handleCreateClerk(w http.ResponseWriter, r *http.Request) {
	input, ok := shared.Decode[identity.CreateClerkInput](w, r)
	if !ok {
		return
	}
	clerk, err := h.users.CreateClerk(r.Context(), input)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, clerk)
}

type userDetail struct {
	identity.User
	Certificates []certificate.Certificate `json:"certificates"`
	Complaints   []complaint.Complaint     `json:"complaints"`
}

func (h *usersHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	user, err := h.users.GetUser(ctx, id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	certs, err := h.certificates.ListByCitizen(ctx, id, recentLimit)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	complaints, err := h.complaints.ListByCitizen(ctx, id, recentLimit)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, userDetail{User: user, Certificates: certs, Complaints: complaints})
}

func (h *usersHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	input, ok := shared.Decode[identity.UpdateUserInput](w, r)
	if !ok {
		return
	}
	user, err := h.users.UpdateUser(r.Context(), chi.URLParam(r, "id"), input, true)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, user)
}

func (h *usersHandler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.users.DeactivateUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "User deactivated successfully"})
}
