package httptransport

import (
	"log/slog"
	"net/http"

	"panchayat/internal/auth"
	"panchayat/internal/transport/http/shared"
	"panchayat/pkg/requestcontext"
)

type authHandler struct {
	service *auth.Service
	logger  *slog.Logger
}

func (h *authHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	input, ok := shared.Decode[auth.LoginInput](w, r)
	if !ok {
		return
	}
	result, err := h.service.Login(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "login rejected",
			"request_id", requestcontext.RequestID(ctx),
			"email", input.Email,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "login succeeded",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", result.User.ID,
		"role", result.Role,
	)
	shared.WriteJSON(w, http.StatusOK, result)
}

func (h *authHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	input, ok := shared.Decode[auth.RegisterInput](w, r)
	if !ok {
		return
	}
	result, err := h.service.Register(ctx, input)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "registration submitted",
		"request_id", requestcontext.RequestID(ctx),
		"request", result.RequestID,
	)
	shared.WriteJSON(w, http.StatusCreated, result)
}

func (h *authHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Me(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, user)
}
