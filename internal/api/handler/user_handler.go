package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"atcrank/internal/api/middleware"
	"atcrank/internal/app/service"
	"atcrank/internal/common"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{atcoderID}", h.profile)

	// Registration changes which users get polled, so it is admin only.
	r.Group(func(admin chi.Router) {
		admin.Use(middleware.Authenticator)
		admin.Use(middleware.AdminOnly)
		admin.Post("/", h.register)
		admin.Delete("/{atcoderID}", h.deactivate)
	})
}

type registerRequest struct {
	AtcoderID string `json:"atcoder_id"`
}

func (h *UserHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	user, err := h.userService.Register(r.Context(), req.AtcoderID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) deactivate(w http.ResponseWriter, r *http.Request) {
	atcoderID := chi.URLParam(r, "atcoderID")
	if err := h.userService.Deactivate(r.Context(), atcoderID); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

func (h *UserHandler) profile(w http.ResponseWriter, r *http.Request) {
	atcoderID := chi.URLParam(r, "atcoderID")
	profile, err := h.userService.Profile(r.Context(), atcoderID, time.Now())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, profile)
}
