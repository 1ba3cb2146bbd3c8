package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/examgate/examgate/application/port/inbound"
	"github.com/examgate/examgate/application/port/outbound"
	"github.com/examgate/examgate/application/usecase"
	"github.com/examgate/examgate/infrastructure/http/middleware"
	"github.com/examgate/examgate/infrastructure/http/response"
)

type AuthHandler struct {
	authUseCase    inbound.AuthUseCase
	authMiddleware *middleware.AuthMiddleware
}

func NewAuthHandler(authUseCase inbound.AuthUseCase, authMiddleware *middleware.AuthMiddleware) *AuthHandler {
	return &AuthHandler{
		authUseCase:    authUseCase,
		authMiddleware: authMiddleware,
	}
}

func (h *AuthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/v1/auth/login", h.Login).Methods(http.MethodPost)
	router.HandleFunc("/v1/auth/refresh", h.Refresh).Methods(http.MethodPost)
	router.HandleFunc("/v1/auth/profile", h.authMiddleware.RequireAuth(h.Profile)).Methods(http.MethodGet)
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Both login and refresh failures answer with the same shape and status so a
// caller cannot probe which part of the check failed.
const invalidCredentialsMessage = "Invalid username or password"

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.authUseCase.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			response.Unauthorized(w, invalidCredentialsMessage)
			return
		}
		response.InternalServerError(w, "Internal server error")
		return
	}

	response.Success(w, http.StatusOK, "success", result)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.authUseCase.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidRefreshToken) {
			response.Unauthorized(w, "Invalid refresh token")
			return
		}
		response.InternalServerError(w, "Internal server error")
		return
	}

	response.Success(w, http.StatusOK, "success", result)
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserClaims(r.Context())
	if claims == nil {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	profile, err := h.authUseCase.GetUserProfile(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			response.NotFound(w, "User not found")
			return
		}
		response.InternalServerError(w, "Internal server error")
		return
	}

	response.Success(w, http.StatusOK, "success", profile)
}
