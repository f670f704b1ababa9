// internal/handler/auth.go
package handler

import (
	"log/slog"
	"net/http"

	chmw "github.com/go-chi/chi/v5/middleware"
	"github.com/grundwerk/grundwerk/internal/model"
	"github.com/grundwerk/grundwerk/internal/service"
)

type AuthHandler struct {
	userService *service.UserService
	guard       *Guard
}

func NewAuthHandler(userService *service.UserService, guard *Guard) *AuthHandler {
	return &AuthHandler{userService: userService, guard: guard}
}

type RegisterResponse struct {
	BaseResponse
	User         *model.User         `json:"user"`
	Organization *model.Organization `json:"organization"`
	Token        string              `json:"token"`
}

type LoginResponse struct {
	BaseResponse
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func (h *AuthHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if err := decodeJSON(r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	out, err := h.userService.Register(r.Context(), input)
	if err != nil {
		slog.ErrorContext(r.Context(), "registration failed",
			"error", err,
			"requestID", chmw.GetReqID(r.Context()),
		)
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, RegisterResponse{
		BaseResponse: BaseResponse{Ok: true},
		User:         out.User,
		Organization: out.Organization,
		Token:        out.Token,
	})
}

func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var input service.LoginInput
	if err := decodeJSON(r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	out, err := h.userService.Login(r.Context(), input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, LoginResponse{
		BaseResponse: BaseResponse{Ok: true},
		User:         out.User,
		Token:        out.Token,
	})
}

// MeHandler returns the caller's user, organization, and role.
func (h *AuthHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	m, ok := h.guard.Require(w, r, model.RoleViewer)
	if !ok {
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"user":           m.User,
		"organizationId": m.Org.OrganizationID,
		"role":           m.Org.Role,
	})
}
