package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Dosada05/tournament-tracker/middleware"
	"github.com/Dosada05/tournament-tracker/services"
)

type AuthHandler struct {
	baseHandler
	authService services.AuthService
	jwtSecret   []byte
}

func NewAuthHandler(authService services.AuthService, jwtSecret string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: baseHandler{logger: logger},
		authService: authService,
		jwtSecret:   []byte(jwtSecret),
	}
}

// Register godoc
// @Summary Create a user account
// @Tags users
// @Accept json
// @Produce json
// @Param input body services.RegisterInput true "Credentials"
// @Success 201 {object} models.User
// @Failure 400,409 {object} map[string]string
// @Router /users/signup [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	if input.Email == "" || input.Password == "" {
		h.badRequestResponse(w, r, errors.New("email and password are required"))
		return
	}

	user, err := h.authService.Register(r.Context(), input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.writeOrFail(w, r, http.StatusCreated, jsonResponse{"user": user})
}

// Login godoc
// @Summary Exchange credentials for an access token
// @Tags users
// @Accept json
// @Produce json
// @Param input body services.LoginInput true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400,401 {object} map[string]string
// @Router /users/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	if input.Email == "" || input.Password == "" {
		h.badRequestResponse(w, r, errors.New("email and password are required"))
		return
	}

	user, err := h.authService.Login(r.Context(), input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	token, err := middleware.IssueToken(h.jwtSecret, user.ID.String(), user.Email, time.Now())
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}

	h.writeOrFail(w, r, http.StatusOK, jsonResponse{"token": token, "user": user})
}
