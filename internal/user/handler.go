package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gemsketch/api/internal/auth"
	"github.com/gemsketch/api/internal/httputil"
	"github.com/gemsketch/api/internal/logging"
)

// Handler contains HTTP handlers for account and profile endpoints
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// CreateRequest represents the registration request body
type CreateRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	DOB      string `json:"dob"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginUser is the user summary returned on login
type LoginUser struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

// LoginResponse represents a successful login
type LoginResponse struct {
	Message string    `json:"message"`
	Token   string    `json:"token"`
	User    LoginUser `json:"user"`
}

// MessageResponse is a plain acknowledgment body
type MessageResponse struct {
	Message string `json:"message"`
}

// Create handles user registration
// @Summary      Create an account
// @Description  Register a new user. All fields are required; username and email must be unique.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body CreateRequest true "Registration fields"
// @Success      201 {object} MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing field or duplicate username/email"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /create [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid create request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	newUser, err := h.service.Register(r.Context(), RegisterInput{
		FullName:    req.FullName,
		Email:       req.Email,
		Phone:       req.Phone,
		DateOfBirth: req.DOB,
		Username:    req.Username,
		Password:    req.Password,
	})
	if err != nil {
		if errors.Is(err, ErrFieldsRequired) {
			logger.Warn("registration failed: missing fields")
			httputil.RespondErrorWithCode(w, "All fields are required", httputil.CodeValidationFailed, http.StatusBadRequest)
			return
		}
		if errors.Is(err, ErrInvalidDateOfBirth) {
			logger.Warn("registration failed: bad date of birth")
			httputil.RespondErrorWithCode(w, "Invalid date of birth", httputil.CodeValidationFailed, http.StatusBadRequest)
			return
		}
		if errors.Is(err, ErrDuplicate) {
			logger.Warn("registration failed: duplicate username or email", "username", req.Username)
			httputil.RespondErrorWithCode(w, "Username or email already exists", httputil.CodeDuplicateUser, http.StatusBadRequest)
			return
		}
		logger.Error("registration failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Server error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user registered successfully", "user_id", newUser.ID, "username", newUser.Username)

	httputil.RespondJSON(w, MessageResponse{Message: "Account created successfully"}, http.StatusCreated)
}

// Login handles user login
// @Summary      Log in
// @Description  Authenticate with username and password and receive a bearer token (1 hour expiry).
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} LoginResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid credentials"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	token, loggedIn, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			logger.Warn("login failed: invalid credentials", "username", req.Username)
			httputil.RespondErrorWithCode(w, "Invalid credentials", httputil.CodeInvalidCredentials, http.StatusBadRequest)
			return
		}
		logger.Error("login failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Server error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user logged in successfully", "user_id", loggedIn.ID)

	httputil.RespondJSON(w, LoginResponse{
		Message: "Login successful",
		Token:   token,
		User: LoginUser{
			Username: loggedIn.Username,
			FullName: loggedIn.FullName,
		},
	}, http.StatusOK)
}

// Profile returns the authenticated user's profile
// @Summary      Get profile
// @Description  Return the profile of the user identified by the bearer token, minus the password hash.
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} User
// @Failure      401 {object} httputil.ErrorResponse "Missing token"
// @Failure      403 {object} httputil.ErrorResponse "Invalid or expired token"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /profile [get]
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "Access denied", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	profile, err := h.service.Profile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.Warn("profile lookup failed: user not found", "user_id", userID)
			httputil.RespondErrorWithCode(w, "User not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("profile lookup failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Server error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	// The password hash is tagged json:"-" and never serialized.
	httputil.RespondJSON(w, profile, http.StatusOK)
}
