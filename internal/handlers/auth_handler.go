package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "audycon/internal/errors"
	"audycon/internal/models"
	"audycon/internal/services"
)

// AuthHandler handles signup, login, and self-service profile requests.
// Credential storage and token issuance belong to the Identity Store; this
// handler only coordinates with it and owns the local profile row.
type AuthHandler struct {
	accountService services.AccountServicer
	identity       services.IdentityStore
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(accountService services.AccountServicer, identity services.IdentityStore) *AuthHandler {
	return &AuthHandler{accountService: accountService, identity: identity}
}

// SignupRequest represents the signup request payload.
type SignupRequest struct {
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Phone     string `json:"phone" binding:"max=30"`
	Company   string `json:"company" binding:"max=150"`
}

// LoginRequest represents the login request payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest represents the self-service rename payload.
type UpdateProfileRequest struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
}

// AccountResponse represents an account in responses.
type AccountResponse struct {
	ID        string        `json:"id"`
	Email     string        `json:"email"`
	FullName  string        `json:"full_name"`
	Role      models.Role   `json:"role"`
	Status    models.Status `json:"status"`
	CreatedAt string        `json:"created_at"`
}

// Signup handles new user registration
// @Summary     Register a new account
// @Description Create the credential in the identity store and the matching profile row (role CLIENTE, status ACTIVE)
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body SignupRequest true "Signup data"
// @Success     201 {object} AccountResponse "Account created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Email already registered"
// @Failure     502 {object} ErrorResponse "Identity store failure"
// @Router      /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	id, err := h.identity.CreateUser(req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.accountService.CreateAccount(id, req.Email, req.FirstName, req.LastName, req.Phone, req.Company)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"account": account})
}

// Login handles user login
// @Summary     Login
// @Description Exchange email and password for an identity store access token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "Login credentials"
// @Success     200 {object} map[string]string "Access token"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	token, err := h.identity.SignIn(req.Email, req.Password)
	if err != nil {
		respondWithError(c, apperrors.ErrInvalidCredentials)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GetProfile returns the authenticated user's own profile
// @Summary     Get own profile
// @Tags        profile
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} AccountResponse
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.accountService.GetAccountByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// UpdateProfile renames the authenticated user's own account
// @Summary     Update own display name
// @Tags        profile
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateProfileRequest true "New name"
// @Success     200 {object} AccountResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	account, err := h.accountService.UpdateName(userID, req.FirstName, req.LastName)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}
