package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"audycon/internal/config"
	apperrors "audycon/internal/errors"
	"audycon/internal/models"
	"audycon/internal/services"
)

// AdminHandler handles the admin console's user management requests.
type AdminHandler struct {
	accountService services.AccountServicer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(accountService services.AccountServicer) *AdminHandler {
	return &AdminHandler{accountService: accountService}
}

// ListUsersRequest represents the directory filter query parameters.
type ListUsersRequest struct {
	Query string `form:"query"`
	Role  string `form:"role" binding:"omitempty,role_filter"`
}

// ChangeRoleRequest represents the role change payload.
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required,role"`
}

// EditUserRequest represents the admin edit payload. Pointer fields are
// optional; omitted ones keep their current value.
type EditUserRequest struct {
	FirstName string  `json:"first_name" binding:"required,max=100"`
	LastName  string  `json:"last_name" binding:"required,max=100"`
	Phone     *string `json:"phone" binding:"omitempty,max=30"`
	Company   *string `json:"company" binding:"omitempty,max=150"`
	Role      *string `json:"role" binding:"omitempty,role"`
	Status    *string `json:"status" binding:"omitempty,account_status"`
}

// DeleteUserRequest represents the deletion payload. Secret is the console
// fallback credential, accepted only when no bearer token identifies the
// actor.
type DeleteUserRequest struct {
	UserID string `json:"user_id" binding:"required,account_id"`
	Secret string `json:"secret"`
}

// ListUsers lists non-deleted accounts for the console directory
// @Summary     List accounts
// @Description List accounts with status other than DELETED, filtered by name/email substring and role
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       query query string false "Case-insensitive substring of name or email"
// @Param       role  query string false "Exact role or ALL"
// @Success     200 {array} AccountResponse
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     403 {object} ErrorResponse "Not an administrator"
// @Router      /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var req ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	accounts, err := h.accountService.ListAccounts(services.AccountFilter{Query: req.Query, Role: req.Role})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": accounts})
}

// ChangeRole assigns a new role to an account
// @Summary     Change an account's role
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Account ID"
// @Param       request body ChangeRoleRequest true "New role"
// @Success     200 {object} AccountResponse
// @Failure     400 {object} ErrorResponse "Unknown role"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /admin/users/{id}/role [put]
func (h *AdminHandler) ChangeRole(c *gin.Context) {
	accountID, err := parseAccountID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	account, err := h.accountService.ChangeRole(accountID, models.Role(req.Role), optionalUserID(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// ToggleStatus flips an account between ACTIVE and SUSPENDED
// @Summary     Toggle an account's status
// @Description ACTIVE becomes SUSPENDED and vice versa; DELETED accounts cannot be toggled
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Success     200 {object} AccountResponse
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     409 {object} ErrorResponse "Account is deleted"
// @Router      /admin/users/{id}/status [post]
func (h *AdminHandler) ToggleStatus(c *gin.Context) {
	accountID, err := parseAccountID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.accountService.ToggleStatus(accountID, optionalUserID(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// EditUser updates an account's profile fields in one operation
// @Summary     Edit an account
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string          true "Account ID"
// @Param       request body EditUserRequest true "Profile fields"
// @Success     200 {object} AccountResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     409 {object} ErrorResponse "Account is deleted"
// @Router      /admin/users/{id} [put]
func (h *AdminHandler) EditUser(c *gin.Context) {
	accountID, err := parseAccountID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req EditUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	edit := services.ProfileEdit{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Company:   req.Company,
	}
	if req.Role != nil {
		role := models.Role(*req.Role)
		edit.Role = &role
	}
	if req.Status != nil {
		status := models.Status(*req.Status)
		edit.Status = &status
	}

	account, err := h.accountService.EditProfile(accountID, edit, optionalUserID(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// DeleteUser deletes an account after the lifecycle guards pass
// @Summary     Delete an account
// @Description Removes the credential from the identity store and soft-deletes the profile. Accepts a bearer token or, as console fallback, the admin panel secret.
// @Tags        admin
// @Accept      json
// @Produce     json
// @Param       request body DeleteUserRequest true "Target user"
// @Success     200 {object} map[string]interface{} "ok and message"
// @Failure     400 {object} ErrorResponse "Missing user_id"
// @Failure     401 {object} ErrorResponse "No usable credential"
// @Failure     403 {object} ErrorResponse "Guard violation"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     502 {object} ErrorResponse "Identity store failure"
// @Router      /admin/users/delete [post]
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	var req DeleteUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Missing or malformed user_id"))
		return
	}

	// This endpoint sits outside the admin group so the console fallback
	// works without a session: either the bearer actor is an active admin,
	// or the panel secret must match. A secret-authenticated deletion has
	// no actor to attribute in the audit trail.
	actorID := optionalUserID(c)
	if actorID != nil {
		actor, err := h.accountService.GetAccountByID(*actorID)
		if err != nil || actor.Role != models.RoleAdmin || actor.Status != models.StatusActive {
			respondWithError(c, apperrors.ErrAdminOnly)
			return
		}
	} else if !panelSecretValid(req.Secret) {
		respondWithError(c, apperrors.ErrUnauthorized)
		return
	}

	if err := h.accountService.DeleteAccount(req.UserID, actorID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "User deleted"})
}

// panelSecretValid compares the supplied secret against the configured
// bcrypt hash. An unset hash disables the fallback entirely.
func panelSecretValid(secret string) bool {
	hash := config.Get().AdminPanelSecretHash
	if hash == "" || secret == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
