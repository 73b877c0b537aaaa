package auth

import (
	"errors"
	"time"

	"budgeter/api/v1/middleware"
	"budgeter/internal/account"
	"budgeter/internal/auth"
	"budgeter/internal/ban"
	"budgeter/internal/dto"
	"budgeter/internal/httpx"
	"budgeter/internal/store"
	"budgeter/internal/validator"

	"github.com/gin-gonic/gin"
)

// RegisterRequest represents register request body
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,maxbytes=72"`
	Name     string `json:"name" binding:"required,max=128"`
}

// LoginRequest represents login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents login response data
type LoginResponse struct {
	Token              string      `json:"token"`
	ExpireAt           string      `json:"expireAt"`
	User               dto.UserDTO `json:"user"`
	ForcePasswordReset bool        `json:"forcePasswordReset"`
}

// CheckEmailRequest represents check-email request body
type CheckEmailRequest struct {
	Email string `json:"email" binding:"required"`
}

// ChangePasswordRequest represents change-password request body
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6,maxbytes=72"`
}

// Handler serves the /auth routes and /me
type Handler struct {
	accounts *account.Service
	gate     *ban.Gate
}

// NewHandler creates a new auth handler
func NewHandler(accounts *account.Service, gate *ban.Gate) *Handler {
	return &Handler{accounts: accounts, gate: gate}
}

// Register handles user registration
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, bindError(err))
		return
	}

	u, err := h.accounts.Register(c.Request.Context(), account.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrEmailTaken):
			httpx.FailErr(c, httpx.ErrAlreadyExists("email already registered"))
		case errors.Is(err, auth.ErrPasswordTooShort), errors.Is(err, auth.ErrPasswordTooLong):
			httpx.FailErr(c, httpx.ErrParamIllegal(err.Error()))
		case errors.Is(err, account.ErrEmailInvalid), errors.Is(err, account.ErrNameRequired):
			httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		case errors.Is(err, account.ErrHashFailed):
			httpx.FailErr(c, httpx.ErrInternalError("failed to register user", err))
		default:
			httpx.FailErr(c, httpx.ErrDatabaseError("failed to register user", err))
		}
		return
	}

	httpx.OKMsg(c, "registered", dto.ToUserDTO(u))
}

// Login handles user login. Every denial produces the same response.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
		return
	}

	res, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		if errors.Is(err, ban.ErrAuthDenied) {
			httpx.FailErr(c, httpx.ErrAuthDenied())
			return
		}
		httpx.FailErr(c, httpx.ErrInternalError("login failed", err))
		return
	}

	httpx.OK(c, LoginResponse{
		Token:              res.Token,
		ExpireAt:           res.ExpireAt.UTC().Format(time.RFC3339),
		User:               dto.ToUserDTO(res.User),
		ForcePasswordReset: res.User.ForcePasswordReset,
	})
}

// CheckEmail reports whether an email is registered. Ban status is never
// part of the answer.
func (h *Handler) CheckEmail(c *gin.Context) {
	var req CheckEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing("email is required"))
		return
	}

	exists, err := h.accounts.EmailExists(c.Request.Context(), req.Email)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to check email", err))
		return
	}
	httpx.OK(c, gin.H{"exists": exists})
}

// BanStatus reports the live ban status of the token holder. It runs
// without the active-session gate so banned callers get their status.
func (h *Handler) BanStatus(c *gin.Context) {
	uid := c.GetInt(middleware.ContextKeyUID)

	_, status, err := h.gate.CheckSession(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, ban.ErrNotFound) {
			httpx.FailErr(c, httpx.ErrInvalidToken("account no longer exists"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to check ban status", err))
		return
	}
	httpx.OK(c, status)
}

// ChangePassword replaces the caller's password
func (h *Handler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, bindError(err))
		return
	}
	u, ok := middleware.CurrentUser(c)
	if !ok {
		httpx.FailErr(c, httpx.ErrUnauthorized(""))
		return
	}

	err := h.accounts.ChangePassword(c.Request.Context(), u.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrWrongPassword),
			errors.Is(err, account.ErrPasswordReused),
			errors.Is(err, auth.ErrPasswordTooShort),
			errors.Is(err, auth.ErrPasswordTooLong):
			httpx.FailErr(c, httpx.ErrParamIllegal(err.Error()))
		case errors.Is(err, store.ErrUserNotFound):
			httpx.FailErr(c, httpx.ErrNotFound("user not found"))
		case errors.Is(err, account.ErrHashFailed):
			httpx.FailErr(c, httpx.ErrInternalError("failed to change password", err))
		default:
			httpx.FailErr(c, httpx.ErrDatabaseError("failed to change password", err))
		}
		return
	}

	httpx.OKMsg(c, "password changed", nil)
}

// bindError maps a binding failure: rule violations are illegal values,
// anything else is a malformed body
func bindError(err error) *httpx.AppError {
	if msg, ok := validator.Describe(err); ok {
		return httpx.ErrParamIllegal(msg)
	}
	return httpx.ErrParamInvalid("invalid request body")
}

// Me returns the live record of the caller
func (h *Handler) Me(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		httpx.FailErr(c, httpx.ErrUnauthorized(""))
		return
	}
	httpx.OK(c, dto.ToUserDTO(u))
}
