package admin

import (
	"errors"
	"strconv"
	"time"

	"budgeter/api/v1/middleware"
	"budgeter/internal/ban"
	"budgeter/internal/dto"
	"budgeter/internal/httpx"
	"budgeter/internal/reqlog"
	"budgeter/internal/store"

	"github.com/gin-gonic/gin"
)

// BanRequest represents ban request body. A null or absent bannedUntil is
// a permanent ban.
type BanRequest struct {
	Reason      string     `json:"reason"`
	BannedUntil *time.Time `json:"bannedUntil"`
}

// ForcePasswordResetRequest represents force-password-reset request body
type ForcePasswordResetRequest struct {
	UserID     int   `json:"userId" binding:"required"`
	ForceReset *bool `json:"forceReset" binding:"required"`
}

// RequestLogsResponse represents request-logs response data
type RequestLogsResponse struct {
	Items []reqlog.Entry `json:"items"`
	Stats reqlog.Stats   `json:"stats"`
}

// Handler serves the /admin routes
type Handler struct {
	users *store.UserStore
	bans  *ban.Controller
	gate  *ban.Gate
	logs  *reqlog.Sink
}

// NewHandler creates a new admin handler. logs may be nil.
func NewHandler(users *store.UserStore, bans *ban.Controller, gate *ban.Gate, logs *reqlog.Sink) *Handler {
	return &Handler{users: users, bans: bans, gate: gate, logs: logs}
}

// ListUsers returns all users with their ban fields
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to list users", err))
		return
	}
	// Expired bans are reported as cleared
	for i := range users {
		if _, err := h.gate.Resolve(c.Request.Context(), &users[i]); err != nil {
			httpx.FailErr(c, httpx.ErrDatabaseError("failed to resolve ban status", err))
			return
		}
	}
	items := dto.ToAdminUserDTOs(users)
	httpx.OKList(c, items, len(items))
}

// GetUser returns one user with its ban fields
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	u, _, err := h.gate.CheckSession(c.Request.Context(), id)
	if err != nil {
		failBan(c, err)
		return
	}
	httpx.OK(c, dto.ToAdminUserDTO(u))
}

// Ban bans a user, replacing any previous ban
func (h *Handler) Ban(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	var req BanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	err := h.bans.Ban(c.Request.Context(), actor, ban.BanRequest{
		TargetID:    id,
		Reason:      req.Reason,
		BannedUntil: req.BannedUntil,
	})
	if err != nil {
		failBan(c, err)
		return
	}
	h.respondUser(c, id, "user banned")
}

// Unban clears a user's ban
func (h *Handler) Unban(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if err := h.bans.Unban(c.Request.Context(), actor, id); err != nil {
		failBan(c, err)
		return
	}
	h.respondUser(c, id, "user unbanned")
}

// ForcePasswordReset toggles the forced password reset flag
func (h *Handler) ForcePasswordReset(c *gin.Context) {
	var req ForcePasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("userId and forceReset are required"))
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	u, err := h.bans.SetForcePasswordReset(c.Request.Context(), actor, req.UserID, *req.ForceReset)
	if err != nil {
		failBan(c, err)
		return
	}
	httpx.OK(c, dto.ToAdminUserDTO(u))
}

// RequestLogs returns the most recent requests and aggregate stats
func (h *Handler) RequestLogs(c *gin.Context) {
	if h.logs == nil {
		httpx.OK(c, RequestLogsResponse{Items: []reqlog.Entry{}})
		return
	}
	limit := 50
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			httpx.FailErr(c, httpx.ErrParamInvalid("limit must be a positive integer"))
			return
		}
		limit = n
	}
	httpx.OK(c, RequestLogsResponse{
		Items: h.logs.Recent(limit),
		Stats: h.logs.Stats(),
	})
}

func (h *Handler) respondUser(c *gin.Context, id int, message string) {
	u, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to reload user", err))
		return
	}
	httpx.OKMsg(c, message, dto.ToAdminUserDTO(u))
}

func userID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid user id"))
		return 0, false
	}
	return id, true
}

func currentActor(c *gin.Context) (ban.Actor, bool) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		httpx.FailErr(c, httpx.ErrUnauthorized(""))
		return ban.Actor{}, false
	}
	return ban.ActorOf(u), true
}

// failBan maps ban controller errors to API errors
func failBan(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ban.ErrForbidden):
		httpx.FailErr(c, httpx.ErrForbidden("admin access required"))
	case errors.Is(err, ban.ErrValidation):
		httpx.FailErr(c, httpx.ErrParamIllegal(err.Error()))
	case errors.Is(err, ban.ErrNotFound):
		httpx.FailErr(c, httpx.ErrNotFound("user not found"))
	default:
		httpx.FailErr(c, httpx.ErrDatabaseError("ban operation failed", err))
	}
}
