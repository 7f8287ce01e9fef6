package handlers

import (
	"github.com/gin-gonic/gin"

	appctx "dukkan/internal/core/context"
	"dukkan/internal/core/apperror"
	"dukkan/internal/core/authz"
	"dukkan/internal/infrastructure/http/v1/dto"
)

// AuthzHandler serves the authorization check endpoint.
type AuthzHandler struct {
	*BaseHandler
	provider authz.Provider
}

// NewAuthzHandler creates an authz handler.
func NewAuthzHandler(base *BaseHandler, provider authz.Provider) *AuthzHandler {
	return &AuthzHandler{BaseHandler: base, provider: provider}
}

// Check handles GET /authz/check. It answers whether the calling actor may
// perform the queried action, without performing it.
func (h *AuthzHandler) Check(c *gin.Context) {
	action := authz.Action(c.Query("action"))
	if _, ok := authz.SectionOf(action); !ok {
		h.Error(c, apperror.NewValidation("unknown action").WithDetail("action", string(action)))
		return
	}

	actor := appctx.GetActor(c.Request.Context())
	if actor == nil {
		h.Error(c, apperror.NewUnauthorized("authentication required"))
		return
	}

	cfg, err := h.provider.Current(c.Request.Context())
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}

	allowed := cfg.IsAllowed(authz.Actor{Username: actor.Username, Role: actor.Role}, action)
	h.OK(c, dto.AuthzCheckResponse{Action: string(action), Allowed: allowed})
}
