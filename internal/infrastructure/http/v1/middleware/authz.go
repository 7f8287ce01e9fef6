package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "dukkan/internal/core/context"
	"dukkan/internal/core/apperror"
	"dukkan/internal/core/authz"
)

// RequireAction middleware denies the request when the resolver denies the
// action. Services guard again before their transactions; this rejects
// obviously forbidden requests at the edge without any store access.
func RequireAction(provider authz.Provider, action authz.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := appctx.GetActor(c.Request.Context())
		if actor == nil {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}

		cfg, err := provider.Current(c.Request.Context())
		if err != nil {
			_ = c.Error(apperror.NewInternal(err))
			c.Abort()
			return
		}

		if err := cfg.Guard(authz.Actor{Username: actor.Username, Role: actor.Role}, action); err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Next()
	}
}
