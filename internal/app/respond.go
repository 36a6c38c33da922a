package app

import (
	"errors"

	"socialnet/internal/logger"
	"socialnet/internal/service"
	"socialnet/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps service errors onto HTTP statuses in one place so the
// handlers stay thin. Unknown errors are logged and reported as 500 without
// leaking internals.
func respondError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	var authzErr *service.AuthorizationError
	var notFoundErr *service.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		util.BadRequest(c, validationErr.Error())
	case errors.As(err, &authzErr):
		util.Forbidden(c, authzErr.Error())
	case errors.As(err, &notFoundErr):
		util.NotFound(c, notFoundErr.Error())
	case errors.Is(err, service.ErrStateConflict):
		util.BadRequest(c, err.Error())
	default:
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		util.InternalServerError(c, "Something went wrong")
	}
}

// currentUserID pulls the authenticated user out of the context. It only
// returns false when a handler was mounted without the auth middleware.
func currentUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return "", false
	}
	return userID.(string), true
}
