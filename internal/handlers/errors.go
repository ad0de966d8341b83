package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/GitHackerz/ezgo-sub000/internal/middleware"
	"github.com/GitHackerz/ezgo-sub000/internal/models"
	"github.com/GitHackerz/ezgo-sub000/internal/services"
)

// statusForCode maps service error codes onto HTTP statuses
func statusForCode(code services.ErrorCode) int {
	switch code {
	case services.CodeNotFound:
		return http.StatusNotFound
	case services.CodeConflict:
		return http.StatusConflict
	case services.CodeOutOfCapacity:
		return http.StatusBadRequest
	case services.CodeForbidden:
		return http.StatusForbidden
	case services.CodePreconditionFailed:
		return http.StatusPreconditionFailed
	case services.CodeExternalUnavailable:
		return http.StatusServiceUnavailable
	case services.CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respond(c *gin.Context, status int, code services.ErrorCode, message string) {
	c.JSON(status, gin.H{
		"error":      strings.ToLower(string(code)),
		"message":    message,
		"code":       code,
		"request_id": middleware.GetRequestID(c),
	})
}

// respondError writes a service error. Internal details never reach the client.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		logger.WithError(err).WithField("request_id", middleware.GetRequestID(c)).Error("Unhandled error")
		respond(c, http.StatusInternalServerError, services.CodeInternal, "internal server error")
		return
	}

	message := svcErr.Message
	if svcErr.Code == services.CodeInternal {
		message = "internal server error"
	}
	respond(c, statusForCode(svcErr.Code), svcErr.Code, message)
}

func badRequest(c *gin.Context, message string) {
	respond(c, http.StatusBadRequest, services.CodeValidation, message)
}

// principal returns the authenticated caller or writes 401
func principal(c *gin.Context) (models.Principal, bool) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":      "unauthorized",
			"message":    "User not authenticated",
			"code":       "UNAUTHORIZED",
			"request_id": middleware.GetRequestID(c),
		})
		return models.Principal{}, false
	}
	return userCtx.Principal(), true
}

// requireRole returns the caller when it holds one of the roles, otherwise
// writes 403
func requireRole(c *gin.Context, roles ...models.Role) (models.Principal, bool) {
	caller, ok := principal(c)
	if !ok {
		return caller, false
	}
	if !caller.HasRole(roles...) {
		respond(c, http.StatusForbidden, services.CodeForbidden, "insufficient role for this operation")
		return caller, false
	}
	return caller, true
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
