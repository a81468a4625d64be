package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/gonogo/errors"
	"github.com/kbukum/gonogo/server/middleware"
)

// RespondWithError aborts with err as the JSON error envelope. AppErrors keep
// their status; anything else becomes a 500 INTERNAL_ERROR.
func RespondWithError(c *gin.Context, err error) {
	appErr := apperrors.Wrap(err)
	var requestID string
	if c.Request != nil {
		requestID = middleware.RequestIDFromContext(c.Request.Context())
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponseFor(requestID))
}

// RespondEmptyOK ends the request with 200 and no body, the response the
// experiment client expects for every handled submission.
func RespondEmptyOK(c *gin.Context) {
	c.Status(http.StatusOK)
}
