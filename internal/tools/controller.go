package tools

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"goodfoods/internal/shared/rejection"
	"goodfoods/internal/shared/utils/response"
	"goodfoods/pkg/logger"
)

type Controller interface {
	ListOperations(c *gin.Context)
	Execute(c *gin.Context)
}

type controller struct {
	dispatcher Dispatcher
	log        *logger.Logger
}

func NewController(dispatcher Dispatcher, log *logger.Logger) Controller {
	return &controller{dispatcher: dispatcher, log: log}
}

// ListOperations returns the operation definitions for the caller's tool
// listing.
func (ctrl *controller) ListOperations(c *gin.Context) {
	response.RespondJSON(c, "success", http.StatusOK, "Available operations", ctrl.dispatcher.Definitions(), nil)
}

// Execute runs one named operation with the JSON body as its arguments.
func (ctrl *controller) Execute(c *gin.Context) {
	operation := c.Param("operation")

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Failed to read request body", nil, err.Error())
		return
	}

	start := time.Now()
	result, err := ctrl.dispatcher.Dispatch(c.Request.Context(), operation, json.RawMessage(body))
	ctrl.log.LogToolCall(c.Request.Context(), operation, time.Since(start), err != nil)

	if err != nil {
		if kind, ok := rejection.KindOf(err); ok {
			response.RespondJSON(c, "error", statusForKind(kind), err.Error(), nil, map[string]interface{}{
				"reason": string(kind),
			})
			return
		}
		ctrl.log.LogHTTPError(c, err, http.StatusInternalServerError)
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Internal error", nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "OK", result, nil)
}

// statusForKind maps domain rejections onto HTTP statuses. The kind itself
// travels in the error payload; the status is only transport dressing.
func statusForKind(kind rejection.Kind) int {
	switch kind {
	case rejection.KindValidationError:
		return http.StatusBadRequest
	case rejection.KindVenueNotFound, rejection.KindNotFound:
		return http.StatusNotFound
	case rejection.KindSlotUnavailable, rejection.KindAlreadyCancelled:
		return http.StatusConflict
	case rejection.KindOutsideHours, rejection.KindLeadTimeViolation, rejection.KindPartyTooLarge:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
