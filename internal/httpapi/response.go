package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/browsion/browsion-core/internal/browsionerr"
)

// envelope is the response shape every route returns, success or failure.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Success: true, Data: data})
}

// fail maps a browsionerr.Kind to its HTTP status and writes the envelope.
// Errors without a recognized Kind are treated as internal errors; callers
// should prefer returning a browsionerr from every ops/lifecycle call so
// this branch stays rare.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch browsionerr.KindOf(err) {
	case browsionerr.KindInvalidArgument:
		status = http.StatusBadRequest
	case browsionerr.KindProfileNotFound:
		status = http.StatusNotFound
	case browsionerr.KindProfileAlreadyRunning:
		status = http.StatusConflict
	case browsionerr.KindProfileNotRunning:
		status = http.StatusNotFound
	case browsionerr.KindLaunchFailed:
		status = http.StatusBadGateway
	case browsionerr.KindDisconnected:
		status = http.StatusBadGateway
	case browsionerr.KindCDPError:
		status = http.StatusBadGateway
	case browsionerr.KindTimeout:
		status = http.StatusGatewayTimeout
	case browsionerr.KindSelectorNotFound:
		status = http.StatusNotFound
	case browsionerr.KindIOError:
		status = http.StatusInternalServerError
	}
	c.JSON(status, envelope{Success: false, Error: err.Error()})
}
