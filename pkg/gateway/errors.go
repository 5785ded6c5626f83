package gateway

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/teslashibe/go-nao/pkg/behavior"
	"github.com/teslashibe/go-nao/pkg/catalog"
	"github.com/teslashibe/go-nao/pkg/choreography"
	"github.com/teslashibe/go-nao/pkg/naoqi"
	"github.com/teslashibe/go-nao/pkg/runlog"
)

// ErrInvalidRequest is returned for a malformed body or parameter.
var ErrInvalidRequest = errors.New("gateway: invalid request")

// Error codes in response bodies.
const (
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeNotFound             = "NOT_FOUND"
	CodeNotRunning           = "NOT_RUNNING"
	CodeNothingToStop        = "NOTHING_TO_STOP"
	CodeBusy                 = "BUSY"
	CodeTransformUnavailable = "TRANSFORM_UNAVAILABLE"
	CodeConnection           = "CONNECTION_ERROR"
	CodeRemoteUnavailable    = "REMOTE_UNAVAILABLE"
	CodeRemote               = "REMOTE_ERROR"
	CodeUpgradeRequired      = "UPGRADE_REQUIRED"
	CodeInternal             = "INTERNAL"
)

// classify maps an error to an HTTP status and response code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, behavior.ErrInvalidName):
		return http.StatusBadRequest, CodeInvalidRequest
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, behavior.ErrNotFound),
		errors.Is(err, runlog.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, behavior.ErrNotRunning):
		return http.StatusNotFound, CodeNotRunning
	case errors.Is(err, behavior.ErrNothingToStop):
		return http.StatusNotFound, CodeNothingToStop
	case errors.Is(err, choreography.ErrBusy):
		return http.StatusConflict, CodeBusy
	case errors.Is(err, naoqi.ErrTransformUnavailable):
		return http.StatusInternalServerError, CodeTransformUnavailable
	case errors.Is(err, naoqi.ErrConnection):
		return http.StatusServiceUnavailable, CodeConnection
	case errors.Is(err, naoqi.ErrRemoteUnavailable):
		return http.StatusBadGateway, CodeRemoteUnavailable
	case errors.Is(err, naoqi.ErrRemote):
		return http.StatusBadGateway, CodeRemote
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// codeForStatus names the code of a bare fiber error.
func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return CodeInvalidRequest
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return CodeNotFound
	case http.StatusUpgradeRequired:
		return CodeUpgradeRequired
	default:
		return CodeInternal
	}
}

// fail writes the JSON error body for err. Choreography aborts also carry
// whether the robot was left mid-sequence.
func (s *Server) fail(c *fiber.Ctx, err error) error {
	status, code := classify(err)
	body := fiber.Map{
		"error": err.Error(),
		"code":  code,
	}

	var abort *choreography.AbortError
	if errors.As(err, &abort) {
		body["partial"] = abort.Partial
		body["failed_state"] = abort.State.String()
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", c.Method(), "path", c.Path(), "status", status, "code", code, "error", err)
	} else {
		s.logger.Debug("request rejected", "method", c.Method(), "path", c.Path(), "status", status, "code", code, "error", err)
	}
	return c.Status(status).JSON(body)
}

// errorHandler renders errors that escape handlers, such as unknown routes.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error": fe.Message,
			"code":  codeForStatus(fe.Code),
		})
	}
	return s.fail(c, err)
}
