// Package errxfiber renders errx errors as fiber responses.
package errxfiber

import (
	"errors"
	"net/http"

	"github.com/Abraxas-365/gatekeeper/pkg/errx"
	"github.com/Abraxas-365/gatekeeper/pkg/logx"
	"github.com/Abraxas-365/gatekeeper/pkg/metricsx"
	"github.com/gofiber/fiber/v2"
)

// Responder is the single place errors become HTTP responses.
// Install Handle as fiber.Config.ErrorHandler.
type Responder struct {
	development bool
	log         *logx.Logger
	metrics     metricsx.Recorder
}

// NewResponder creates a responder. development selects the verbose body.
func NewResponder(development bool, log *logx.Logger, metrics metricsx.Recorder) *Responder {
	if metrics == nil {
		metrics = metricsx.Nop{}
	}
	return &Responder{
		development: development,
		log:         log,
		metrics:     metrics,
	}
}

// Handle translates err and writes the response
func (r *Responder) Handle(c *fiber.Ctx, err error) error {
	apiErr := errx.Translate(fromFiber(c, err))

	r.logError(c, apiErr)
	r.metrics.ErrorResponse(apiErr.Code.String(), apiErr.Status.String())

	status, body := apiErr.ToResponse(r.development)
	return c.Status(status).JSON(body)
}

// NotFound is the fallback route handler
func (r *Responder) NotFound(c *fiber.Ctx) error {
	return errx.RouteNotFound(c.Path())
}

func (r *Responder) logError(c *fiber.Ctx, e *errx.Error) {
	entry := r.log.WithFields(logx.Fields{
		"path":        c.Path(),
		"method":      c.Method(),
		"ip":          c.IP(),
		"request_id":  c.GetRespHeader(fiber.HeaderXRequestID),
		"error_code":  e.Code,
		"http_status": e.HTTPStatus,
	})
	if e.Err != nil {
		entry = entry.WithError(e.Err)
	}

	switch {
	case r.development:
		entry.WithField("stack", e.Stack()).Errorf("request failed: %s", e.Message)
	case !e.Operational:
		entry.WithField("stack", e.Stack()).Errorf("unexpected failure: %s", e.Message)
	default:
		entry.Warnf("request rejected: %s", e.Message)
	}
}

// fromFiber converts framework errors into catalogue errors
func fromFiber(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if !errors.As(err, &fe) {
		return err
	}

	switch {
	case fe.Code == http.StatusNotFound:
		return errx.RouteNotFound(c.Path())
	case fe.Code == http.StatusUnauthorized:
		return errx.Unauthorized(fe.Message)
	case fe.Code == http.StatusForbidden:
		return errx.Forbidden(fe.Message)
	case fe.Code >= 500:
		return errx.Internal(fe)
	default:
		def := &errx.Definition{
			Code:        errx.CodeValidation,
			HTTPStatus:  fe.Code,
			Status:      errx.StatusFail,
			Operational: true,
		}
		return errx.Newf(def, "%s", fe.Message)
	}
}
