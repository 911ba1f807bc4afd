package notifx

import (
	"net/http"

	"github.com/Abraxas-365/gatekeeper/pkg/errx"
)

var notifxErrors = errx.NewRegistry("NOTIFX")

var (
	ErrInvalidMessage   = notifxErrors.Register("INVALID_MESSAGE", http.StatusBadRequest, errx.StatusFail, true, "Invalid email message")
	ErrTemplateNotFound = notifxErrors.Register("TEMPLATE_NOT_FOUND", http.StatusNotFound, errx.StatusFail, true, "Email template not found")
	ErrTemplateParse    = notifxErrors.Register("TEMPLATE_PARSE", http.StatusInternalServerError, errx.StatusError, false, "Failed to parse email template")
	ErrTemplateRender   = notifxErrors.Register("TEMPLATE_RENDER", http.StatusInternalServerError, errx.StatusError, false, "Failed to render email template")
	ErrNoProvider       = notifxErrors.Register("NO_PROVIDER", http.StatusInternalServerError, errx.StatusError, false, "No email provider configured")
)
