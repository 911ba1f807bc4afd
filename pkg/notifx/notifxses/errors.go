package notifxses

import (
	"net/http"

	"github.com/Abraxas-365/gatekeeper/pkg/errx"
)

var sesErrors = errx.NewRegistry("NOTIFX_SES")

var (
	ErrSendFailed = sesErrors.Register("SEND_FAILED", http.StatusBadGateway, errx.StatusError, false, "SES send email failed")
)
