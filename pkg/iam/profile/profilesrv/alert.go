package profilesrv

import (
	"context"
	"time"

	"github.com/Abraxas-365/gatekeeper/pkg/asyncx"
	"github.com/Abraxas-365/gatekeeper/pkg/kernel"
	"github.com/Abraxas-365/gatekeeper/pkg/logx"
	"github.com/Abraxas-365/gatekeeper/pkg/notifx"
)

const (
	rollbackTemplate = "profile_rollback_failed"
	alertTimeout     = 15 * time.Second
)

const rollbackBody = `A profile update failed in the local store and the identity provider
could not be restored to its previous state.

User:        {{.UserID}}
External ID: {{.ExternalID}}
Step:        {{.Step}}
Restore to:  first name {{printf "%q" .FirstName}}, last name {{printf "%q" .LastName}}
Error:       {{.Error}}
Request:     {{.RequestID}}
Time:        {{.Time}}

The provider profile must be corrected by hand.
`

type rollbackAlert struct {
	UserID     kernel.UserID
	ExternalID kernel.SubjectID
	Step       string
	FirstName  string
	LastName   string
	Error      string
	RequestID  string
	Time       string
}

// Alerter e-mails operators about failed compensations.
type Alerter struct {
	client *notifx.Client
	to     []string
	opts   []notifx.Option
	log    *logx.Logger
}

// NewAlerter returns nil when there is nobody to alert. opts apply to every
// alert sent.
func NewAlerter(client *notifx.Client, to []string, log *logx.Logger, opts ...notifx.Option) (*Alerter, error) {
	if client == nil || len(to) == 0 {
		return nil, nil
	}
	if err := client.RegisterTemplate(rollbackTemplate, rollbackBody); err != nil {
		return nil, err
	}
	return &Alerter{client: client, to: to, opts: opts, log: log}, nil
}

// RollbackFailed sends the alert in the background. Failures are logged.
func (a *Alerter) RollbackFailed(ctx context.Context, data rollbackAlert) {
	if a == nil {
		return
	}
	data.RequestID = kernel.RequestIDFromContext(ctx)
	data.Time = time.Now().UTC().Format(time.RFC3339)

	opts := append([]notifx.Option{notifx.WithTags(map[string]string{"event": "profile_rollback_failed"})}, a.opts...)

	asyncx.Detach(ctx, alertTimeout, func(ctx context.Context) error {
		return a.client.SendTemplatedEmail(ctx, rollbackTemplate, data, notifx.EmailMessage{
			To:      a.to,
			Subject: "[gatekeeper] profile rollback failed for " + string(data.ExternalID),
		}, opts...)
	}, func(err error) {
		a.log.WithError(err).WithFields(logx.Fields{
			"user_id":     data.UserID,
			"external_id": data.ExternalID,
		}).Error("failed to send rollback alert")
	})
}
