package notifxconsole

import (
	"context"
	"strings"

	"github.com/Abraxas-365/gatekeeper/pkg/logx"
	"github.com/Abraxas-365/gatekeeper/pkg/notifx"
)

// ConsoleProvider writes emails to the log instead of sending them.
type ConsoleProvider struct {
	log *logx.Logger
}

// NewConsoleProvider creates a new console email provider.
func NewConsoleProvider(log *logx.Logger) *ConsoleProvider {
	return &ConsoleProvider{log: log}
}

// SendEmail logs the email.
func (p *ConsoleProvider) SendEmail(_ context.Context, msg notifx.EmailMessage, opts ...notifx.Option) error {
	so := notifx.ApplyOptions(opts)

	fields := logx.Fields{
		"from":    msg.From,
		"to":      strings.Join(msg.To, ", "),
		"subject": msg.Subject,
	}
	for k, v := range so.Tags {
		fields["tag_"+k] = v
	}

	p.log.WithFields(fields).Info("notifx/console: email not sent (console provider)")
	if msg.TextBody != "" {
		p.log.Debugf("notifx/console: body:\n%s", msg.TextBody)
	}
	return nil
}
