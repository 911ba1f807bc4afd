package notifx

import (
	"context"
	"strings"
)

// EmailSender sends a single email.
type EmailSender interface {
	SendEmail(ctx context.Context, msg EmailMessage, opts ...Option) error
}

// Client validates messages, renders templates and hands mail to a provider.
type Client struct {
	provider  EmailSender
	templates *TemplateRegistry
	from      string
}

// NewClient creates a new notification client.
// from is used when a message leaves From empty.
func NewClient(provider EmailSender, from string) *Client {
	return &Client{
		provider:  provider,
		templates: NewTemplateRegistry(),
		from:      from,
	}
}

// SendEmail sends an email through the configured provider.
func (c *Client) SendEmail(ctx context.Context, msg EmailMessage, opts ...Option) error {
	if c.provider == nil {
		return notifxErrors.New(ErrNoProvider)
	}
	if len(msg.To) == 0 {
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "no recipients")
	}
	if strings.TrimSpace(msg.Subject) == "" {
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "empty subject")
	}
	if msg.From == "" {
		msg.From = c.from
	}
	return c.provider.SendEmail(ctx, msg, opts...)
}

// RegisterTemplate parses and stores a named template for later use.
func (c *Client) RegisterTemplate(name, tmpl string) error {
	return c.templates.Register(name, tmpl)
}

// SendTemplatedEmail renders a template into the text body and sends it.
func (c *Client) SendTemplatedEmail(ctx context.Context, name string, data any, msg EmailMessage, opts ...Option) error {
	body, err := c.templates.Render(name, data)
	if err != nil {
		return err
	}

	msg.TextBody = body
	return c.SendEmail(ctx, msg, opts...)
}
