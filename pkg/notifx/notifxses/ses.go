package notifxses

import (
	"context"

	"github.com/Abraxas-365/gatekeeper/pkg/notifx"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SendEmailAPI is the subset of *ses.Client the provider calls.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESProvider implements notifx.EmailSender using AWS SES.
type SESProvider struct {
	client      SendEmailAPI
	fromAddress string
}

// NewSESProvider creates a new SES email provider.
func NewSESProvider(client SendEmailAPI, fromAddress string) *SESProvider {
	return &SESProvider{
		client:      client,
		fromAddress: fromAddress,
	}
}

// SendEmail sends a single plain-text email via SES.
func (p *SESProvider) SendEmail(ctx context.Context, msg notifx.EmailMessage, opts ...notifx.Option) error {
	so := notifx.ApplyOptions(opts)

	from := msg.From
	if from == "" {
		from = p.fromAddress
	}

	input := &ses.SendEmailInput{
		Source:      aws.String(from),
		Destination: &types.Destination{ToAddresses: msg.To},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(msg.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data:    aws.String(msg.TextBody),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	if msg.ReplyTo != "" {
		input.ReplyToAddresses = []string{msg.ReplyTo}
	}
	if so.ConfigID != "" {
		input.ConfigurationSetName = aws.String(so.ConfigID)
	}
	for k, v := range so.Tags {
		input.Tags = append(input.Tags, types.MessageTag{Name: aws.String(k), Value: aws.String(v)})
	}

	if _, err := p.client.SendEmail(ctx, input); err != nil {
		return sesErrors.NewWithCause(ErrSendFailed, err).
			WithDetail("to", msg.To).
			WithDetail("subject", msg.Subject)
	}
	return nil
}
