package notifxses

import (
	"context"
	"errors"
	"testing"

	"github.com/Abraxas-365/gatekeeper/pkg/errx"
	"github.com/Abraxas-365/gatekeeper/pkg/notifx"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESProvider_SendEmail(t *testing.T) {
	api := &fakeSES{}
	p := NewSESProvider(api, "noreply@gatekeeper.local")

	err := p.SendEmail(context.Background(), notifx.EmailMessage{
		To:       []string{"ops@example.com"},
		Subject:  "alert",
		TextBody: "body",
	}, notifx.WithConfigID("alerts"), notifx.WithTags(map[string]string{"kind": "rollback"}))

	require.NoError(t, err)
	assert.Equal(t, "noreply@gatekeeper.local", aws.ToString(api.input.Source))
	assert.Equal(t, []string{"ops@example.com"}, api.input.Destination.ToAddresses)
	assert.Equal(t, "body", aws.ToString(api.input.Message.Body.Text.Data))
	assert.Equal(t, "alerts", aws.ToString(api.input.ConfigurationSetName))
	require.Len(t, api.input.Tags, 1)
	assert.Equal(t, "kind", aws.ToString(api.input.Tags[0].Name))
}

func TestSESProvider_WrapsFailure(t *testing.T) {
	p := NewSESProvider(&fakeSES{err: errors.New("throttled")}, "noreply@gatekeeper.local")

	err := p.SendEmail(context.Background(), notifx.EmailMessage{To: []string{"ops@example.com"}, Subject: "s"})

	assert.True(t, errx.HasCode(err, ErrSendFailed.Code))
}
