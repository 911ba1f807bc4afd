package notifx

import (
	"context"
	"testing"

	"github.com/Abraxas-365/gatekeeper/pkg/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendEmail(ctx context.Context, msg EmailMessage, opts ...Option) error {
	args := m.Called(ctx, msg, ApplyOptions(opts))
	return args.Error(0)
}

func TestClient_SendTemplatedEmail(t *testing.T) {
	sender := new(MockSender)
	client := NewClient(sender, "alerts@gatekeeper.local")
	require.NoError(t, client.RegisterTemplate("rollback", "user {{.UserID}} drifted"))

	sender.On("SendEmail", mock.Anything, mock.MatchedBy(func(msg EmailMessage) bool {
		return msg.From == "alerts@gatekeeper.local" && msg.TextBody == "user u-1 drifted"
	}), SendOptions{Tags: map[string]string{"kind": "rollback"}}).Return(nil).Once()

	err := client.SendTemplatedEmail(context.Background(), "rollback",
		map[string]string{"UserID": "u-1"},
		EmailMessage{To: []string{"ops@example.com"}, Subject: "rollback failed"},
		WithTags(map[string]string{"kind": "rollback"}),
	)

	require.NoError(t, err)
	sender.AssertExpectations(t)
}

func TestClient_RejectsInvalidMessages(t *testing.T) {
	client := NewClient(new(MockSender), "")

	err := client.SendEmail(context.Background(), EmailMessage{Subject: "x"})
	assert.True(t, errx.HasCode(err, ErrInvalidMessage.Code))

	err = client.SendEmail(context.Background(), EmailMessage{To: []string{"a@b.c"}, Subject: "  "})
	assert.True(t, errx.HasCode(err, ErrInvalidMessage.Code))
}

func TestTemplateRegistry_Errors(t *testing.T) {
	reg := NewTemplateRegistry()

	_, err := reg.Render("missing", nil)
	assert.True(t, errx.HasCode(err, ErrTemplateNotFound.Code))

	err = reg.Register("bad", "{{.Unclosed")
	assert.True(t, errx.HasCode(err, ErrTemplateParse.Code))

	require.NoError(t, reg.Register("strict", "{{.Name}}"))
	_, err = reg.Render("strict", map[string]string{})
	assert.True(t, errx.HasCode(err, ErrTemplateRender.Code))
}
