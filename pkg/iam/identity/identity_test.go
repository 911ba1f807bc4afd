package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfile_PrimaryEmail(t *testing.T) {
	p := &Profile{
		PrimaryEmailAddressID: "em_2",
		EmailAddresses: []EmailAddress{
			{ID: "em_1", Address: "old@example.com", Verified: true},
			{ID: "em_2", Address: "new@example.com"},
		},
	}

	e, ok := p.PrimaryEmail()
	assert.True(t, ok)
	assert.Equal(t, "new@example.com", e.Address)
	assert.False(t, e.Verified)

	_, ok = (&Profile{}).PrimaryEmail()
	assert.False(t, ok)
}

func TestProfile_DisplayName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", (&Profile{FirstName: "Ada", LastName: "Lovelace"}).DisplayName())
	assert.Equal(t, "Ada", (&Profile{FirstName: "Ada"}).DisplayName())
}

func TestWithFreshRead(t *testing.T) {
	ctx := context.Background()
	assert.False(t, FreshRead(ctx))
	assert.True(t, FreshRead(WithFreshRead(ctx)))
}
