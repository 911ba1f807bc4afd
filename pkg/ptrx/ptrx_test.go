package ptrx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTo(t *testing.T) {
	v := 3
	p := To(v)
	v = 4
	assert.Equal(t, 3, *p)
}

func TestValue(t *testing.T) {
	assert.Equal(t, "", Value[string](nil))
	assert.Equal(t, "x", Value(To("x")))
	assert.Equal(t, "fallback", ValueOr(nil, "fallback"))
	assert.Equal(t, "x", ValueOr(To("x"), "fallback"))
}

func TestNonZero(t *testing.T) {
	assert.Nil(t, NonZero(""))
	assert.Nil(t, NonZero(0))
	assert.Equal(t, "a", *NonZero("a"))
}
