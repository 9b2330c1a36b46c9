package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()

	assert.NotNil(t, r.Get("leumi"))
	assert.NotNil(t, r.Get(" LEUMI "))
	assert.Nil(t, r.Get("chase"))
	assert.Equal(t, []string{"leumi"}, r.Formats())
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(&Leumi{})
	assert.Panics(t, func() { r.Register(&Leumi{}) })
}
