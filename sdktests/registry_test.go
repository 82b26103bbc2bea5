package sdktests

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistryResolvesTestModules(t *testing.T) {
	modules, err := DefaultRegistry().Resolve(TestModules)
	require.NoError(t, err)
	require.Len(t, modules, 2)
	assert.Equal(t, "toolchain_test", modules[0].Name)
	assert.Equal(t, "chrome_mock_test", modules[1].Name)
}

func TestResolveKeepsRequestedOrder(t *testing.T) {
	r := NewRegistry()
	r.Register("a", func(*T) {})
	r.Register("b", func(*T) {})

	modules, err := r.Resolve([]string{"b", "a"})
	require.NoError(t, err)
	assert.Equal(t, "b", modules[0].Name)
	assert.Equal(t, "a", modules[1].Name)
}

func TestResolveReportsEveryUnknownModule(t *testing.T) {
	r := NewRegistry()
	r.Register("a", func(*T) {})

	modules, err := r.Resolve([]string{"missing1", "a", "missing2"})
	require.Error(t, err)
	assert.Nil(t, modules)
	assert.True(t, errors.Is(err, ErrUnknownModule))
	assert.Contains(t, err.Error(), "missing1")
	assert.Contains(t, err.Error(), "missing2")
}

func TestRegisterTwicePanics(t *testing.T) {
	r := NewRegistry()
	r.Register("a", func(*T) {})
	assert.Panics(t, func() { r.Register("a", func(*T) {}) })
}
