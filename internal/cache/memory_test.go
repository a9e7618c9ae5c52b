package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemory_GetSet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, ok, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, m.Set(ctx, "k", []byte("v1")))
	v, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v1"), v)

	require.NoError(t, m.Set(ctx, "k", []byte("v2")))
	v, _, _ = m.Get(ctx, "k")
	require.Equal(t, []byte("v2"), v)
	require.Equal(t, 1, m.Len())
}

func TestMemory_ReturnsCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	src := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", src))
	src[0] = 'x'

	v, _, _ := m.Get(ctx, "k")
	require.Equal(t, []byte("abc"), v)

	v[0] = 'y'
	again, _, _ := m.Get(ctx, "k")
	require.Equal(t, []byte("abc"), again)
}
