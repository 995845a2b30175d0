package users

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/flashmath/internal/store"
	"github.com/abhisek/flashmath/internal/store/storetest"
)

func names(us []User) []string {
	out := make([]string, len(us))
	for i, u := range us {
		out[i] = u.Name
	}
	return out
}

func TestInit_CreatesDefaultUser(t *testing.T) {
	ctx := context.Background()
	kv := storetest.Open(t)
	d := New(kv, nil)
	d.Init(ctx)

	assert.Equal(t, []string{DefaultUser}, names(d.List()))
	assert.Equal(t, DefaultUser, d.Current())

	// Persisted.
	d2 := New(kv, nil)
	d2.Init(ctx)
	assert.Equal(t, []string{DefaultUser}, names(d2.List()))
}

func TestInit_MissingCurrentFallsBackToFirst(t *testing.T) {
	ctx := context.Background()
	kv := storetest.Open(t)
	require.NoError(t, kv.Set(ctx, store.KeyUsers, `[{"name":"Ada","createdAt":"2024-01-01T00:00:00Z"},{"name":"Bob","createdAt":"2024-01-02T00:00:00Z"}]`))
	require.NoError(t, kv.Set(ctx, store.KeyCurrentUser, `"Zed"`))

	d := New(kv, nil)
	d.Init(ctx)
	assert.Equal(t, "Ada", d.Current())

	require.NoError(t, kv.Set(ctx, store.KeyCurrentUser, `"Bob"`))
	d.Init(ctx)
	assert.Equal(t, "Bob", d.Current())
}

func TestInit_MalformedUsers(t *testing.T) {
	ctx := context.Background()
	kv := storetest.Open(t)
	require.NoError(t, kv.Set(ctx, store.KeyUsers, `{"oops":`))

	d := New(kv, nil)
	d.Init(ctx)
	assert.Equal(t, []string{DefaultUser}, names(d.List()))
	assert.Equal(t, DefaultUser, d.Current())
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	d := New(storetest.Open(t), nil)
	d.Init(ctx)

	u, err := d.Create(ctx, "  Ada  ")
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)
	assert.True(t, d.Exists("Ada"))
	assert.Equal(t, DefaultUser, d.Current(), "creating does not switch")

	_, err = d.Create(ctx, "Ada")
	assert.ErrorIs(t, err, ErrUserExists)
	_, err = d.Create(ctx, "   ")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestSwitch(t *testing.T) {
	ctx := context.Background()
	kv := storetest.Open(t)
	d := New(kv, nil)
	d.Init(ctx)
	_, err := d.Create(ctx, "Ada")
	require.NoError(t, err)

	require.NoError(t, d.Switch(ctx, "Ada"))
	assert.Equal(t, "Ada", d.Current())
	assert.ErrorIs(t, d.Switch(ctx, "Nobody"), ErrUserNotFound)

	d2 := New(kv, nil)
	d2.Init(ctx)
	assert.Equal(t, "Ada", d2.Current())
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	d := New(storetest.Open(t), nil)
	d.Init(ctx)
	for _, n := range []string{"Ada", "Bob"} {
		_, err := d.Create(ctx, n)
		require.NoError(t, err)
	}
	require.NoError(t, d.Switch(ctx, "Bob"))

	require.NoError(t, d.Delete(ctx, "Bob"))
	assert.Equal(t, DefaultUser, d.Current(), "deleting the active user switches to the first")
	assert.ErrorIs(t, d.Delete(ctx, "Bob"), ErrUserNotFound)

	require.NoError(t, d.Delete(ctx, DefaultUser))
	assert.Equal(t, "Ada", d.Current())

	err := d.Delete(ctx, "Ada")
	assert.True(t, errors.Is(err, ErrLastUser))
	assert.Equal(t, []string{"Ada"}, names(d.List()))
}
