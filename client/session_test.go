package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	storage := NewMemoryStorage()
	cart, err := LoadCart(storage)
	require.NoError(t, err)
	require.NoError(t, cart.Add(item("p1", "5")))

	session := NewSession(storage, cart)
	require.NoError(t, session.Start())
	assert.False(t, session.Authenticated())
	_, ok := session.User()
	assert.False(t, ok)

	require.NoError(t, session.Login(AuthBundle{User: &User{ID: "u1", Name: "Alice", Address: "1 Main St"}, Token: "tok"}))
	assert.True(t, session.Authenticated())
	assert.Equal(t, "tok", session.Token())

	// A new session on the same storage picks up the login.
	restored := NewSession(storage, nil)
	require.NoError(t, restored.Start())
	user, ok := restored.User()
	require.True(t, ok)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "tok", restored.Token())

	require.NoError(t, session.Logout())
	assert.False(t, session.Authenticated())
	assert.Equal(t, 0, cart.Len())
	_, err = storage.Get(KeyAuth)
	assert.ErrorIs(t, err, ErrNoValue)
	_, err = storage.Get(KeyCart)
	assert.ErrorIs(t, err, ErrNoValue)
}

func TestSessionStartCorrupt(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Set(KeyAuth, []byte(`nope`)))
	session := NewSession(storage, nil)
	assert.Error(t, session.Start())
	assert.False(t, session.Authenticated())
}

func TestSessionSetUser(t *testing.T) {
	storage := NewMemoryStorage()
	session := NewSession(storage, nil)
	assert.Error(t, session.SetUser(User{ID: "u1"}))

	require.NoError(t, session.Login(AuthBundle{User: &User{ID: "u1", Name: "Alice"}, Token: "tok"}))
	require.NoError(t, session.SetUser(User{ID: "u1", Name: "Alice", Address: "2 Side St"}))

	restored := NewSession(storage, nil)
	require.NoError(t, restored.Start())
	user, ok := restored.User()
	require.True(t, ok)
	assert.Equal(t, "2 Side St", user.Address)
	assert.Equal(t, "tok", restored.Token())
}
