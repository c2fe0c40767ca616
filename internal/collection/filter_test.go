package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterWith(t *testing.T) {
	var f Filter
	assert.True(t, f.IsZero())

	f, err := f.With(FieldSearch, "ada")
	require.NoError(t, err)
	f, err = f.With(FieldStatus, "Lead")
	require.NoError(t, err)
	f, err = f.With(FieldAction, "delete")
	require.NoError(t, err)
	assert.Equal(t, Filter{Search: "ada", Status: "Lead", Action: "delete"}, f)

	v, err := f.Get(FieldStatus)
	require.NoError(t, err)
	assert.Equal(t, "Lead", v)

	_, err = f.With("owner", "me")
	assert.ErrorIs(t, err, ErrUnknownField)
	_, err = f.Get("owner")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestLoadStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle().String())
	assert.Equal(t, "loading", Loading().String())
	assert.Equal(t, "error(timeout)", Failed("timeout").String())
}
