package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadDelete(t *testing.T) {
	Init(nil)

	id, err := GenerateSessionID()
	require.NoError(t, err)
	require.NotEmpty(t, id)

	in := &Data{UserID: 7, Username: "alice", IsAdmin: true}
	require.NoError(t, in.Write(id, time.Minute))

	var out Data
	require.NoError(t, out.Read(id))
	assert.Equal(t, *in, out)

	require.NoError(t, Delete(id))
	require.ErrorIs(t, out.Read(id), ErrNoSession)
}

func TestReadUnknownSession(t *testing.T) {
	Init(nil)

	var d Data
	require.ErrorIs(t, d.Read("missing"), ErrNoSession)
}
