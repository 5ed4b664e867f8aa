package files

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "github.com/frackdev/frack/internal/errors"
)

func TestPutAndOpen(t *testing.T) {
	store := NewDiskStore(t.TempDir())

	size, err := store.Put(KindTicket, "1", "trace.log", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)

	f, err := store.Open(KindTicket, "1", "trace.log")
	require.NoError(t, err)
	defer f.Close()

	body, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
}

func TestPutExistingFileIsCollision(t *testing.T) {
	store := NewDiskStore(t.TempDir())

	_, err := store.Put(KindTicket, "1", "trace.log", strings.NewReader("first"))
	require.NoError(t, err)

	_, err = store.Put(KindTicket, "1", "trace.log", strings.NewReader("second"))
	assert.Equal(t, ferrors.KindCollision, ferrors.GetKind(err))

	// The original contents survive.
	f, err := store.Open(KindTicket, "1", "trace.log")
	require.NoError(t, err)
	defer f.Close()
	body, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "first", string(body))
}

func TestOpenMissingFile(t *testing.T) {
	store := NewDiskStore(t.TempDir())

	_, err := store.Open(KindTicket, "1", "nope.log")
	assert.Equal(t, ferrors.KindNotFound, ferrors.GetKind(err))
}

func TestRemove(t *testing.T) {
	store := NewDiskStore(t.TempDir())

	_, err := store.Put(KindTicket, "1", "trace.log", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, store.Remove(KindTicket, "1", "trace.log"))
	_, err = store.Open(KindTicket, "1", "trace.log")
	assert.Equal(t, ferrors.KindNotFound, ferrors.GetKind(err))

	// Removing again is fine.
	require.NoError(t, store.Remove(KindTicket, "1", "trace.log"))
}

func TestPathTraversalRejected(t *testing.T) {
	store := NewDiskStore(t.TempDir())

	bad := []string{"../etc", "a/b", "..", "."}
	for _, name := range bad {
		_, err := store.Put(KindTicket, "1", name, strings.NewReader("x"))
		assert.Equal(t, ferrors.KindValidation, ferrors.GetKind(err), "filename %q", name)
	}

	_, err := store.Put("../tickets", "1", "f", strings.NewReader("x"))
	assert.Equal(t, ferrors.KindValidation, ferrors.GetKind(err))
}

func TestPutEmptyComponent(t *testing.T) {
	store := NewDiskStore(t.TempDir())

	_, err := store.Put(KindTicket, "", "f", strings.NewReader("x"))
	assert.Equal(t, ferrors.KindValidation, ferrors.GetKind(err))
}
