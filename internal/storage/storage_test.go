package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiskStore_PutGetDelete(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	ref, err := store.Put([]byte("payload"), "image/jpeg")
	require.NoError(t, err)
	require.NotEmpty(t, ref)

	data, contentType, err := store.Get(ref)
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), data)
	require.Equal(t, "image/jpeg", contentType)

	require.NoError(t, store.Delete(ref))

	_, _, err = store.Get(ref)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDiskStore_UnknownContentTypeFallsBack(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	ref, err := store.Put([]byte("payload"), "application/x-custom")
	require.NoError(t, err)

	_, contentType, err := store.Get(ref)
	require.NoError(t, err)
	require.Equal(t, "application/octet-stream", contentType)
}

func TestDiskStore_RejectsPathLikeRefs(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	for _, ref := range []string{"../etc/passwd", "a/b.jpg", "..%2fsecret"} {
		_, _, err := store.Get(ref)
		require.ErrorIs(t, err, ErrNotFound, ref)
	}
}

func TestDiskStore_RefsAreUnique(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	a, err := store.Put([]byte("one"), "image/png")
	require.NoError(t, err)
	b, err := store.Put([]byte("two"), "image/png")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
