package storage

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewObjectKey(t *testing.T) {
	t.Parallel()

	key := NewObjectKey("proj-1", "Photo.JPG")

	assert.True(t, strings.HasPrefix(key, "projects/proj-1/"), "key %q", key)
	assert.True(t, strings.HasSuffix(key, ".jpg"), "extension should be lowercased: %q", key)

	other := NewObjectKey("proj-1", "Photo.JPG")
	assert.NotEqual(t, key, other, "keys must be unique per call")
}

func TestNewObjectKeyNoExtension(t *testing.T) {
	t.Parallel()

	key := NewObjectKey("proj-2", "clip")
	assert.True(t, strings.HasPrefix(key, "projects/proj-2/"), "key %q", key)
	assert.False(t, strings.Contains(key[len("projects/proj-2/"):], "."), "no extension expected: %q", key)
}

func TestMemoryStorePutDelete(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	url, err := store.Put(ctx, "projects/p/a.jpg", "image/jpeg", bytes.NewReader([]byte("jpeg bytes")), 10)
	require.NoError(t, err)
	assert.Equal(t, "memory://projects/p/a.jpg", url)
	assert.Equal(t, 1, store.Len())

	require.NoError(t, store.Delete(ctx, "projects/p/a.jpg"))
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, []string{"projects/p/a.jpg"}, store.Deleted())
}

func TestMemoryStorePutFailure(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	store.PutErr = errors.New("backend down")

	_, err := store.Put(context.Background(), "k", "image/png", bytes.NewReader(nil), 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUploadFailed))
	assert.Equal(t, 0, store.Len())
}
