package handlers_test

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guestsnap/guestsnap/internal/models"
)

func TestUploadImageScenario(t *testing.T) {
	r, _, store := newTestServer(t)
	token := registerUser(t, r, "owner@example.com")
	id := createProject(t, r, token, "Wedding A")

	rec := uploadMedia(t, r, id, "Tom", "ceremony.jpg", "image/jpeg", []byte("jpeg bytes"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	entry := decodeBody(t, rec)
	assert.Equal(t, "Tom", entry["guestName"])
	assert.Equal(t, "image", entry["kind"])
	assert.True(t, strings.HasPrefix(entry["url"].(string), "memory://projects/"+id+"/"))
	require.Equal(t, 1, store.Len())

	rec = doJSON(t, r, http.MethodGet, "/api/projects/"+id, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	media := body["media"].([]any)
	require.Len(t, media, 1)

	first := media[0].(map[string]any)
	assert.Equal(t, "Tom", first["guestName"])
	assert.Equal(t, "image", first["kind"])
}

func TestUploadKindDerivation(t *testing.T) {
	r, _, _ := newTestServer(t)
	token := registerUser(t, r, "owner@example.com")
	id := createProject(t, r, token, "Kinds")

	cases := []struct {
		filename    string
		contentType string
		wantKind    string
	}{
		{"a.jpg", "image/jpeg", "image"},
		{"b.png", "image/png", "image"},
		{"c.mp4", "video/mp4", "video"},
		{"d.bin", "application/octet-stream", "video"},
	}

	for _, tc := range cases {
		rec := uploadMedia(t, r, id, "Guest", tc.filename, tc.contentType, []byte("data"))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, tc.wantKind, decodeBody(t, rec)["kind"], "content type %s", tc.contentType)
	}
}

func TestUploadMissingFile(t *testing.T) {
	r, _, _ := newTestServer(t)
	token := registerUser(t, r, "owner@example.com")
	id := createProject(t, r, token, "No File")

	rec := uploadMedia(t, r, id, "Guest", "", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadBlankGuestName(t *testing.T) {
	r, _, store := newTestServer(t)
	token := registerUser(t, r, "owner@example.com")
	id := createProject(t, r, token, "No Name")

	rec := uploadMedia(t, r, id, "   ", "a.jpg", "image/jpeg", []byte("jpeg"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, store.Len())
}

func TestUploadUnknownProject(t *testing.T) {
	r, gdb, store := newTestServer(t)

	rec := uploadMedia(t, r, "no-such-project", "Tom", "a.jpg", "image/jpeg", []byte("jpeg"))
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Nothing was stored and no media row exists anywhere.
	assert.Equal(t, 0, store.Len())

	var count int64
	require.NoError(t, gdb.Model(&models.Media{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUploadOversizedRejectedBeforeStorage(t *testing.T) {
	r, _, store := newTestServer(t)
	token := registerUser(t, r, "owner@example.com")
	id := createProject(t, r, token, "Big Files")

	oversized := bytes.Repeat([]byte("x"), testMaxUploadBytes+1)

	rec := uploadMedia(t, r, id, "Guest", "huge.mp4", "video/mp4", oversized)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, store.Len())
}

func TestUploadGiantBodyRejected(t *testing.T) {
	r, _, store := newTestServer(t)
	token := registerUser(t, r, "owner@example.com")
	id := createProject(t, r, token, "Giant Files")

	// Well past the transport cap: parsing aborts instead of buffering it.
	giant := bytes.Repeat([]byte("x"), 4*testMaxUploadBytes)

	rec := uploadMedia(t, r, id, "Guest", "huge.mp4", "video/mp4", giant)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, store.Len())
}

func TestUploadStorageFailure(t *testing.T) {
	r, gdb, store := newTestServer(t)
	token := registerUser(t, r, "owner@example.com")
	id := createProject(t, r, token, "Down Host")

	store.PutErr = fmt.Errorf("connection refused")

	rec := uploadMedia(t, r, id, "Guest", "a.jpg", "image/jpeg", []byte("jpeg"))
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var count int64
	require.NoError(t, gdb.Model(&models.Media{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestConcurrentUploadsLoseNothing(t *testing.T) {
	r, gdb, _ := newTestServer(t)
	token := registerUser(t, r, "owner@example.com")
	id := createProject(t, r, token, "Busy Event")

	const n = 10

	var wg sync.WaitGroup
	codes := make([]int, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := uploadMedia(t, r, id, fmt.Sprintf("Guest %d", i), fmt.Sprintf("p%d.jpg", i), "image/jpeg", []byte("jpeg"))
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		assert.Equal(t, http.StatusCreated, code, "upload %d", i)
	}

	var count int64
	require.NoError(t, gdb.Model(&models.Media{}).Count(&count).Error)
	assert.Equal(t, int64(n), count)
}
