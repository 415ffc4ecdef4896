package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/guestsnap/guestsnap/db"
	"github.com/guestsnap/guestsnap/internal/config"
	"github.com/guestsnap/guestsnap/internal/router"
	"github.com/guestsnap/guestsnap/internal/storage"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

const testMaxUploadBytes = 1 << 20 // keep oversize tests cheap

// newTestServer wires the real router against an in-memory database and an
// in-memory object store. A single DB connection serializes writes the way
// a Postgres pool's row-level atomicity would.
func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB, *storage.MemoryStore) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(gdb))

	store := storage.NewMemoryStore()

	cfg := &config.Config{
		Port:           "0",
		JWTSecret:      "test-secret",
		TokenTTL:       time.Hour,
		FrontendOrigin: "http://localhost:3000",
		MaxUploadBytes: testMaxUploadBytes,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return router.New(cfg, gdb, store, logger), gdb, store
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func registerUser(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()

	rec := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Test Photographer",
		"email":    email,
		"password": "correct horse battery staple",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	token, ok := body["token"].(string)
	require.True(t, ok, "token missing in %v", body)
	return token
}

func createProject(t *testing.T, r *gin.Engine, token, name string) string {
	t.Helper()

	rec := doJSON(t, r, http.MethodPost, "/api/projects", token, gin.H{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	id, ok := body["id"].(string)
	require.True(t, ok, "id missing in %v", body)
	return id
}

func uploadMedia(t *testing.T, r *gin.Engine, projectID, guestName, filename, contentType string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if filename != "" {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="media"; filename=%q`, filename))
		header.Set("Content-Type", contentType)

		part, err := w.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}

	require.NoError(t, w.WriteField("projectId", projectID))
	require.NoError(t, w.WriteField("guestName", guestName))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}
