package archive

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.FixedZone("CET", 3600))

	assert.Equal(t, "reports/tesla-earnings/20240309T130507Z.pdf", Key("reports", "Tesla  Earnings!", at))
	assert.Equal(t, "untitled/20240309T130507Z.pdf", Key("", "???", at))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	loc, err := store.Put(ctx, "reports/a.pdf", []byte("%PDF"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "mem://reports/a.pdf", loc)

	ok, err := store.Exists(ctx, "reports/a.pdf")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"reports/a.pdf"}, store.Keys())
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
	types   map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = string(body)
		f.types[r.URL.Path] = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	case http.MethodHead:
		if _, ok := f.objects[r.URL.Path]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestS3Store(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	fake := &fakeS3{objects: map[string]string{}, types: map[string]string{}}
	server := httptest.NewServer(fake)
	defer server.Close()

	ctx := context.Background()
	store, err := NewS3Store(ctx, S3Options{
		Bucket:       "archive",
		Region:       "us-east-1",
		Endpoint:     server.URL,
		UsePathStyle: true,
	})
	require.NoError(t, err)

	loc, err := store.Put(ctx, "reports/tesla/1.pdf", []byte("%PDF-1.3"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "s3://archive/reports/tesla/1.pdf", loc)

	fake.mu.Lock()
	assert.Contains(t, fake.objects, "/archive/reports/tesla/1.pdf")
	assert.True(t, strings.HasPrefix(fake.types["/archive/reports/tesla/1.pdf"], "application/pdf"))
	fake.mu.Unlock()

	ok, err := store.Exists(ctx, "reports/tesla/1.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, "reports/tesla/missing.pdf")
	require.NoError(t, err)
	assert.False(t, ok)
}
