package netx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadToFile(t *testing.T) {
	t.Run("success writes body", func(t *testing.T) {
		var gotMethod string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			_, _ = w.Write([]byte("jpeg-bytes"))
		}))
		defer ts.Close()

		dst := filepath.Join(t.TempDir(), "refund_1_2.jpg")
		require.NoError(t, DownloadToFile(context.Background(), ts.Client(), ts.URL+"/file/photo.jpg", dst))

		assert.Equal(t, http.MethodGet, gotMethod)
		b, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "jpeg-bytes", string(b))
	})

	t.Run("non-200 leaves no file", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer ts.Close()

		dir := t.TempDir()
		dst := filepath.Join(dir, "x.jpg")
		err := DownloadToFile(context.Background(), ts.Client(), ts.URL, dst)
		require.ErrorContains(t, err, "download failed: 404")

		_, statErr := os.Stat(dst)
		assert.True(t, os.IsNotExist(statErr))
		entries, _ := os.ReadDir(dir)
		assert.Empty(t, entries, "temp file must be cleaned up")
	})

	t.Run("transport error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := ts.URL
		ts.Close()

		err := DownloadToFile(context.Background(), http.DefaultClient, url, filepath.Join(t.TempDir(), "y"))
		require.Error(t, err)
	})
}
