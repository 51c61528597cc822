package ingestion_test

import (
	"archive/zip"
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func createZip(t *testing.T, path string, files map[string]string) []byte {
	t.Helper()

	buf := &bytes.Buffer{}
	wrt := zip.NewWriter(buf)

	for name, content := range files {
		w, err := wrt.Create(name)
		require.NoError(t, err)

		_, err = io.WriteString(w, content)
		require.NoError(t, err)
	}

	require.NoError(t, wrt.Close())

	if path != "" {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	}

	return buf.Bytes()
}

// stubDoer answers every request with body and counts the calls.
type stubDoer struct {
	calls  atomic.Int32
	status int
	body   []byte
}

func (s *stubDoer) Do(req *http.Request) (*http.Response, error) {
	s.calls.Add(1)

	status := s.status
	if status == 0 {
		status = http.StatusOK
	}

	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(bytes.NewReader(s.body)),
		Request:    req,
	}, nil
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	return strings.TrimSpace(string(raw))
}

type zipEntry struct {
	name, content string
}

// createOrderedZip keeps the entry order, repeated names included.
func createOrderedZip(t *testing.T, path string, entries ...zipEntry) {
	t.Helper()

	buf := &bytes.Buffer{}
	wrt := zip.NewWriter(buf)

	for _, entry := range entries {
		w, err := wrt.Create(entry.name)
		require.NoError(t, err)

		_, err = io.WriteString(w, entry.content)
		require.NoError(t, err)
	}

	require.NoError(t, wrt.Close())
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
}
