package restyutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestDumpWritesExchanges(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"label":"5 stars","score":0.9}]`))
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "dumps")
	output, err := NewFilesystemOutput(dir)
	require.NoError(t, err)

	client := resty.New()
	Trace(client, nil)
	Dump(client, output, func(id string, err error) {
		t.Errorf("dump %s: %v", id, err)
	})

	_, err = client.R().
		SetAuthToken("hf_secret").
		SetBody(map[string]string{"inputs": "great"}).
		Post(server.URL)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "000001.txt", entries[0].Name())

	contents, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	dump := string(contents)
	require.True(t, strings.HasPrefix(dump, "---- REQUEST ----"))
	require.Contains(t, dump, "POST "+server.URL)
	require.Contains(t, dump, `{"inputs":"great"}`)
	require.Contains(t, dump, "200 ")
	require.Contains(t, dump, `"label":"5 stars"`)
	require.Contains(t, dump, "Authorization: <redacted>")
	require.NotContains(t, dump, "hf_secret")
}

func TestFormatHeadersIsSorted(t *testing.T) {
	headers := http.Header{}
	headers.Set("X-B", "2")
	headers.Set("X-A", "1")
	headers.Set("Cookie", "session=1")
	require.Equal(t, "Cookie: <redacted>\nX-A: 1\nX-B: 2", formatHeaders(headers))
}
