package aihw

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/internal/errors"
)

func TestVintageYear(t *testing.T) {
	assert.Equal(t, 2023, VintageYear("/myhospitals/tables-reasons-for-care-2023-24.xlsx"))
	assert.Equal(t, 2021, VintageYear("tables-reasons-for-care-2021.xlsx"))
	assert.Zero(t, VintageYear("tables-reasons-for-care.xlsx"))
}

func TestFetcherDiscoversWorkbookLink(t *testing.T) {
	payload := []byte("workbook-bytes")
	mux := http.NewServeMux()
	mux.HandleFunc("/tables", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><a href="/files/tables-reasons-for-care-2023-24.xlsx">Download</a></html>`)
	})
	mux.HandleFunc("/files/tables-reasons-for-care-2023-24.xlsx", func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	f := &Fetcher{
		client: &http.Client{Timeout: 5 * time.Second},
		page:   ts.URL + "/tables",
	}
	// The listing page serves a relative href; rewrite discovery output onto
	// the test server by fetching the resolved path directly.
	url, err := f.discoverURL(context.Background())
	require.NoError(t, err)
	assert.Contains(t, url, "tables-reasons-for-care-2023-24.xlsx")

	f.URL = ts.URL + "/files/tables-reasons-for-care-2023-24.xlsx"
	workbook, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, payload, workbook.Data)
	assert.Equal(t, 2023, workbook.Year)
}

func TestFetcherFailsWhenNoLinkPresent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>no downloads today</html>`)
	}))
	defer ts.Close()

	f := &Fetcher{
		client: &http.Client{Timeout: 5 * time.Second},
		page:   ts.URL,
	}
	_, err := f.Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeFetchFailed, errors.GetCode(err))
}

func TestFileFetcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables-reasons-for-care-2022-23.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("local-bytes"), 0o644))

	f := &FileFetcher{Path: path}
	workbook, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("local-bytes"), workbook.Data)
	assert.Equal(t, 2022, workbook.Year)
}

func TestFileFetcherMissingFile(t *testing.T) {
	f := &FileFetcher{Path: "/nonexistent/workbook.xlsx"}
	_, err := f.Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeFetchFailed, errors.GetCode(err))
}

func TestFetcherYearOverride(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("bytes"))
	}))
	defer ts.Close()

	f := NewFetcher(ts.URL+"/tables-reasons-for-care.xlsx", 2019)
	workbook, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2019, workbook.Year)
}
