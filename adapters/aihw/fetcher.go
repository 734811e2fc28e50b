package aihw

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/internal/errors"
	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/ports"
)

const (
	// Base is the AIHW site root
	Base = "https://www.aihw.gov.au"
	// Page lists the Reasons for care workbook downloads
	Page = Base + "/reports-data/myhospitals/separations/tables"
)

var (
	workbookLinkPattern = regexp.MustCompile(`href="([^"]*tables-reasons-for-care[^"]*\.xlsx)"`)
	vintagePattern      = regexp.MustCompile(`(20\d{2})-?(\d{2})?`)
)

// Fetcher downloads the latest Reasons for care workbook from the AIHW site.
// A direct URL skips page discovery.
type Fetcher struct {
	client *http.Client
	page   string
	// URL, when set, is used directly instead of scraping the listing page
	URL string
	// Year overrides the vintage derived from the workbook URL
	Year int
}

// NewFetcher creates a fetcher against the public AIHW listing page
func NewFetcher(url string, year int) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: 60 * time.Second},
		page:   Page,
		URL:    url,
		Year:   year,
	}
}

var _ ports.SourceFetcher = (*Fetcher)(nil)

// Fetch resolves the workbook link, derives the source vintage from the URL
// and downloads the bytes
func (f *Fetcher) Fetch(ctx context.Context) (*ports.Workbook, error) {
	url := f.URL
	if url == "" {
		discovered, err := f.discoverURL(ctx)
		if err != nil {
			return nil, err
		}
		url = discovered
	}

	year := f.Year
	if year == 0 {
		year = VintageYear(url)
	}
	if year == 0 {
		year = time.Now().UTC().Year()
	}

	data, err := f.download(ctx, url)
	if err != nil {
		return nil, err
	}
	return &ports.Workbook{Data: data, URL: url, Year: year}, nil
}

// discoverURL scrapes the listing page for the latest workbook link
func (f *Fetcher) discoverURL(ctx context.Context) (string, error) {
	body, err := f.get(ctx, f.page)
	if err != nil {
		return "", errors.FetchFailed(f.page, err)
	}

	m := workbookLinkPattern.FindStringSubmatch(string(body))
	if m == nil {
		return "", errors.FetchFailed(f.page, fmt.Errorf("could not locate .xlsx link on listing page"))
	}

	href := m[1]
	if len(href) > 0 && href[0] == '/' {
		href = Base + href
	}
	return href, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	data, err := f.get(ctx, url)
	if err != nil {
		return nil, errors.FetchFailed(url, err)
	}
	return data, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// VintageYear extracts the publication year embedded in a workbook URL,
// returning 0 when none is present
func VintageYear(url string) int {
	m := vintagePattern.FindStringSubmatch(url)
	if m == nil {
		return 0
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return year
}

// FileFetcher reads a local workbook instead of downloading one; used for
// offline runs and fixtures
type FileFetcher struct {
	Path string
	Year int
}

var _ ports.SourceFetcher = (*FileFetcher)(nil)

// Fetch reads the workbook bytes from disk
func (f *FileFetcher) Fetch(ctx context.Context) (*ports.Workbook, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, errors.FetchFailed(f.Path, err)
	}

	year := f.Year
	if year == 0 {
		year = VintageYear(f.Path)
	}
	if year == 0 {
		year = time.Now().UTC().Year()
	}
	return &ports.Workbook{Data: data, URL: f.Path, Year: year}, nil
}
