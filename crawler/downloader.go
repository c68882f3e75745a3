package crawler

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Downloader fetches one URL at a time into a fixed temporary file. Anything
// that is not a success is treated as a permanent failure; timeouts and
// retries below that level are the downloader's own business.
type Downloader interface {
	Fetch(url string) error
	TempFile() string
	DeleteTemp() error
}

const downloadTimeout = 30 * time.Second

// HTTPDownloader is the default Downloader over plain HTTP GET.
type HTTPDownloader struct {
	UserAgent  string
	HTTPClient *http.Client
	tempPath   string
}

// NewHTTPDownloader creates a downloader writing into tempDir.
func NewHTTPDownloader(userAgent, tempDir string) *HTTPDownloader {
	return &HTTPDownloader{
		UserAgent: userAgent,
		HTTPClient: &http.Client{
			Timeout: downloadTimeout,
		},
		tempPath: filepath.Join(tempDir, "download.tmp"),
	}
}

// Fetch downloads the URL into the temp file, replacing whatever a previous
// fetch left there.
func (d *HTTPDownloader) Fetch(url string) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.UserAgent)

	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("request for %s failed: status %d", url, resp.StatusCode)
	}

	outFile, err := os.Create(d.tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file '%s': %w", d.tempPath, err)
	}
	defer outFile.Close()

	if _, err := io.Copy(outFile, resp.Body); err != nil {
		// Attempt to remove the partial download on error
		os.Remove(d.tempPath)
		return fmt.Errorf("failed to write downloaded content to '%s': %w", d.tempPath, err)
	}
	return nil
}

func (d *HTTPDownloader) TempFile() string { return d.tempPath }

func (d *HTTPDownloader) DeleteTemp() error {
	if err := os.Remove(d.tempPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
