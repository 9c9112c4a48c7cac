package core

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/startpaged/startpaged/internal/core/db"
)

// ErrInvalidIconURL is returned when an icon source URL fails validation.
var ErrInvalidIconURL = errors.New("invalid icon URL")

// ErrInvalidDataURI is returned when an uploaded icon data URI is malformed.
var ErrInvalidDataURI = errors.New("invalid icon data URI")

// ValidateIconURL validates that a URL is fetchable as an icon source.
// It requires the URL to have http or https scheme and a non-empty host.
func ValidateIconURL(urlStr string) error {
	if urlStr == "" {
		return fmt.Errorf("%w: empty URL", ErrInvalidIconURL)
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidIconURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidIconURL, u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidIconURL)
	}

	return nil
}

// IconCacheManager downloads icon bytes and persists them through an
// IconStore, keeping the owning site record's icon reference current.
type IconCacheManager struct {
	db     *db.DB
	store  *IconStore
	client *http.Client

	// now stamps the cache-bust parameter; replaceable in tests.
	now func() time.Time
}

func NewIconCacheManager(database *db.DB, store *IconStore) *IconCacheManager {
	return &IconCacheManager{
		db:     database,
		store:  store,
		client: &http.Client{Timeout: DefaultIconTimeout},
		now:    time.Now,
	}
}

// SetTimeout overrides the per-download timeout. Non-positive values
// are ignored.
func (m *IconCacheManager) SetTimeout(d time.Duration) {
	if d > 0 {
		m.client.Timeout = d
	}
}

// cacheBust appends a freshness parameter so HTTP and image caches
// treat the overwritten file as new content.
func (m *IconCacheManager) cacheBust(publicPath string) string {
	return fmt.Sprintf("%s?v=%d", publicPath, m.now().UnixMilli())
}

// DownloadAndSave fetches sourceURL and stores the bytes as the site's
// cached icon, then points the site record's icon at the stored path
// (with a cache-bust parameter). It returns the public path written to
// the record.
//
// An invalid source URL, a fetch timeout or a non-2xx response leaves
// both disk and record untouched. Exactly one record update happens per
// successful call.
func (m *IconCacheManager) DownloadAndSave(ctx context.Context, siteID, sourceURL string) (string, error) {
	if err := ValidateIconURL(sourceURL); err != nil {
		return "", err
	}
	if err := m.store.EnsureDir(); err != nil {
		return "", err
	}

	reqCtx, cancel := context.WithTimeout(ctx, m.client.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build icon request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch icon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("failed to fetch icon: HTTP %d", resp.StatusCode)
	}

	publicPath, err := m.store.Write(siteID, "png", resp.Body)
	if err != nil {
		return "", err
	}

	busted := m.cacheBust(publicPath)
	if err := m.db.UpdateSiteIcon(siteID, busted); err != nil {
		// The file is on disk but nothing references it. The next sync
		// overwrites the same deterministic name, so leave it in place.
		log.Printf("Icon record update failed after download: site=%s path=%s: %v", siteID, publicPath, err)
		return "", fmt.Errorf("failed to update site icon record: %w", err)
	}

	return busted, nil
}

// SaveBase64 decodes a data:image/<ext>;base64 URI and stores the bytes
// as the site's cached icon, returning the cache-busted public path.
// Unlike DownloadAndSave it does not touch the site record; the caller
// owns the record semantics of an upload.
func (m *IconCacheManager) SaveBase64(siteID, dataURI string) (string, error) {
	ext, payload, err := parseImageDataURI(dataURI)
	if err != nil {
		return "", err
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}

	publicPath, err := m.store.Write(siteID, ext, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	return m.cacheBust(publicPath), nil
}

// Delete removes the file backing a previously stored icon path.
// Not-found is a no-op, as are paths outside the managed directory.
func (m *IconCacheManager) Delete(publicPath string) error {
	return m.store.Remove(publicPath)
}

// parseImageDataURI splits a data:image/<ext>;base64,<payload> URI into
// its extension and raw base64 payload.
func parseImageDataURI(dataURI string) (ext, payload string, err error) {
	const prefix = "data:image/"
	const marker = ";base64,"

	if !strings.HasPrefix(dataURI, prefix) {
		return "", "", fmt.Errorf("%w: missing %q prefix", ErrInvalidDataURI, prefix)
	}
	rest := dataURI[len(prefix):]

	i := strings.Index(rest, marker)
	if i <= 0 {
		return "", "", fmt.Errorf("%w: missing base64 marker", ErrInvalidDataURI)
	}

	ext = rest[:i]
	// Subtypes like "svg+xml" map to the bare extension.
	if j := strings.IndexAny(ext, "+;"); j >= 0 {
		ext = ext[:j]
	}
	if ext == "" {
		return "", "", fmt.Errorf("%w: missing image type", ErrInvalidDataURI)
	}

	payload = rest[i+len(marker):]
	if payload == "" {
		return "", "", fmt.Errorf("%w: empty payload", ErrInvalidDataURI)
	}

	return ext, payload, nil
}
