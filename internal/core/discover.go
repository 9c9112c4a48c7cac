package core

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Icon link rel values in priority order.
var iconLinkRels = []string{
	"icon",
	"shortcut icon",
	"apple-touch-icon",
	"apple-touch-icon-precomposed",
}

var discoverClient = &http.Client{Timeout: DefaultDiscoverTimeout}

// DiscoverIconURL fetches a page and returns the icon URL its HTML
// declares via <link rel="icon"> (and friends), resolved against the
// final page URL. When the page declares none, it falls back to
// /favicon.ico at the site root.
func DiscoverIconURL(ctx context.Context, pageURL string) (string, error) {
	if err := ValidateIconURL(pageURL); err != nil {
		return "", err
	}

	reqCtx, cancel := context.WithTimeout(ctx, DefaultDiscoverTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build page request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := discoverClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch page: HTTP %d", resp.StatusCode)
	}

	// The final URL after redirects is the base for relative hrefs.
	base := resp.Request.URL

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, MaxDiscoverPageSize))
	if err != nil {
		return "", fmt.Errorf("failed to parse page HTML: %w", err)
	}

	for _, rel := range iconLinkRels {
		var found string
		doc.Find(fmt.Sprintf("link[rel='%s']", rel)).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			href, ok := s.Attr("href")
			if !ok || strings.TrimSpace(href) == "" {
				return true
			}
			found = resolveIconHref(base, href)
			return found == ""
		})
		if found != "" {
			return found, nil
		}
	}

	// No declared icon; most sites still serve one at the root.
	root := url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/favicon.ico"}
	return root.String(), nil
}

// resolveIconHref resolves a possibly relative href against the page URL.
// Data URIs and unparseable hrefs resolve to "".
func resolveIconHref(base *url.URL, href string) string {
	ref := strings.TrimSpace(href)
	if ref == "" || strings.HasPrefix(ref, "data:") {
		return ""
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(refURL).String()
}
