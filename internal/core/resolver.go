package core

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/startpaged/startpaged/internal/core/db"
)

// External favicon providers in fixed priority order, templated on a
// hostname.
var faviconProviders = []string{
	"https://www.google.com/s2/favicons?domain=%s&sz=128",
	"https://icons.duckduckgo.com/ip3/%s.ico",
	"https://%s/favicon.ico",
}

// ResolveInput is everything the resolver needs to produce icon source
// candidates for one site.
type ResolveInput struct {
	IconType      string
	Icon          string
	CustomIconURL string
	URL           string
	Online        bool
}

// hasCachedIcon reports whether the stored icon value points at a
// loadable cached path or absolute URL.
func hasCachedIcon(icon string) bool {
	return icon != "" && (strings.HasPrefix(icon, "/") || strings.HasPrefix(icon, "http"))
}

// IconHostname extracts a hostname usable with favicon providers from a
// site URL. Hosts without a dot, IP addresses and local names are
// rejected. Bare "example.com" style values are accepted.
func IconHostname(rawURL string) (string, error) {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return "", fmt.Errorf("no URL to resolve a hostname from")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("failed to parse site URL: %w", err)
	}
	host := u.Hostname()
	if host == "" && !strings.Contains(raw, "://") {
		u, err = url.Parse("https://" + raw)
		if err != nil {
			return "", fmt.Errorf("failed to parse site URL: %w", err)
		}
		host = u.Hostname()
	}

	host = strings.ToLower(host)
	if host == "" || !strings.Contains(host, ".") {
		return "", fmt.Errorf("no resolvable hostname in %q", rawURL)
	}
	if host == "localhost" || strings.HasSuffix(host, ".local") || net.ParseIP(host) != nil {
		return "", fmt.Errorf("local hostname %q has no public favicon", host)
	}
	return host, nil
}

// ProviderIconURL returns the primary provider's icon URL for a site URL.
func ProviderIconURL(rawURL string) (string, error) {
	host, err := IconHostname(rawURL)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(faviconProviders[0], host), nil
}

// CandidateAt returns the attempt-th icon source to try for a site,
// counting from zero. It is a pure function of its inputs: the caller
// owns the attempt counter, advances it by one per reported failure,
// and must reset it whenever any ResolveInput field changes so stale
// failure state never carries over to a new configuration. ok=false
// means the candidates are exhausted and the caller should render a
// placeholder (or, for library sites, the named symbolic icon).
func CandidateAt(in ResolveInput, attempt int) (string, bool) {
	if attempt < 0 {
		return "", false
	}

	switch in.IconType {
	case db.IconTypeLibrary:
		return "", false
	case db.IconTypeUpload:
		// Upload icons never fall back to a provider.
		if attempt == 0 && in.CustomIconURL != "" {
			return in.CustomIconURL, true
		}
		return "", false
	}

	var candidates []string
	if hasCachedIcon(in.Icon) {
		candidates = append(candidates, in.Icon)
	}
	if in.Online {
		if host, err := IconHostname(in.URL); err == nil {
			for _, tmpl := range faviconProviders {
				candidates = append(candidates, fmt.Sprintf(tmpl, host))
			}
		}
	}
	if attempt >= len(candidates) {
		return "", false
	}
	return candidates[attempt], true
}

// Decision classifies what a sync pass should do with one site.
type Decision int

const (
	// DecisionUseCache leaves an intact local icon untouched.
	DecisionUseCache Decision = iota
	// DecisionFetchProvider refreshes the icon from a favicon provider.
	DecisionFetchProvider
	// DecisionFetchUpload re-fetches an upload icon whose backing file
	// is remote, missing or absent.
	DecisionFetchUpload
	// DecisionSkip excludes the site from the run entirely.
	DecisionSkip
)

func (d Decision) String() string {
	switch d {
	case DecisionUseCache:
		return "use-cache"
	case DecisionFetchProvider:
		return "fetch-provider"
	case DecisionFetchUpload:
		return "fetch-upload"
	case DecisionSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// PlanSync is the shared needs-refresh predicate for one site. The sync
// orchestrator passes a real file-existence check; UI callers that
// cannot reach the disk pass one that always reports true.
//
// Auto sites are always refreshed: freshness over efficiency is the
// policy, so an existing cache does not suppress the fetch.
func PlanSync(site db.Site, fileExists func(publicPath string) bool) Decision {
	switch site.IconType {
	case db.IconTypeLibrary:
		return DecisionSkip
	case db.IconTypeUpload:
		cur := strings.TrimSpace(site.CustomIconURL)
		if strings.HasPrefix(cur, "http") {
			// A remote value means the upload was never cached locally.
			return DecisionFetchUpload
		}
		if strings.HasPrefix(cur, "/") && fileExists(cur) {
			return DecisionUseCache
		}
		// Empty or dangling local path: re-fetch from the site's favicon.
		if _, err := IconHostname(site.URL); err != nil {
			return DecisionSkip
		}
		return DecisionFetchUpload
	}

	if _, err := IconHostname(site.URL); err != nil {
		return DecisionSkip
	}
	return DecisionFetchProvider
}
