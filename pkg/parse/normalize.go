package parse

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/Sriram-PR/doc-harvester/pkg/utils"
)

// pageParam is the query parameter listing pages use for their page index
const pageParam = "page"

// NormalizeURL standardizes a URL for deduplication
// It lowercases the scheme and host, removes default ports (80 for http, 443 for https), removes trailing slashes from paths (unless root "/"), ensures empty path becomes "/", and removes fragments
// The query string is kept: detail pages may be addressed by query parameters
// Does not modify the input *url.URL
func NormalizeURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	// Work on a copy
	normalized := *u

	normalized.Scheme = strings.ToLower(normalized.Scheme)
	normalized.Host = strings.ToLower(normalized.Host)

	// Remove default ports
	host, port, err := net.SplitHostPort(normalized.Host)
	if err == nil { // Host included a port
		if (normalized.Scheme == "http" && port == "80") ||
			(normalized.Scheme == "https" && port == "443") {
			normalized.Host = host
		}
	}

	if normalized.Path == "" {
		normalized.Path = "/"
	} else if len(normalized.Path) > 1 && strings.HasSuffix(normalized.Path, "/") {
		normalized.Path = normalized.Path[:len(normalized.Path)-1]
	}

	normalized.Fragment = ""
	normalized.RawFragment = ""

	return normalized.String()
}

// NormalizeString parses rawURL and normalizes it with NormalizeURL
// Unparseable input is returned trimmed so callers can still dedupe on it
func NormalizeString(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return rawURL
	}
	return NormalizeURL(parsed)
}

// JoinOrigin turns an href found on a page into an absolute URL
// A leading slash is joined against origin, an http(s) value is kept as-is,
// and anything else is treated as a path relative to the origin root
func JoinOrigin(origin, href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", fmt.Errorf("%w: empty href", utils.ErrValidation)
	}
	if strings.HasPrefix(href, "http") {
		return href, nil
	}

	base, err := url.Parse(origin)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("%w: invalid origin '%s'", utils.ErrValidation, origin)
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("%w: cannot join '%s' to '%s': %v", utils.ErrValidation, href, origin, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// ExtractPageNumber returns the integer value of the 'page' query parameter, or 0 when absent or not an integer
func ExtractPageNumber(rawURL string) int {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return 0
	}
	values, ok := parsed.Query()[pageParam]
	if !ok || len(values) == 0 {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(values[0]))
	if err != nil {
		return 0
	}
	return n
}

// IncrementPageParam returns rawURL with its 'page' query parameter incremented by one
// Other parameters are kept in their original order and encoding
// The boolean is false when the URL has no integer 'page' parameter
func IncrementPageParam(rawURL string) (string, bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.RawQuery == "" {
		return "", false
	}

	segments := strings.Split(parsed.RawQuery, "&")
	for i, seg := range segments {
		key, value, _ := strings.Cut(seg, "=")
		if decoded, err := url.QueryUnescape(key); err != nil || decoded != pageParam {
			continue
		}
		decodedValue, err := url.QueryUnescape(value)
		if err != nil {
			return "", false
		}
		n, err := strconv.Atoi(strings.TrimSpace(decodedValue))
		if err != nil {
			return "", false
		}
		segments[i] = key + "=" + strconv.Itoa(n+1)
		parsed.RawQuery = strings.Join(segments, "&")
		return parsed.String(), true
	}
	return "", false
}

// ResolveAgainst resolves href relative to the page it was found on
// Used for query-only hrefs ("?page=2") that only make sense against the current listing path
func ResolveAgainst(pageURL, href string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: URL parsing failed for page '%s': %w", utils.ErrParsing, pageURL, err)
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("%w: URL parsing failed for href '%s': %w", utils.ErrParsing, href, err)
	}
	return base.ResolveReference(ref).String(), nil
}
