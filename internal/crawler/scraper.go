package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/samvad-hq/position-parser/internal/domain"
	"github.com/samvad-hq/position-parser/internal/logger"
	"github.com/samvad-hq/position-parser/internal/metrics"
	"github.com/samvad-hq/position-parser/pkg/httpclient"
)

const (
	maxHTMLBodyBytes = 10 << 20 // 10 MiB

	// MinContentChars is the shortest extracted text accepted as real content.
	// Anything shorter is almost always a JavaScript shell page.
	MinContentChars = 200

	// DefaultFetchTimeout applies when the fetcher is built without a timeout.
	DefaultFetchTimeout = 30 * time.Second

	strippedSelectors = "script, style, nav, footer, header, aside"
)

// DefaultHTTPClient returns a resty client that presents itself as a desktop browser.
func DefaultHTTPClient(timeout time.Duration, userAgent string) httpclient.Client {
	return httpclient.NewRestyClient(timeout, map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
	})
}

// Fetcher downloads a page and extracts its visible text.
type Fetcher struct {
	client  httpclient.Client
	timeout time.Duration
	log     logger.Logger
}

// NewFetcher constructs a fetcher with the provided HTTP client.
func NewFetcher(client httpclient.Client, timeout time.Duration, log logger.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	if client == nil {
		client = httpclient.NewRestyClient(timeout, nil)
	}
	return &Fetcher{client: client, timeout: timeout, log: logger.Ensure(log)}
}

// Fetch issues a single GET for rawURL and classifies the result.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) domain.ScrapeOutcome {
	host := Domain(rawURL)

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	resp, err := f.client.Get(ctx, rawURL, nil)
	if err != nil {
		return f.fail(rawURL, host, classifyTransportError(err), err)
	}

	if kind, failed := classifyStatus(resp.StatusCode()); failed {
		return f.fail(rawURL, host, kind, fmt.Errorf("status %d", resp.StatusCode()))
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	text, err := ExtractText(body)
	if err != nil {
		return f.fail(rawURL, host, domain.ErrUnknown, err)
	}
	if n := utf8.RuneCountInString(text); n < MinContentChars {
		return f.fail(rawURL, host, domain.ErrEmptyContent, fmt.Errorf("extracted %d chars", n))
	}

	metrics.ObserveFetch("content")
	f.log.DebugObj("page fetched", "fetch_result", map[string]any{
		"url":   rawURL,
		"chars": utf8.RuneCountInString(text),
	})
	return domain.Content(rawURL, text)
}

func (f *Fetcher) fail(rawURL, host string, kind domain.ErrorKind, cause error) domain.ScrapeOutcome {
	metrics.ObserveFetch(string(kind))
	f.log.WarnObj("page fetch failed", "fetch_error", map[string]any{
		"url":    rawURL,
		"domain": host,
		"kind":   kind,
		"error":  cause.Error(),
	})
	return domain.Failure(rawURL, kind, host)
}

// classifyStatus maps a final HTTP status to an error kind; 1xx-3xx are not failures.
func classifyStatus(code int) (domain.ErrorKind, bool) {
	switch {
	case code < http.StatusBadRequest:
		return "", false
	case code == http.StatusForbidden:
		return domain.ErrBlocked, true
	case code == http.StatusNotFound:
		return domain.ErrNotFound, true
	case code >= http.StatusInternalServerError:
		return domain.ErrServerError, true
	default:
		return domain.ErrUnknown, true
	}
}

// classifyTransportError maps a failure to obtain any response to an error kind.
func classifyTransportError(err error) domain.ErrorKind {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return domain.ErrTimeout
	}

	var urlErr *url.Error
	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &urlErr) || errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return domain.ErrInvalidURL
	}
	return domain.ErrUnknown
}

// ExtractText strips non-content elements from an HTML document and returns its
// visible text, one trimmed non-empty line per source line.
func ExtractText(body []byte) (string, error) {
	// scripting off so <noscript> children parse as elements instead of one raw text node
	root, err := html.ParseWithOptions(bytes.NewReader(body), html.ParseOptionEnableScripting(false))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	doc.Find(strippedSelectors).Remove()

	var lines []string
	for _, n := range doc.Nodes {
		collectLines(n, &lines)
	}
	return strings.Join(lines, "\n"), nil
}

func collectLines(n *html.Node, lines *[]string) {
	if n.Type == html.TextNode {
		for _, line := range strings.Split(n.Data, "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				*lines = append(*lines, trimmed)
			}
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectLines(c, lines)
	}
}
