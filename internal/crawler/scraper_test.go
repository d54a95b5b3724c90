package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/samvad-hq/position-parser/internal/domain"
	"github.com/samvad-hq/position-parser/pkg/httpclient"
)

// stubHTTPResponse implements httpclient.Response.
type stubHTTPResponse struct {
	body       []byte
	statusCode int
}

func (s stubHTTPResponse) Body() []byte    { return s.body }
func (s stubHTTPResponse) StatusCode() int { return s.statusCode }

// stubHTTPClient returns a single response or error.
type stubHTTPClient struct {
	resp httpclient.Response
	err  error
}

func (s stubHTTPClient) Get(_ context.Context, _ string, _ map[string]string) (httpclient.Response, error) {
	return s.resp, s.err
}

func page(text string) string {
	return "<html><head><title>T</title></head><body><p>" + text + "</p></body></html>"
}

func TestFetcherClassifiesStatusCodes(t *testing.T) {
	cases := []struct {
		code int
		want domain.ErrorKind
	}{
		{http.StatusForbidden, domain.ErrBlocked},
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusServiceUnavailable, domain.ErrServerError},
		{http.StatusInternalServerError, domain.ErrServerError},
		{http.StatusTeapot, domain.ErrUnknown},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.code)
			_, _ = w.Write([]byte(page(strings.Repeat("x", 500))))
		}))
		f := NewFetcher(httpclient.NewRestyClient(time.Second, nil), time.Second, nil)
		out := f.Fetch(context.Background(), srv.URL)
		srv.Close()

		if out.OK() {
			t.Fatalf("status %d: expected failure", tc.code)
		}
		if out.Failure.Kind != tc.want {
			t.Fatalf("status %d: got kind %q want %q", tc.code, out.Failure.Kind, tc.want)
		}
		if out.Failure.Domain != strings.TrimPrefix(srv.URL, "http://") {
			t.Fatalf("unexpected domain %q", out.Failure.Domain)
		}
	}
}

func TestFetcherContentThreshold(t *testing.T) {
	body := func(n int) []byte {
		return []byte("<html><body><p>" + strings.Repeat("a", n) + "</p></body></html>")
	}

	short := stubHTTPResponse{body: body(MinContentChars - 1), statusCode: 200}
	out := NewFetcher(stubHTTPClient{resp: short}, time.Second, nil).Fetch(context.Background(), "https://example.com/a")
	if out.OK() || out.Failure.Kind != domain.ErrEmptyContent {
		t.Fatalf("expected empty_content for %d chars, got %#v", MinContentChars-1, out)
	}

	exact := stubHTTPResponse{body: body(MinContentChars), statusCode: 200}
	out = NewFetcher(stubHTTPClient{resp: exact}, time.Second, nil).Fetch(context.Background(), "https://example.com/a")
	if !out.OK() {
		t.Fatalf("expected content, got %#v", out.Failure)
	}
	if out.URL != "https://example.com/a" || len(out.Text) != MinContentChars {
		t.Fatalf("unexpected outcome url=%q len=%d", out.URL, len(out.Text))
	}
}

func TestFetcherCountsRunesNotBytes(t *testing.T) {
	body := []byte("<html><body><p>" + strings.Repeat("é", MinContentChars) + "</p></body></html>")
	out := NewFetcher(stubHTTPClient{resp: stubHTTPResponse{body: body, statusCode: 200}}, time.Second, nil).
		Fetch(context.Background(), "https://example.com")
	if !out.OK() {
		t.Fatalf("expected content, got %#v", out.Failure)
	}

	body = []byte("<html><body><p>" + strings.Repeat("é", MinContentChars-1) + "</p></body></html>")
	out = NewFetcher(stubHTTPClient{resp: stubHTTPResponse{body: body, statusCode: 200}}, time.Second, nil).
		Fetch(context.Background(), "https://example.com")
	if out.OK() || out.Failure.Kind != domain.ErrEmptyContent {
		t.Fatalf("expected empty_content, got %#v", out)
	}
}

func TestFetcherTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	f := NewFetcher(httpclient.NewRestyClient(5*time.Second, nil), 50*time.Millisecond, nil)
	out := f.Fetch(context.Background(), srv.URL)
	if out.OK() || out.Failure.Kind != domain.ErrTimeout {
		t.Fatalf("expected timeout, got %#v", out)
	}
}

func TestFetcherConnectionRefusedIsInvalidURL(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	out := NewFetcher(httpclient.NewRestyClient(time.Second, nil), time.Second, nil).Fetch(context.Background(), addr)
	if out.OK() || out.Failure.Kind != domain.ErrInvalidURL {
		t.Fatalf("expected invalid_url, got %#v", out)
	}
}

func TestFetcherUnknownTransportError(t *testing.T) {
	out := NewFetcher(stubHTTPClient{err: errors.New("boom")}, time.Second, nil).
		Fetch(context.Background(), "https://example.com/x")
	if out.OK() || out.Failure.Kind != domain.ErrUnknown || out.Failure.Domain != "example.com" {
		t.Fatalf("unexpected outcome %#v", out)
	}
}

func TestFetcherSendsBrowserHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "agent/1.0" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if !strings.Contains(r.Header.Get("Accept"), "text/html") || r.Header.Get("Accept-Language") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(page(strings.Repeat("ok ", 100))))
	}))
	defer srv.Close()

	out := NewFetcher(DefaultHTTPClient(time.Second, "agent/1.0"), time.Second, nil).Fetch(context.Background(), srv.URL)
	if !out.OK() {
		t.Fatalf("expected content, got %#v", out.Failure)
	}
}

func TestExtractTextStripsChrome(t *testing.T) {
	doc := `<html><head><title>Candidate Page</title><style>.x{color:red}</style></head>
<body>
  <header>Site Header</header>
  <nav>Menu Home About</nav>
  <script>var secret = 1;</script>
  <main>
    <h1>  Plans  </h1>
    <p>Line one
       line two</p>
    <!-- hidden comment -->
  </main>
  <aside>Sidebar</aside>
  <footer>Copyright</footer>
</body></html>`

	got, err := ExtractText([]byte(doc))
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	want := "Candidate Page\nPlans\nLine one\nline two"
	if got != want {
		t.Fatalf("ExtractText got %q want %q", got, want)
	}
	for _, banned := range []string{"secret", "Menu", "Sidebar", "Copyright", "Site Header", "color", "hidden"} {
		if strings.Contains(got, banned) {
			t.Fatalf("text still contains %q", banned)
		}
	}
}

const jsShellPage = `<!doctype html><html><head><title>Jane Doe for Senate</title>
<script src="/static/js/main.3f2a.js"></script></head>
<body>
<noscript><iframe src="https://www.googletagmanager.com/ns.html?id=GTM-ABCD123" height="0" width="0" style="display:none;visibility:hidden"></iframe></noscript>
<noscript>You need to enable JavaScript to run this app.</noscript>
<div id="root"></div>
</body></html>`

func TestExtractTextParsesNoscriptAsMarkup(t *testing.T) {
	got, err := ExtractText([]byte(jsShellPage))
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if strings.Contains(got, "<iframe") || strings.Contains(got, "googletagmanager") {
		t.Fatalf("noscript markup leaked into text: %q", got)
	}
	want := "Jane Doe for Senate\nYou need to enable JavaScript to run this app."
	if got != want {
		t.Fatalf("ExtractText got %q want %q", got, want)
	}
}

func TestFetcherRejectsJavaScriptShell(t *testing.T) {
	client := stubHTTPClient{resp: stubHTTPResponse{body: []byte(jsShellPage), statusCode: 200}}
	out := NewFetcher(client, time.Second, nil).Fetch(context.Background(), "https://janedoe.example")
	if out.OK() {
		t.Fatalf("shell page accepted as content: %q", out.Text)
	}
	if out.Failure.Kind != domain.ErrEmptyContent || out.Failure.Domain != "janedoe.example" {
		t.Fatalf("unexpected failure %#v", out.Failure)
	}
}

func TestFetcherLimitsBody(t *testing.T) {
	body := []byte("<html><body><p>" + strings.Repeat("a", maxHTMLBodyBytes+10) + "</p></body></html>")
	out := NewFetcher(stubHTTPClient{resp: stubHTTPResponse{body: body, statusCode: 200}}, time.Second, nil).
		Fetch(context.Background(), "https://example.com")
	if !out.OK() {
		t.Fatalf("expected content, got %#v", out.Failure)
	}
	if len(out.Text) > maxHTMLBodyBytes {
		t.Fatalf("text exceeds body limit: %d", len(out.Text))
	}
}
