package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/PriceScrapexter/internal/errors"
)

func TestHTTPClient_FetchSendsBrowserHeaders(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<div class="price">$12.50</div>`))
	}))
	defer server.Close()

	client := NewHTTPClient(ClientConfig{Headers: map[string]string{"Accept-Language": "th-TH"}})
	page, err := client.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Contains(t, string(page.Body), "$12.50")
	assert.Equal(t, DefaultUserAgent, got.Get("User-Agent"))
	assert.Equal(t, "https://www.google.com/", got.Get("Referer"))
	assert.Equal(t, "navigate", got.Get("Sec-Fetch-Mode"))
	assert.Equal(t, "th-TH", got.Get("Accept-Language"))
}

func TestHTTPClient_FetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewHTTPClient(ClientConfig{}).Fetch(context.Background(), server.URL)
	require.Error(t, err)

	var httpErr *errors.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Equal(t, "HTTP 404: Not Found", err.Error())
}

func TestHTTPClient_FetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := NewHTTPClient(ClientConfig{Timeout: 50 * time.Millisecond})
	_, err := client.Fetch(context.Background(), server.URL)
	require.Error(t, err)

	var timeoutErr *errors.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, errors.KindTimeout, errors.KindOf(err))
	assert.Equal(t, "request timed out after 50ms", err.Error())
}

func TestHTTPClient_FetchNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewHTTPClient(ClientConfig{}).Fetch(context.Background(), url)
	require.Error(t, err)
	assert.Equal(t, errors.KindNetwork, errors.KindOf(err))
}

func TestHTTPClient_FetchInvalidURL(t *testing.T) {
	for _, u := range []string{"", "not a url", "ftp://example.com/x"} {
		_, err := NewHTTPClient(ClientConfig{}).Fetch(context.Background(), u)
		assert.Equal(t, errors.KindInput, errors.KindOf(err), "url %q", u)
	}
}

func TestHTTPClient_FetchDecodesCharset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=windows-1252")
		_, _ = w.Write([]byte("<div class=\"price\">\xa319.99</div>"))
	}))
	defer server.Close()

	page, err := NewHTTPClient(ClientConfig{}).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, string(page.Body), "£19.99")
}

func TestHTTPClient_FetchDecodesMetaCharset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<head><meta charset=\"iso-8859-1\"></head><p>\xa35</p>"))
	}))
	defer server.Close()

	page, err := NewHTTPClient(ClientConfig{}).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, string(page.Body), "£5")
}

func TestHTTPClient_FetchCapsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 4096))
	}))
	defer server.Close()

	page, err := NewHTTPClient(ClientConfig{MaxBodyBytes: 1024}).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Len(t, page.Body, 1024)
}

type stubFetcher struct {
	pages map[string]string
	errs  map[string][]error
	calls []string
}

func (s *stubFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	s.calls = append(s.calls, url)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if errs := s.errs[url]; len(errs) > 0 {
		err := errs[0]
		s.errs[url] = errs[1:]
		if err != nil {
			return nil, err
		}
	}
	html, ok := s.pages[url]
	if !ok {
		return nil, &errors.HTTPError{URL: url, StatusCode: http.StatusNotFound}
	}
	return &Page{URL: url, StatusCode: http.StatusOK, Body: []byte(html)}, nil
}

func TestFallbackFetcher(t *testing.T) {
	primary := &stubFetcher{
		pages: map[string]string{"https://ok.test": "primary"},
		errs: map[string][]error{
			"https://blocked.test": {&errors.HTTPError{StatusCode: http.StatusForbidden}},
		},
	}
	secondary := &stubFetcher{pages: map[string]string{
		"https://blocked.test": "rendered",
		"https://missing.test": "should not be used",
	}}
	f := NewFallbackFetcher(primary, secondary, nil)

	page, err := f.Fetch(context.Background(), "https://ok.test")
	require.NoError(t, err)
	assert.Equal(t, "primary", string(page.Body))

	page, err = f.Fetch(context.Background(), "https://blocked.test")
	require.NoError(t, err)
	assert.Equal(t, "rendered", string(page.Body))

	_, err = f.Fetch(context.Background(), "https://missing.test")
	assert.Equal(t, http.StatusNotFound, errors.StatusCode(err))
	assert.Equal(t, []string{"https://blocked.test"}, secondary.calls)
}
