package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Result is the outcome of a single fetch. ErrorMessage is empty on success;
// StatusCode is zero when the request never reached an HTTP exchange.
type Result struct {
	StatusCode   int
	Body         []byte
	ErrorMessage string
}

func (r Result) OK() bool {
	return r.ErrorMessage == "" && r.StatusCode >= 200 && r.StatusCode < 300 && len(r.Body) > 0
}

// FailureClass identifies the most specific detectable cause of a failed
// fetch, used to pick a user-visible label.
type FailureClass int

const (
	FailureNone FailureClass = iota
	FailureInvalidURL
	FailureDNS
	FailureTransport
	FailureHTTPStatus
	FailureEmptyBody
)

// Classify inspects a Result and reports its failure class.
func (r Result) Classify() FailureClass {
	switch {
	case strings.HasPrefix(r.ErrorMessage, "invalid URL"):
		return FailureInvalidURL
	case strings.HasPrefix(r.ErrorMessage, "DNS error"):
		return FailureDNS
	case r.ErrorMessage != "":
		return FailureTransport
	case r.StatusCode < 200 || r.StatusCode >= 300:
		return FailureHTTPStatus
	case len(r.Body) == 0:
		return FailureEmptyBody
	default:
		return FailureNone
	}
}

type Client struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
}

func NewClient(userAgent string, timeoutSeconds int) *Client {
	timeout := time.Duration(timeoutSeconds) * time.Second
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

// Fetch retrieves a feed or article body. file:// URLs are read from the
// local filesystem; everything else goes over HTTP with minimal browser-like
// headers. Fetch never returns an error: failures are carried in the Result
// so callers can map them to labels without unwinding.
func (c *Client) Fetch(ctx context.Context, rawURL string) Result {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Scheme == "" {
		return Result{ErrorMessage: fmt.Sprintf("invalid URL: %s", rawURL)}
	}

	if parsed.Scheme == "file" {
		return c.fetchFile(parsed)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return Result{ErrorMessage: fmt.Sprintf("invalid URL: unsupported scheme %q", parsed.Scheme)}
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", parsed.String(), nil)
	if err != nil {
		return Result{ErrorMessage: fmt.Sprintf("invalid URL: %v", err)}
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Connection", "keep-alive")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) {
			return Result{ErrorMessage: fmt.Sprintf("DNS error: %v", dnsErr)}
		}
		return Result{ErrorMessage: fmt.Sprintf("network error: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{StatusCode: resp.StatusCode, ErrorMessage: fmt.Sprintf("network error: failed to read response body: %v", err)}
	}

	return Result{StatusCode: resp.StatusCode, Body: body}
}

func (c *Client) fetchFile(u *url.URL) Result {
	data, err := os.ReadFile(u.Path)
	if err != nil {
		return Result{ErrorMessage: fmt.Sprintf("network error: %v", err)}
	}
	return Result{StatusCode: http.StatusOK, Body: data}
}
