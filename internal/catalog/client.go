// Package catalog is a client for the remote dog adoption catalog service.
// The service owns the session (an http-only cookie issued on login), the
// search, and the matching; this package only shapes requests and responses.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"dogfinder/internal/components/assert"
	"dogfinder/internal/components/chrono"
	"dogfinder/internal/components/telemetry"

	"github.com/go-resty/resty/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/net/publicsuffix"
)

const DefaultBaseUrl = "https://frontend-take-home-service.fetch.com"

// MaxBatchSize is the most ids the service accepts in one detail request.
// Match requests are not limited.
const MaxBatchSize = 100

const (
	report_client_login            = "client.login"
	report_client_logout           = "client.logout"
	report_client_breeds           = "client.breeds"
	report_client_search_dogs      = "client.search-dogs"
	report_client_dogs             = "client.dogs"
	report_client_search_locations = "client.search-locations"
	report_client_match            = "client.match"
	report_client_one_per_breed    = "client.one-per-breed"
	report_client_cache            = "client.detail-cache"
)

// ErrUnauthorized is returned for any 401 response. The session is gone and
// the user has to log in again.
var ErrUnauthorized = errors.New("catalog: session is not authorized")

// StatusError is returned for non-2xx responses other than 401.
type StatusError struct {
	Method string
	Url    string
	Status int
	Body   string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("catalog: %s %s: unexpected status %d: %s", e.Method, e.Url, e.Status, e.Body)
}

type ClientOptions struct {
	BaseUrl string
	Timeout time.Duration
	// DetailCacheSize is the amount of dog records kept in memory, 0 disables the cache.
	DetailCacheSize int
	// Clock turns a cookie's Max-Age into an expiry, defaults to the system clock.
	Clock chrono.TimeAPI
}

type Client struct {
	baseUrl *url.URL
	http    *resty.Client
	jarMu   sync.RWMutex
	jar     http.CookieJar
	// expires holds the expiry of every cookie set by the service by name, the
	// jar does not hand it back out.
	expires map[string]time.Time
	clock   chrono.TimeAPI
	details *lru.Cache[string, Dog]
	tel     telemetry.API
}

func newJar() (http.CookieJar, error) {
	return cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
}

func NewClient(opts ClientOptions, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("catalog", tel)

	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}
	if opts.Clock == nil {
		opts.Clock = chrono.NewStandardTime()
	}

	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(opts.BaseUrl)
	httpClient.SetTimeout(opts.Timeout)
	httpClient.SetHeader("user-agent", "dogfinder/1.0")
	jar, err := newJar()
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)

	telemetry.InstrumentResty(httpClient, "dogfinder/catalog/http", tel)

	c := &Client{
		baseUrl: baseUrl,
		http:    httpClient,
		jar:     jar,
		expires: map[string]time.Time{},
		clock:   opts.Clock,
		tel:     tel,
	}
	httpClient.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		c.recordExpiry(res.Cookies())
		return nil
	})
	if opts.DetailCacheSize > 0 {
		c.details, err = lru.New[string, Dog](opts.DetailCacheSize)
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

// recordExpiry remembers when the cookies of a response expire. A cookie
// without Expires or Max-Age lives for the session and has no expiry.
func (c *Client) recordExpiry(cookies []*http.Cookie) {
	if len(cookies) == 0 {
		return
	}
	now := c.clock.Now()

	c.jarMu.Lock()
	defer c.jarMu.Unlock()
	for _, cookie := range cookies {
		switch {
		case cookie.MaxAge > 0:
			c.expires[cookie.Name] = now.Add(time.Duration(cookie.MaxAge) * time.Second)
		case cookie.MaxAge < 0:
			delete(c.expires, cookie.Name)
		case !cookie.Expires.IsZero():
			c.expires[cookie.Name] = cookie.Expires
		default:
			delete(c.expires, cookie.Name)
		}
	}
}

// Cookies returns the session cookies the client currently holds, with the
// expiry the service gave them.
func (c *Client) Cookies() []*http.Cookie {
	c.jarMu.RLock()
	defer c.jarMu.RUnlock()
	cookies := c.jar.Cookies(c.baseUrl)
	for _, cookie := range cookies {
		cookie.Expires = c.expires[cookie.Name]
	}
	return cookies
}

// SetCookies restores session cookies, usually ones saved by an earlier process.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	c.jarMu.Lock()
	defer c.jarMu.Unlock()
	for _, cookie := range cookies {
		if cookie.Expires.IsZero() {
			continue
		}
		c.expires[cookie.Name] = cookie.Expires
	}
	c.jar.SetCookies(c.baseUrl, cookies)
}

func (c *Client) clearCookies() error {
	jar, err := newJar()
	if err != nil {
		return err
	}
	c.jarMu.Lock()
	defer c.jarMu.Unlock()
	c.jar = jar
	c.expires = map[string]time.Time{}
	c.http.SetCookieJar(jar)
	return nil
}

func (c *Client) do(ctx context.Context, reportId, method, path string, query url.Values, body, out any) error {
	req := c.http.R().SetContext(ctx)
	if query != nil {
		req.SetQueryParamsFromValues(query)
	}
	if body != nil {
		serialized, err := json.Marshal(body)
		if err != nil {
			c.tel.ReportBroken(reportId, fmt.Errorf("json marshal: %w", err))
			return err
		}
		req.SetHeader("content-type", "application/json").SetBody(serialized)
	}

	res, err := req.Execute(method, path)
	if err != nil {
		c.tel.ReportBroken(reportId, fmt.Errorf("fetch: %w", err))
		return fmt.Errorf("catalog: %s %s: %w", method, path, err)
	}
	if res.StatusCode() == http.StatusUnauthorized {
		c.tel.ReportWarning(reportId, ErrUnauthorized)
		return ErrUnauthorized
	}
	if res.IsError() {
		err := StatusError{
			Method: method,
			Url:    path,
			Status: res.StatusCode(),
			Body:   res.String(),
		}
		c.tel.ReportBroken(reportId, err)
		return err
	}

	if out == nil {
		return nil
	}
	err = json.Unmarshal(res.Body(), out)
	if err != nil {
		c.tel.ReportBroken(reportId, fmt.Errorf("unmarshal json: %w", err))
		return fmt.Errorf("catalog: %s %s: %w", method, path, err)
	}
	return nil
}
