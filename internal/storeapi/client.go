package storeapi

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/five82/shelf/internal/product"
)

// Catalog is the read side of the API. *Client implements it and tests
// substitute fakes.
type Catalog interface {
	Products(ctx context.Context) ([]product.Product, error)
	Product(ctx context.Context, id int) (product.Product, error)
	Categories(ctx context.Context) ([]string, error)
	ProductsInCategory(ctx context.Context, category string) ([]product.Product, error)
}

// Accounts is the auth side of the API.
type Accounts interface {
	Login(ctx context.Context, c Credentials) (string, error)
	CreateUser(ctx context.Context, r Registration) (int, error)
}

var (
	_ Catalog  = (*Client)(nil)
	_ Accounts = (*Client)(nil)
)

// Client talks to the store HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	DefaultBaseURL   = "https://fakestoreapi.com"
	defaultUserAgent = "shelf/0.1"
	requestTimeout   = 10 * time.Second
	maxBodyBytes     = 8 << 20
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the instrumented default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient builds a Client for baseURL. An empty baseURL uses the public
// demo API.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout:   requestTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL is the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Products lists the whole catalog.
func (c *Client) Products(ctx context.Context) ([]product.Product, error) {
	body, err := c.do(ctx, "fetch products", http.MethodGet, "/products", nil)
	if err != nil {
		return nil, err
	}
	return decodeProducts(body)
}

// Product fetches one product. The demo API answers an unknown id with an
// empty 200, which is reported as *product.NotFoundError.
func (c *Client) Product(ctx context.Context, id int) (product.Product, error) {
	body, err := c.do(ctx, "fetch product", http.MethodGet, "/products/"+strconv.Itoa(id), nil)
	if err != nil {
		var netErr *NetworkError
		if errors.As(err, &netErr) && netErr.Status == http.StatusNotFound {
			return product.Product{}, &product.NotFoundError{ID: id}
		}
		return product.Product{}, err
	}
	if empty(body) {
		return product.Product{}, &product.NotFoundError{ID: id}
	}
	return decodeProductBytes(body)
}

// Categories lists category names.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	body, err := c.do(ctx, "fetch categories", http.MethodGet, "/products/categories", nil)
	if err != nil {
		return nil, err
	}
	return decodeStrings(body)
}

// ProductsInCategory lists the products of one category.
func (c *Client) ProductsInCategory(ctx context.Context, category string) ([]product.Product, error) {
	if strings.TrimSpace(category) == "" {
		return nil, errors.New("category required")
	}
	body, err := c.do(ctx, "fetch category", http.MethodGet, "/products/category/"+category, nil)
	if err != nil {
		return nil, err
	}
	return decodeProducts(body)
}

// Login exchanges credentials for an opaque session token.
func (c *Client) Login(ctx context.Context, cred Credentials) (string, error) {
	body, err := c.do(ctx, "login", http.MethodPost, "/auth/login", encodeCredentials(cred))
	if err != nil {
		return "", err
	}
	return decodeToken(body)
}

// CreateUser registers an account and returns its id.
func (c *Client) CreateUser(ctx context.Context, r Registration) (int, error) {
	body, err := c.do(ctx, "register", http.MethodPost, "/users", encodeRegistration(r))
	if err != nil {
		return 0, err
	}
	return decodeUserID(body)
}

func (c *Client) do(ctx context.Context, op, method, path string, payload []byte) ([]byte, error) {
	if c == nil {
		return nil, errors.New("client is nil")
	}
	reqURL := c.baseURL.ResolveReference(&url.URL{Path: path})

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &NetworkError{Op: op, Status: resp.StatusCode}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &NetworkError{Op: op, Err: errors.Wrap(err, "read body")}
	}
	return data, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, errors.Wrapf(err, "parse api url %q", raw)
	}
	if u.Host == "" {
		return nil, errors.Errorf("parse api url %q: missing host", raw)
	}
	u.Path = ""
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
