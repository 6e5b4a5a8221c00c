// Package api is the typed client for the He-Ara REST service that owns
// products and leads.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	productsEndpoint = "/api/products"
	leadsEndpoint    = "/api/leads"

	// IdempotencyHeader carries the per-submission key on lead creation.
	IdempotencyHeader = "Idempotency-Key"
)

// ErrInvalidID is returned before any request is sent when an item id is
// blank or a dot segment.
var ErrInvalidID = errors.New("api: invalid id")

// HTTPClient matches the subset of http.Client used by Client.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Client talks to the products and leads endpoints.
type Client struct {
	base   *url.URL
	client HTTPClient
	newKey func() string
}

// Option customises a Client.
type Option func(*Client)

// WithIdempotencyKeys overrides the generator used for Idempotency-Key headers.
func WithIdempotencyKeys(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newKey = fn
		}
	}
}

// NewClient constructs a Client rooted at baseURL (scheme and host of the service).
func NewClient(baseURL string, client HTTPClient, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("api: base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("api: parse base URL: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	c := &Client{
		base:   parsed,
		client: client,
		newKey: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListProducts returns the product catalogue.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.getJSON(ctx, productsEndpoint, nil, &products, "list products"); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct returns a single product by id.
func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	endpoint, err := itemPath(productsEndpoint, id)
	if err != nil {
		return nil, err
	}
	var product Product
	if err := c.getJSON(ctx, endpoint, nil, &product, "get product"); err != nil {
		return nil, err
	}
	return &product, nil
}

// ListLeads returns leads matching filter in the order the service sends them.
func (c *Client) ListLeads(ctx context.Context, filter LeadFilter) ([]Lead, error) {
	query := url.Values{}
	if filter.Status != "" {
		query.Set("status", string(filter.Status))
	}
	if !filter.Since.IsZero() {
		query.Set("start_date", filter.Since.UTC().Format(time.RFC3339))
	}
	if !filter.Until.IsZero() {
		query.Set("end_date", filter.Until.UTC().Format(time.RFC3339))
	}
	var leads []Lead
	if err := c.getJSON(ctx, leadsEndpoint, query, &leads, "list leads"); err != nil {
		return nil, err
	}
	return leads, nil
}

// GetLead returns a single lead by id.
func (c *Client) GetLead(ctx context.Context, id string) (*Lead, error) {
	endpoint, err := itemPath(leadsEndpoint, id)
	if err != nil {
		return nil, err
	}
	var lead Lead
	if err := c.getJSON(ctx, endpoint, nil, &lead, "get lead"); err != nil {
		return nil, err
	}
	return &lead, nil
}

// CreateLead submits a new lead. Source and status default to the landing page values.
func (c *Client) CreateLead(ctx context.Context, in NewLead) (*Lead, error) {
	if in.Source == "" {
		in.Source = DefaultSource
	}
	if in.Status == "" {
		in.Status = StatusNew
	}
	req, err := c.newJSONRequest(ctx, http.MethodPost, leadsEndpoint, in)
	if err != nil {
		return nil, err
	}
	req.Header.Set(IdempotencyHeader, c.newKey())

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, errorFromResponse(resp)
	}

	var lead Lead
	if err := json.NewDecoder(resp.Body).Decode(&lead); err != nil {
		return nil, fmt.Errorf("api: decode created lead: %w", err)
	}
	return &lead, nil
}

// UpdateLead applies a partial update. The returned lead is nil when the
// service acknowledges without a body.
func (c *Client) UpdateLead(ctx context.Context, id string, update LeadUpdate) (*Lead, error) {
	endpoint, err := itemPath(leadsEndpoint, id)
	if err != nil {
		return nil, err
	}
	req, err := c.newJSONRequest(ctx, http.MethodPatch, endpoint, update)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errorFromResponse(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("api: read updated lead: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	var lead Lead
	if err := json.Unmarshal(body, &lead); err != nil {
		return nil, fmt.Errorf("api: decode updated lead: %w", err)
	}
	return &lead, nil
}

// UpdateLeadStatus sends {status} for the lead as-is.
func (c *Client) UpdateLeadStatus(ctx context.Context, id string, status LeadStatus) (*Lead, error) {
	return c.UpdateLead(ctx, id, LeadUpdate{Status: &status})
}

func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values, out any, op string) error {
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if len(query) > 0 {
		req.URL.RawQuery = query.Encode()
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errorFromResponse(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode %s: %w", op, err)
	}
	return nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: request failed: %w", err)
	}
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.resolve(endpoint), body)
	if err != nil {
		return nil, fmt.Errorf("api: build request: %w", err)
	}
	return req, nil
}

func (c *Client) newJSONRequest(ctx context.Context, method, endpoint string, payload any) (*http.Request, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, fmt.Errorf("api: encode payload: %w", err)
	}
	req, err := c.newRequest(ctx, method, endpoint, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// resolve joins an already escaped endpoint onto the base URL.
func (c *Client) resolve(endpoint string) string {
	trimmed := strings.TrimPrefix(endpoint, "/")
	ref := &url.URL{Path: trimmed, RawPath: trimmed}
	if unescaped, err := url.PathUnescape(trimmed); err == nil {
		ref.Path = unescaped
	}
	return c.base.ResolveReference(ref).String()
}

// itemPath returns the escaped path of one member of collection. The id is
// always a single segment.
func itemPath(collection, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || id == "." || id == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return collection + "/" + url.PathEscape(id), nil
}
