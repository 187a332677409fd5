// Package apiclient is the HTTP client the CLI uses to talk to the
// marketplace API. It keeps a store.SessionStore in step with the server:
// logins fill it, 401 responses clear it.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"startup_market/internal/explore"
	"startup_market/internal/model"
	"startup_market/internal/store"
	"startup_market/internal/utils"

	"github.com/google/uuid"
)

const (
	DefaultBaseURL       = "http://localhost:8080/api"
	DefaultTimeout       = 10 * time.Second
	IdempotencyKeyHeader = "Idempotency-Key"

	fetchPageSize = 100
)

// Config holds the client settings
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// ConfigFromEnv reads MARKET_API_URL and MARKET_API_TIMEOUT
func ConfigFromEnv() Config {
	return Config{
		BaseURL: utils.GetEnvAsString("MARKET_API_URL", DefaultBaseURL),
		Timeout: utils.GetEnvAsDuration("MARKET_API_TIMEOUT", DefaultTimeout),
	}
}

// Client calls the marketplace API on behalf of one session
type Client struct {
	httpClient *http.Client
	baseURL    string
	session    *store.SessionStore
}

var _ store.ListingSource = (*Client)(nil)

// New creates a Client. If httpClient is nil a client with cfg.Timeout is used.
func New(cfg Config, session *store.SessionStore, httpClient *http.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		session:    session,
	}
}

type request struct {
	method  string
	path    string
	query   url.Values
	body    any
	headers map[string]string
}

// do sends req and decodes a 2xx JSON body into out. Failures come back as
// *store.APIError or wrap store.ErrUnavailable, after passing through the
// session's HandleError.
func (c *Client) do(ctx context.Context, req request, out any) error {
	return c.session.HandleError(c.send(ctx, req, out))
}

func (c *Client) send(ctx context.Context, r request, out any) error {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", r.method, r.path, store.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(data, &payload) != nil || payload.Error == "" {
			payload.Error = strings.TrimSpace(string(data))
		}
		return &store.APIError{Status: resp.StatusCode, Message: payload.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", r.method, r.path, err)
	}
	return nil
}

type authResponse struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

func (c *Client) authenticate(ctx context.Context, req request) (*model.User, error) {
	c.session.SetLoading(true)
	defer c.session.SetLoading(false)

	var resp authResponse
	if err := c.do(ctx, req, &resp); err != nil {
		return nil, err
	}
	c.session.Login(resp.User, resp.Token)
	return &resp.User, nil
}

// Login signs in and stores the session
func (c *Client) Login(ctx context.Context, email, password string) (*model.User, error) {
	return c.authenticate(ctx, request{method: http.MethodPost, path: "/auth/login",
		body: model.LoginRequest{Email: email, Password: password}})
}

// Register creates an account and stores the session
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	return c.authenticate(ctx, request{method: http.MethodPost, path: "/auth/register", body: req})
}

// DemoLogin signs in as the demo buyer or seller
func (c *Client) DemoLogin(ctx context.Context, role string) (*model.User, error) {
	return c.authenticate(ctx, request{method: http.MethodPost, path: "/auth/demo-login",
		query: url.Values{"role": {role}}})
}

// Logout revokes the token server-side and always clears the local session
func (c *Client) Logout(ctx context.Context) error {
	if !c.session.IsAuthenticated() {
		c.session.Logout()
		return nil
	}
	err := c.do(ctx, request{method: http.MethodPost, path: "/auth/logout"}, nil)
	c.session.Logout()
	if errors.Is(err, store.ErrUnauthorized) {
		return nil
	}
	return err
}

// storeUser replaces the session user with the server's copy, keeping the token
func (c *Client) storeUser(user model.User) {
	if s := c.session.State(); s.IsAuthenticated {
		c.session.Login(user, s.Token)
	}
}

// Profile fetches the current user and refreshes the stored copy
func (c *Client) Profile(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, request{method: http.MethodGet, path: "/user/profile"}, &user); err != nil {
		return nil, err
	}
	c.storeUser(user)
	return &user, nil
}

// UpdateProfile sends patch and stores the user the server returns, which
// may differ from the patch (normalized email, ignored fields)
func (c *Client) UpdateProfile(ctx context.Context, patch model.UserPatch) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, request{method: http.MethodPut, path: "/user/profile", body: patch}, &user); err != nil {
		return nil, err
	}
	c.storeUser(user)
	return &user, nil
}

// ChangePassword rotates the signed-in user's password
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	return c.do(ctx, request{method: http.MethodPut, path: "/user/change-password",
		body: model.ChangePasswordRequest{CurrentPassword: current, NewPassword: next}}, nil)
}

// BrowseParams are the query parameters of the public listings endpoint
type BrowseParams struct {
	Filters  model.ListingFilters
	SortBy   model.SortKey
	Page     int
	PageSize int
}

func (p BrowseParams) values() url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("category", p.Filters.Category)
	set("location", p.Filters.Location)
	set("keyword", p.Filters.Keyword)
	set("sort", string(p.SortBy))
	if p.Filters.MinPrice != nil {
		v.Set("min_price", strconv.FormatInt(*p.Filters.MinPrice, 10))
	}
	if p.Filters.MaxPrice != nil {
		v.Set("max_price", strconv.FormatInt(*p.Filters.MaxPrice, 10))
	}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(p.PageSize))
	}
	return v
}

// Browse runs an explore query on the server
func (c *Client) Browse(ctx context.Context, p BrowseParams) (*explore.Page, error) {
	var page explore.Page
	if err := c.do(ctx, request{method: http.MethodGet, path: "/public/listings", query: p.values()}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// FetchListings downloads every approved listing, page by page
func (c *Client) FetchListings(ctx context.Context) ([]model.Listing, error) {
	var all []model.Listing
	for pageNum := 1; ; pageNum++ {
		page, err := c.Browse(ctx, BrowseParams{SortBy: model.SortOldest, Page: pageNum, PageSize: fetchPageSize})
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		if pageNum >= page.TotalPages || len(page.Items) == 0 {
			return all, nil
		}
	}
}

// Listing fetches one approved listing with its metrics
func (c *Client) Listing(ctx context.Context, id int64) (*model.ListingDetail, error) {
	var detail model.ListingDetail
	path := "/public/listings/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, request{method: http.MethodGet, path: path}, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Stats fetches the public market summary
func (c *Client) Stats(ctx context.Context) (*model.MarketStats, error) {
	var stats model.MarketStats
	if err := c.do(ctx, request{method: http.MethodGet, path: "/public/stats"}, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SubmitOffer places an offer under a fresh idempotency key. A failure that
// never reached a verdict is retried once with the same key, so the server
// records at most one offer.
func (c *Client) SubmitOffer(ctx context.Context, req model.CreateOfferRequest) (*model.Offer, error) {
	r := request{
		method:  http.MethodPost,
		path:    "/buyer/offers",
		body:    req,
		headers: map[string]string{IdempotencyKeyHeader: uuid.NewString()},
	}

	var offer model.Offer
	err := c.do(ctx, r, &offer)
	if errors.Is(err, store.ErrUnavailable) && ctx.Err() == nil {
		err = c.do(ctx, r, &offer)
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// MyOffers lists the buyer's offers, optionally by status
func (c *Client) MyOffers(ctx context.Context, status string) ([]model.Offer, error) {
	var offers []model.Offer
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/buyer/offers", query: q}, &offers); err != nil {
		return nil, err
	}
	return offers, nil
}
