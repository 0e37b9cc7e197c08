package gitlab

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2"

	"github.com/Tiliavir/gitlab-todotxt-sync/internal/config"
)

const (
	apiBase       = "api/v4/"
	todosEndpoint = "todos"
	perPage       = 100

	StatePending = "pending"
	StateDone    = "done"
)

// Client is an authenticated GitLab REST API client.
type Client struct {
	httpClient *http.Client
	base       *url.URL
	logger     *slog.Logger
}

// NewClient creates a client for the GitLab instance at host. Requests carry
// the token as a bearer token.
func NewClient(ctx context.Context, host *url.URL, token config.Secret, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	root := *host
	if !strings.HasSuffix(root.Path, "/") {
		root.Path += "/"
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token.Expose(),
		TokenType:   "Bearer",
	})
	return &Client{
		httpClient: oauth2.NewClient(ctx, ts),
		base:       root.ResolveReference(&url.URL{Path: apiBase}),
		logger:     logger,
	}
}

// GetTodos fetches all to-do items in the given state, following pagination.
func (c *Client) GetTodos(ctx context.Context, state string) ([]Todo, error) {
	var all []Todo
	page := "1"
	for page != "" {
		endpoint := c.base.JoinPath(todosEndpoint)
		endpoint.RawQuery = url.Values{
			"state":    {state},
			"per_page": {strconv.Itoa(perPage)},
			"page":     {page},
		}.Encode()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("gitlab API request failed: %w", err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response body: %w", err)
		}
		c.logger.Debug("GET", "url", endpoint.String(), "status", resp.StatusCode, "bytes", len(body))

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("gitlab API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}

		var items []Todo
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("decoding gitlab response: %w", err)
		}

		all = append(all, items...)
		page = resp.Header.Get("X-Next-Page")
	}
	return all, nil
}

func (c *Client) GetPendingTodos(ctx context.Context) ([]Todo, error) {
	return c.GetTodos(ctx, StatePending)
}

func (c *Client) GetDoneTodos(ctx context.Context) ([]Todo, error) {
	return c.GetTodos(ctx, StateDone)
}

// GetAllTodos fetches pending items followed by done items.
func (c *Client) GetAllTodos(ctx context.Context) ([]Todo, error) {
	pending, err := c.GetPendingTodos(ctx)
	if err != nil {
		return nil, err
	}
	done, err := c.GetDoneTodos(ctx)
	if err != nil {
		return nil, err
	}
	return append(pending, done...), nil
}

// FetchForPolicy skips fetching done items when the policy would drop them anyway.
func (c *Client) FetchForPolicy(ctx context.Context, policy config.DonePolicy) ([]Todo, error) {
	if policy == config.PolicyIgnore {
		return c.GetPendingTodos(ctx)
	}
	return c.GetAllTodos(ctx)
}
