// Package apiclient is the client app's data-fetching layer over the
// ContractPay API. Reads go through the query cache; mutations invalidate
// the affected key prefixes so later reads refetch fresh data.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"contractpay/internal/cache"
	"contractpay/internal/model"
	"contractpay/pkg/circuitbreaker"
)

const (
	contractsKey  = "/api/contracts"
	statsKey      = "/api/stats"
	templatesKey  = "/api/templates"
	paymentsKey   = "/api/payments"
	milestonesKey = "milestones"
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
	cache   cache.Cache
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.Logger

	mu    sync.RWMutex
	token string
}

func New(baseURL string, c cache.Cache, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		cache:   c,
		breaker: circuitbreaker.New(circuitbreaker.DefaultConfig()),
		logger:  logger,
	}
}

// SetToken sets the bearer token sent on subsequent requests. An empty
// token clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	// An error response is still a working upstream, so it must not trip
	// the breaker; only transport failures count.
	var out []byte
	var apiErr *APIError
	err = c.breaker.Execute(func() error {
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			msg := http.StatusText(resp.StatusCode)
			var body struct {
				Error string `json:"error"`
			}
			if json.Unmarshal(data, &body) == nil && body.Error != "" {
				msg = body.Error
			}
			apiErr = &APIError{Status: resp.StatusCode, Message: msg}
			return nil
		}
		out = data
		return nil
	})
	if err == nil && apiErr != nil {
		err = apiErr
	}
	if err != nil {
		c.logger.Warn("api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}
	return out, nil
}

// getCached fetches path into out, serving from the cache when the key is
// still live.
func (c *Client) getCached(ctx context.Context, path string, out any, key ...string) error {
	if data, ok, err := c.cache.Get(ctx, key...); err == nil && ok {
		return json.Unmarshal(data, out)
	}
	data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := c.cache.Set(ctx, data, key...); err != nil {
		c.logger.Warn("failed to cache response", zap.Strings("key", key), zap.Error(err))
	}
	return json.Unmarshal(data, out)
}

// RegisterUserInput mirrors the signup form.
type RegisterUserInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	UserType string `json:"user_type,omitempty"`
}

// RegisterUser creates an account on the API. It does not authenticate the
// client; follow up with LoginUser to obtain a token.
func (c *Client) RegisterUser(ctx context.Context, in RegisterUserInput) (*model.User, error) {
	data, err := c.do(ctx, http.MethodPost, "/register", in)
	if err != nil {
		return nil, err
	}
	var u model.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// LoginUser authenticates against the API and returns the account with its
// bearer token. Callers adopt the token via SetToken.
func (c *Client) LoginUser(ctx context.Context, email, password string) (*model.User, string, error) {
	data, err := c.do(ctx, http.MethodPost, "/login",
		map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, "", err
	}
	var resp struct {
		Token string     `json:"token"`
		User  model.User `json:"user"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, "", err
	}
	return &resp.User, resp.Token, nil
}

func (c *Client) Contracts(ctx context.Context, userID int, userType string) ([]model.Contract, error) {
	var contracts []model.Contract
	path := fmt.Sprintf("/api/contracts?user_id=%d&user_type=%s", userID, userType)
	key := []string{contractsKey, "userId=" + strconv.Itoa(userID), "userType=" + userType}
	if err := c.getCached(ctx, path, &contracts, key...); err != nil {
		return nil, err
	}
	return contracts, nil
}

func (c *Client) Contract(ctx context.Context, id int) (*model.Contract, error) {
	var contract model.Contract
	if err := c.getCached(ctx, fmt.Sprintf("/api/contracts/%d", id), &contract,
		contractsKey, strconv.Itoa(id)); err != nil {
		return nil, err
	}
	return &contract, nil
}

func (c *Client) Milestones(ctx context.Context, contractID int) ([]model.Milestone, error) {
	var milestones []model.Milestone
	if err := c.getCached(ctx, fmt.Sprintf("/api/contracts/%d/milestones", contractID), &milestones,
		contractsKey, strconv.Itoa(contractID), milestonesKey); err != nil {
		return nil, err
	}
	return milestones, nil
}

func (c *Client) Stats(ctx context.Context, userID int) (*model.Stats, error) {
	var stats model.Stats
	if err := c.getCached(ctx, "/api/stats", &stats,
		statsKey, "userId="+strconv.Itoa(userID)); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) Templates(ctx context.Context) ([]model.ContractTemplate, error) {
	var templates []model.ContractTemplate
	if err := c.getCached(ctx, "/api/templates", &templates, templatesKey); err != nil {
		return nil, err
	}
	return templates, nil
}

// Payments is the payments page payload: milestones bucketed by how close
// to payout they are.
type Payments struct {
	Pending   []model.Milestone `json:"pending"`
	Upcoming  []model.Milestone `json:"upcoming"`
	Completed []model.Milestone `json:"completed"`
}

func (c *Client) Payments(ctx context.Context, userID int) (*Payments, error) {
	var payments Payments
	if err := c.getCached(ctx, "/api/payments", &payments,
		paymentsKey, "userId="+strconv.Itoa(userID)); err != nil {
		return nil, err
	}
	return &payments, nil
}

// CreateContractInput mirrors the new-contract form.
type CreateContractInput struct {
	Title              string  `json:"title"`
	Description        string  `json:"description"`
	ClientID           int     `json:"client_id"`
	FreelancerID       int     `json:"freelancer_id"`
	TotalAmount        float64 `json:"total_amount"`
	ContractType       string  `json:"contract_type"`
	StartDate          string  `json:"start_date"`
	EndDate            string  `json:"end_date"`
	TermsAndConditions string  `json:"terms_and_conditions"`
}

func (c *Client) CreateContract(ctx context.Context, in CreateContractInput) (*model.Contract, error) {
	data, err := c.do(ctx, http.MethodPost, "/api/contracts", in)
	if err != nil {
		return nil, err
	}
	var contract model.Contract
	if err := json.Unmarshal(data, &contract); err != nil {
		return nil, err
	}
	c.invalidate(ctx, []string{contractsKey})
	return &contract, nil
}

func (c *Client) UpdateContractStatus(ctx context.Context, id int, status model.ContractStatus) (*model.Contract, error) {
	data, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/contracts/%d/status", id),
		map[string]any{"status": status})
	if err != nil {
		return nil, err
	}
	var contract model.Contract
	if err := json.Unmarshal(data, &contract); err != nil {
		return nil, err
	}
	c.invalidate(ctx, []string{contractsKey})
	c.invalidate(ctx, []string{contractsKey, strconv.Itoa(id)})
	return &contract, nil
}

// CreateMilestoneInput mirrors the milestone form.
type CreateMilestoneInput struct {
	ContractID  int     `json:"contract_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	DueDate     string  `json:"due_date"`
}

func (c *Client) CreateMilestone(ctx context.Context, in CreateMilestoneInput) (*model.Milestone, error) {
	data, err := c.do(ctx, http.MethodPost, "/api/milestones", in)
	if err != nil {
		return nil, err
	}
	var m model.Milestone
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	c.invalidate(ctx, []string{contractsKey, strconv.Itoa(m.ContractID), milestonesKey})
	return &m, nil
}

func (c *Client) UpdateMilestoneStatus(ctx context.Context, id int, status model.MilestoneStatus) (*model.Milestone, error) {
	data, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/milestones/%d/status", id),
		map[string]any{"status": status})
	if err != nil {
		return nil, err
	}
	var m model.Milestone
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	c.invalidate(ctx, []string{contractsKey, strconv.Itoa(m.ContractID), milestonesKey})
	return &m, nil
}

func (c *Client) CompleteMilestone(ctx context.Context, id int) (*model.Milestone, error) {
	data, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/milestones/%d/complete", id), nil)
	if err != nil {
		return nil, err
	}
	var m model.Milestone
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	c.invalidate(ctx, []string{contractsKey, strconv.Itoa(m.ContractID), milestonesKey})
	c.invalidate(ctx, []string{statsKey})
	return &m, nil
}

func (c *Client) invalidate(ctx context.Context, key []string) {
	if err := c.cache.Invalidate(ctx, key...); err != nil {
		c.logger.Warn("cache invalidation failed", zap.Strings("key", key), zap.Error(err))
	}
}
