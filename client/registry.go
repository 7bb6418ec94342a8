package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/clarusnet/bridge_service/entity"
	"github.com/clarusnet/bridge_service/storage"
)

// RegistryClient talks to the registry service's user endpoints.
type RegistryClient struct {
	baseURL string
	http    *http.Client
}

func NewRegistryClient(baseURL string) *RegistryClient {
	return &RegistryClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type userEnvelope struct {
	User  *entity.User `json:"user"`
	Error string       `json:"error"`
}

// GetUser looks a user up by EVM address. Returns storage.ErrNotFound on a
// 404 so callers can fall through to creation.
func (c *RegistryClient) GetUser(ctx context.Context, evmAddress string) (*entity.User, error) {
	u := c.baseURL + "/user?evmAddress=" + url.QueryEscape(evmAddress)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req, http.StatusOK)
}

// CreateUser provisions a user record for the address. The endpoint is
// idempotent: both 200 (already existed) and 201 (created) succeed.
func (c *RegistryClient) CreateUser(ctx context.Context, evmAddress, bitcoinAddress string) (*entity.User, error) {
	body, err := json.Marshal(map[string]string{
		"evmAddress":     evmAddress,
		"bitcoinAddress": bitcoinAddress,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/user", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, http.StatusOK, http.StatusCreated)
}

func (c *RegistryClient) do(req *http.Request, okStatuses ...int) (*entity.User, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env userEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("registry returned status %d with unreadable body", resp.StatusCode)
	}

	for _, ok := range okStatuses {
		if resp.StatusCode == ok {
			if env.User == nil {
				return nil, fmt.Errorf("registry returned status %d without a user", resp.StatusCode)
			}
			return env.User, nil
		}
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, storage.ErrNotFound
	}
	if env.Error != "" {
		return nil, fmt.Errorf("registry error (status %d): %s", resp.StatusCode, env.Error)
	}
	return nil, fmt.Errorf("registry returned unexpected status %d", resp.StatusCode)
}
