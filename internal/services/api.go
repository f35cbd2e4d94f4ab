// API service for making raw HTTP requests to the catalog
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// APIService provides methods for making raw GET requests against the catalog API.
type APIService struct {
	baseURL     string
	httpClient  *http.Client
	accessToken string
}

// NewAPIService creates a new raw API client for the catalog.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = deezerBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// WithToken returns a copy of the service that sends token as the access_token parameter.
func (a *APIService) WithToken(token string) *APIService {
	c := *a
	c.accessToken = token
	return &c
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// CatalogError returns the embedded Deezer error object, if the response carries one.
func (r *APIResponse) CatalogError() *DeezerError {
	if !r.IsJSON {
		return nil
	}
	var envelope struct {
		Error *DeezerError `json:"error"`
	}
	if err := json.Unmarshal(r.Body, &envelope); err != nil {
		return nil
	}
	return envelope.Error
}

// Get performs a GET request to the specified path and returns the raw response.
//
// path may carry its own query string; params are merged into it.
func (a *APIService) Get(ctx context.Context, path string, params url.Values) (*APIResponse, error) {
	u, err := url.Parse(a.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	if a.accessToken != "" {
		q.Set("access_token", a.accessToken)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	var jsonData any
	if err := json.Unmarshal(body, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}
