package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rickgao/bpx-grid/internal/retry"
)

// signedDo performs one signed request attempt. Signing happens here, per
// attempt, so every retry carries a fresh timestamp. params is the exact
// parameter set covered by the signature; for GET requests it also becomes
// the query string, for POST/DELETE the JSON body is marshaled from body
// (which may carry typed fields, e.g. a numeric clientId).
func (c *Client) signedDo(ctx context.Context, method, path, instruction string, params map[string]string, body any) (int, []byte, error) {
	if c.creds == nil {
		return 0, nil, retry.Permanent(fmt.Errorf("%s requires credentials", instruction))
	}

	headers, err := c.creds.Sign(instruction, params)
	if err != nil {
		return 0, nil, retry.Permanent(fmt.Errorf("sign request: %w", err))
	}

	fullURL := c.baseURL + path
	var reqBody io.Reader
	if method == http.MethodGet {
		if len(params) > 0 {
			query := url.Values{}
			for k, v := range params {
				query.Set(k, v)
			}
			fullURL += "?" + query.Encode()
		}
	} else if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, retry.Permanent(fmt.Errorf("marshal request body: %w", err))
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header = headers

	return c.do(req)
}

// publicGet performs one unsigned GET request.
func (c *Client) publicGet(ctx context.Context, path string, query url.Values) (int, []byte, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req)
}

// do executes the request and reads the full response body. Transport
// errors (connection failures, protocol errors) surface as err and are
// retried identically to non-2xx responses by the callers.
func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}

	return resp.StatusCode, respBody, nil
}

// decodeJSON unmarshals a response body with a consistent error wrap.
func decodeJSON(body []byte, result any) error {
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
