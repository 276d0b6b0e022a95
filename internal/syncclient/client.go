// Package syncclient talks to the menu endpoint from the admin side: push a
// batch with the connection key, fetch what the storefront sees.
package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sweetyshop/internal/menu"
)

const menuPath = "/api/menu"

type Client struct {
	BaseURL string
	Key     string
	HTTP    *http.Client
}

func New(baseURL, key string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		Key:     strings.TrimSpace(key),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// PushResult mirrors the server's success body.
type PushResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Action  string `json:"action"`
	Applied int    `json:"applied"`
	Total   int    `json:"total"`
	SyncID  string `json:"syncId"`
}

// Error is a non-2xx answer from the server.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("menu server: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("menu server: %d: %s", e.Status, e.Message)
}

// Push sends doc to the server. action may be "init", "append" or empty to
// let the server infer it.
func (c *Client) Push(ctx context.Context, doc menu.Document, action string) (PushResult, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return PushResult{}, err
	}

	target := c.BaseURL + menuPath
	if action != "" {
		target += "?action=" + url.QueryEscape(action)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return PushResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Key)

	var out PushResult
	if err := c.do(req, &out); err != nil {
		return PushResult{}, err
	}
	return out, nil
}

// Fetch returns the document currently served to the storefront.
func (c *Client) Fetch(ctx context.Context) (menu.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+menuPath, nil)
	if err != nil {
		return menu.Document{}, err
	}
	req.Header.Set("Accept", "application/json")

	var doc menu.Document
	if err := c.do(req, &doc); err != nil {
		return menu.Document{}, err
	}
	return doc, nil
}

func (c *Client) do(req *http.Request, out any) error {
	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	res, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, 64<<20))
	if err != nil {
		return err
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		var env struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		_ = json.Unmarshal(data, &env)
		msg := strings.TrimSpace(env.Error)
		if msg == "" {
			msg = strings.TrimSpace(string(data))
		}
		return &Error{Status: res.StatusCode, Code: env.Code, Message: msg}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode menu server response: %w", err)
	}
	return nil
}
