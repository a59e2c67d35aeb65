package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// DefaultBaseURL is the Airtable REST API root.
const DefaultBaseURL = "https://api.airtable.com/v0"

// ErrTableNotFound is returned when a table id is not part of a base.
var ErrTableNotFound = errors.New("airtable: table not found")

// Option customises a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root (tests, proxies).
func WithBaseURL(raw string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(raw, "/")
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client talks to the Airtable REST API. The supplied http.Client is
// expected to authenticate requests, typically through an oauth2 transport.
type Client struct {
	http    *http.Client
	baseURL string
	logger  *slog.Logger
}

// New builds a Client around an authenticating http.Client.
func New(httpClient *http.Client, options ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		http:    httpClient,
		baseURL: DefaultBaseURL,
		logger:  slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// Bases lists every base the token can access, following pagination.
func (c *Client) Bases(ctx context.Context) ([]Base, error) {
	var bases []Base
	offset := ""
	for {
		path := "/meta/bases"
		if offset != "" {
			path += "?offset=" + url.QueryEscape(offset)
		}
		var page struct {
			Bases  []Base `json:"bases"`
			Offset string `json:"offset"`
		}
		if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
			return nil, err
		}
		bases = append(bases, page.Bases...)
		if page.Offset == "" {
			break
		}
		offset = page.Offset
	}
	c.logger.Debug("airtable bases listed", "count", len(bases))
	return bases, nil
}

// Tables returns the table schemas of a base.
func (c *Client) Tables(ctx context.Context, baseID string) ([]Table, error) {
	if strings.TrimSpace(baseID) == "" {
		return nil, errors.New("airtable: base id is required")
	}
	var payload struct {
		Tables []Table `json:"tables"`
	}
	path := "/meta/bases/" + url.PathEscape(baseID) + "/tables"
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Tables, nil
}

// Fields returns the supported columns of one table.
func (c *Client) Fields(ctx context.Context, baseID, tableID string) ([]Field, error) {
	tables, err := c.Tables(ctx, baseID)
	if err != nil {
		return nil, err
	}
	for _, table := range tables {
		if table.ID == tableID {
			return SupportedFields(table), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTableNotFound, tableID)
}

// CreateRecord writes one record and returns it.
func (c *Client) CreateRecord(ctx context.Context, baseID, tableID string, fields map[string]any) (Record, error) {
	if strings.TrimSpace(baseID) == "" || strings.TrimSpace(tableID) == "" {
		return Record{}, errors.New("airtable: base id and table id are required")
	}
	body := createRecordsRequest{Records: []recordInput{{Fields: fields}}}

	var payload struct {
		Records []Record `json:"records"`
	}
	path := "/" + url.PathEscape(baseID) + "/" + url.PathEscape(tableID)
	if err := c.do(ctx, http.MethodPost, path, body, &payload); err != nil {
		return Record{}, err
	}
	if len(payload.Records) == 0 {
		return Record{}, errors.New("airtable: create record: empty response")
	}
	c.logger.Info("airtable record created", "base", baseID, "table", tableID, "record", payload.Records[0].ID)
	return payload.Records[0], nil
}

type recordInput struct {
	Fields map[string]any `json:"fields"`
}

type createRecordsRequest struct {
	Records []recordInput `json:"records"`
}

// WhoAmI returns the identity behind the token.
func (c *Client) WhoAmI(ctx context.Context) (Identity, error) {
	var identity Identity
	if err := c.do(ctx, http.MethodGet, "/meta/whoami", nil, &identity); err != nil {
		return Identity{}, err
	}
	return identity, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("airtable: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("airtable: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("airtable: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("airtable: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeError(resp.StatusCode, data)
		c.logger.Warn("airtable request failed", "method", method, "path", path, "status", resp.StatusCode, "type", apiErr.Type)
		return apiErr
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("airtable: decode response: %w", err)
	}
	return nil
}

// decodeError handles both `{"error":{"type","message"}}` and
// `{"error":"TYPE"}` bodies.
func decodeError(status int, data []byte) *APIError {
	apiErr := &APIError{Status: status, Type: http.StatusText(status)}
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil || len(envelope.Error) == 0 {
		return apiErr
	}
	var detailed struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &detailed); err == nil {
		if detailed.Type != "" {
			apiErr.Type = detailed.Type
		}
		apiErr.Message = detailed.Message
		return apiErr
	}
	var code string
	if err := json.Unmarshal(envelope.Error, &code); err == nil && code != "" {
		apiErr.Type = code
	}
	return apiErr
}
