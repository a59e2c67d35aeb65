package airtable

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-airforms/pkg/model"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(srv.Client(), WithBaseURL(srv.URL), WithLogger(logger))
}

func TestBasesFollowsOffset(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/meta/bases", r.URL.Path)
		if r.URL.Query().Get("offset") == "" {
			_, _ = io.WriteString(w, `{"bases":[{"id":"app1","name":"One"}],"offset":"next"}`)
			return
		}
		_, _ = io.WriteString(w, `{"bases":[{"id":"app2","name":"Two"}]}`)
	}))

	bases, err := client.Bases(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Base{{ID: "app1", Name: "One"}, {ID: "app2", Name: "Two"}}, bases)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFieldsFiltersSupportedTypes(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/meta/bases/appX/tables", r.URL.Path)
		_, _ = io.WriteString(w, `{"tables":[{"id":"tbl1","name":"People","fields":[
			{"id":"fldA","name":"Name","type":"singleLineText"},
			{"id":"fldB","name":"Role","type":"singleSelect","options":{"choices":[{"name":"Developer"},{"name":"Manager"}]}},
			{"id":"fldC","name":"Count","type":"number"},
			{"id":"fldD","name":"Skills","type":"multipleSelects","options":{"choices":[{"name":"Go"}]}},
			{"id":"fldE","name":"CV","type":"multipleAttachments"},
			{"id":"fldF","name":"Notes","type":"multilineText"}
		]}]}`)
	}))

	fields, err := client.Fields(context.Background(), "appX", "tbl1")
	require.NoError(t, err)
	assert.Equal(t, []Field{
		{ID: "fldA", Name: "Name", Type: model.FieldTypeShortText, Options: []string{}},
		{ID: "fldB", Name: "Role", Type: model.FieldTypeSingleSelect, Options: []string{"Developer", "Manager"}},
		{ID: "fldD", Name: "Skills", Type: model.FieldTypeMultiSelect, Options: []string{"Go"}},
		{ID: "fldE", Name: "CV", Type: model.FieldTypeAttachment, Options: []string{}},
		{ID: "fldF", Name: "Notes", Type: model.FieldTypeLongText, Options: []string{}},
	}, fields)

	_, err = client.Fields(context.Background(), "appX", "tblMissing")
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestCreateRecord(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/appX/tbl1", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string][]map[string]map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if assert.Len(t, body["records"], 1) {
			assert.Equal(t, "Developer", body["records"][0]["fields"]["Role"])
		}

		_, _ = io.WriteString(w, `{"records":[{"id":"rec123","createdTime":"2026-01-01T00:00:00.000Z","fields":{"Role":"Developer"}}]}`)
	}))

	record, err := client.CreateRecord(context.Background(), "appX", "tbl1", map[string]any{"Role": "Developer"})
	require.NoError(t, err)
	assert.Equal(t, "rec123", record.ID)
}

func TestAPIErrorDecoding(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/meta/whoami":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":{"type":"AUTHENTICATION_REQUIRED","message":"Authentication required"}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":"NOT_FOUND"}`)
		}
	}))

	_, err := client.WhoAmI(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "AUTHENTICATION_REQUIRED", apiErr.Type)
	assert.Equal(t, "Authentication required", apiErr.Message)

	_, err = client.Tables(context.Background(), "appNope")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "NOT_FOUND", apiErr.Type)
}

func TestOAuthConfig(t *testing.T) {
	t.Parallel()

	cfg := OAuthConfig("client", "secret", "http://localhost:4000/auth/airtable/callback")
	assert.Equal(t, AuthURL, cfg.Endpoint.AuthURL)
	assert.Equal(t, TokenURL, cfg.Endpoint.TokenURL)
	assert.Equal(t, DefaultScopes, cfg.Scopes)
}
