package submission

import (
	"context"
	"log/slog"

	"golang.org/x/oauth2"

	"github.com/goliatone/go-airforms/pkg/airtable"
	"github.com/goliatone/go-airforms/pkg/model"
)

// AirtableWriter writes records with the owner's OAuth credentials.
type AirtableWriter struct {
	OAuth   *oauth2.Config
	BaseURL string
	Logger  *slog.Logger
}

// CreateRecord implements RecordWriter.
func (w AirtableWriter) CreateRecord(ctx context.Context, owner model.User, baseID, tableID string, fields map[string]any) (airtable.Record, error) {
	options := []airtable.Option{airtable.WithLogger(w.Logger)}
	if w.BaseURL != "" {
		options = append(options, airtable.WithBaseURL(w.BaseURL))
	}
	client := airtable.ForUser(ctx, w.OAuth, owner, options...)
	return client.CreateRecord(ctx, baseID, tableID, fields)
}
