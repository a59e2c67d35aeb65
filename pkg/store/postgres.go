package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/goliatone/go-airforms/pkg/model"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id               TEXT PRIMARY KEY,
	airtable_user_id TEXT NOT NULL UNIQUE,
	email            TEXT NOT NULL DEFAULT '',
	name             TEXT NOT NULL DEFAULT '',
	access_token     TEXT NOT NULL,
	refresh_token    TEXT NOT NULL DEFAULT '',
	token_type       TEXT NOT NULL DEFAULT '',
	scope            TEXT NOT NULL DEFAULT '',
	token_expires_at TIMESTAMPTZ NULL,
	created_at       TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS forms (
	id         TEXT PRIMARY KEY,
	owner_id   TEXT NOT NULL,
	name       TEXT NOT NULL,
	base_id    TEXT NOT NULL,
	base_name  TEXT NOT NULL DEFAULT '',
	table_id   TEXT NOT NULL,
	table_name TEXT NOT NULL DEFAULT '',
	fields     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS forms_owner_created_idx ON forms (owner_id, created_at DESC);
CREATE TABLE IF NOT EXISTS submissions (
	id         TEXT PRIMARY KEY,
	form_id    TEXT NOT NULL REFERENCES forms (id) ON DELETE CASCADE,
	record_id  TEXT NOT NULL,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS submissions_form_idx ON submissions (form_id, created_at);
`

// Postgres stores documents in PostgreSQL through the pgx database/sql
// driver. Field lists and answer payloads are kept as JSONB.
type Postgres struct {
	db  *sql.DB
	now func() time.Time

	migrate  func(context.Context) error
	schemaMu sync.Mutex
	schemaOK bool
}

var _ Store = (*Postgres)(nil)

// OpenPostgres connects to dsn and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("store: open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping postgres: %w", err)
	}
	return NewPostgres(db), nil
}

// NewPostgres wraps an existing database handle.
func NewPostgres(db *sql.DB) *Postgres {
	p := &Postgres{db: db, now: time.Now}
	p.migrate = func(ctx context.Context) error {
		_, err := p.db.ExecContext(ctx, schemaSQL)
		return err
	}
	return p
}

// EnsureSchema creates the tables once per process. The request context's
// cancellation is not inherited, and a failed attempt is retried by the next
// call.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	p.schemaMu.Lock()
	defer p.schemaMu.Unlock()
	if p.schemaOK {
		return nil
	}
	if err := p.migrate(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("store: ensure schema: %w", err)
	}
	p.schemaOK = true
	return nil
}

func (p *Postgres) CreateForm(ctx context.Context, form model.Form) (model.Form, error) {
	if err := p.EnsureSchema(ctx); err != nil {
		return model.Form{}, err
	}
	if form.ID == "" {
		form.ID = uuid.NewString()
	}
	fields, err := encodeJSON(form.Fields)
	if err != nil {
		return model.Form{}, err
	}
	now := p.now().UTC()
	form.CreatedAt, form.UpdatedAt = now, now

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO forms (id, owner_id, name, base_id, base_name, table_id, table_name, fields, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, $10)`,
		form.ID, form.OwnerID, form.Name, form.BaseID, form.BaseName, form.TableID, form.TableName, fields, now, now)
	if err != nil {
		return model.Form{}, fmt.Errorf("store: insert form: %w", err)
	}
	return form, nil
}

const formColumns = `id, owner_id, name, base_id, base_name, table_id, table_name, fields, created_at, updated_at`

func (p *Postgres) GetForm(ctx context.Context, id string) (model.Form, error) {
	if err := p.EnsureSchema(ctx); err != nil {
		return model.Form{}, err
	}
	row := p.db.QueryRowContext(ctx, `SELECT `+formColumns+` FROM forms WHERE id = $1`, id)
	form, err := scanForm(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Form{}, ErrNotFound
	}
	return form, err
}

func (p *Postgres) ListForms(ctx context.Context, ownerID string) ([]model.Form, error) {
	if err := p.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := p.db.QueryContext(ctx, `SELECT `+formColumns+` FROM forms WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("store: list forms: %w", err)
	}
	defer rows.Close()

	out := make([]model.Form, 0)
	for rows.Next() {
		form, err := scanForm(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, form)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list forms: %w", err)
	}
	return out, nil
}

func (p *Postgres) UpdateForm(ctx context.Context, form model.Form) (model.Form, error) {
	if err := p.EnsureSchema(ctx); err != nil {
		return model.Form{}, err
	}
	fields, err := encodeJSON(form.Fields)
	if err != nil {
		return model.Form{}, err
	}
	form.UpdatedAt = p.now().UTC()

	row := p.db.QueryRowContext(ctx, `
		UPDATE forms SET name = $3, base_id = $4, base_name = $5, table_id = $6, table_name = $7, fields = $8::jsonb, updated_at = $9
		WHERE id = $1 AND owner_id = $2
		RETURNING created_at`,
		form.ID, form.OwnerID, form.Name, form.BaseID, form.BaseName, form.TableID, form.TableName, fields, form.UpdatedAt)
	if err := row.Scan(&form.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Form{}, ErrNotFound
		}
		return model.Form{}, fmt.Errorf("store: update form: %w", err)
	}
	return form, nil
}

func (p *Postgres) DeleteForm(ctx context.Context, ownerID, id string) error {
	if err := p.EnsureSchema(ctx); err != nil {
		return err
	}
	res, err := p.db.ExecContext(ctx, `DELETE FROM forms WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("store: delete form: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete form: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) CreateSubmission(ctx context.Context, submission model.Submission) (model.Submission, error) {
	if err := p.EnsureSchema(ctx); err != nil {
		return model.Submission{}, err
	}
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	payload, err := encodeJSON(submission.Payload)
	if err != nil {
		return model.Submission{}, err
	}
	submission.CreatedAt = p.now().UTC()

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO submissions (id, form_id, record_id, payload, created_at)
		VALUES ($1, $2, $3, $4::jsonb, $5)`,
		submission.ID, submission.FormID, submission.RecordID, payload, submission.CreatedAt)
	if err != nil {
		return model.Submission{}, fmt.Errorf("store: insert submission: %w", err)
	}
	return submission, nil
}

func (p *Postgres) ListSubmissions(ctx context.Context, formID string) ([]model.Submission, error) {
	if err := p.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := p.db.QueryContext(ctx, `SELECT id, form_id, record_id, payload, created_at FROM submissions WHERE form_id = $1 ORDER BY created_at, id`, formID)
	if err != nil {
		return nil, fmt.Errorf("store: list submissions: %w", err)
	}
	defer rows.Close()

	out := make([]model.Submission, 0)
	for rows.Next() {
		var (
			item    model.Submission
			payload []byte
		)
		if err := rows.Scan(&item.ID, &item.FormID, &item.RecordID, &payload, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan submission: %w", err)
		}
		if err := json.Unmarshal(payload, &item.Payload); err != nil {
			return nil, fmt.Errorf("store: decode submission payload: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list submissions: %w", err)
	}
	return out, nil
}

func (p *Postgres) UpsertUser(ctx context.Context, user model.User) (model.User, error) {
	if err := p.EnsureSchema(ctx); err != nil {
		return model.User{}, err
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := p.now().UTC()
	expires := sql.NullTime{Time: user.TokenExpiresAt, Valid: !user.TokenExpiresAt.IsZero()}

	row := p.db.QueryRowContext(ctx, `
		INSERT INTO users (id, airtable_user_id, email, name, access_token, refresh_token, token_type, scope, token_expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT (airtable_user_id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_type = EXCLUDED.token_type,
			scope = EXCLUDED.scope,
			token_expires_at = EXCLUDED.token_expires_at,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at`,
		user.ID, user.AirtableUserID, user.Email, user.Name, user.AccessToken, user.RefreshToken, user.TokenType, user.Scope, expires, now)
	if err := row.Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return model.User{}, fmt.Errorf("store: upsert user: %w", err)
	}
	return user, nil
}

func (p *Postgres) GetUser(ctx context.Context, id string) (model.User, error) {
	if err := p.EnsureSchema(ctx); err != nil {
		return model.User{}, err
	}
	var (
		user    model.User
		expires sql.NullTime
	)
	row := p.db.QueryRowContext(ctx, `
		SELECT id, airtable_user_id, email, name, access_token, refresh_token, token_type, scope, token_expires_at, created_at, updated_at
		FROM users WHERE id = $1`, id)
	err := row.Scan(&user.ID, &user.AirtableUserID, &user.Email, &user.Name, &user.AccessToken, &user.RefreshToken,
		&user.TokenType, &user.Scope, &expires, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("store: get user: %w", err)
	}
	if expires.Valid {
		user.TokenExpiresAt = expires.Time
	}
	return user, nil
}

// Close releases the database handle.
func (p *Postgres) Close() error {
	return p.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanForm(row rowScanner) (model.Form, error) {
	var (
		form   model.Form
		fields []byte
	)
	err := row.Scan(&form.ID, &form.OwnerID, &form.Name, &form.BaseID, &form.BaseName, &form.TableID, &form.TableName,
		&fields, &form.CreatedAt, &form.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Form{}, err
		}
		return model.Form{}, fmt.Errorf("store: scan form: %w", err)
	}
	if err := json.Unmarshal(fields, &form.Fields); err != nil {
		return model.Form{}, fmt.Errorf("store: decode form fields: %w", err)
	}
	return form, nil
}

func encodeJSON(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("store: encode json: %w", err)
	}
	return string(data), nil
}
