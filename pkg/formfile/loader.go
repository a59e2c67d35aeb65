package formfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-airforms/pkg/model"
)

const maxDocumentBytes = 4 << 20

// Option configures a Loader.
type Option func(*Loader)

// WithFileSystem enables SourceKindFS sources.
func WithFileSystem(files fs.FS) Option {
	return func(l *Loader) {
		l.fs = files
	}
}

// WithHTTPClient enables URL sources using client.
func WithHTTPClient(client *http.Client) Option {
	return func(l *Loader) {
		l.http = client
	}
}

// WithRequestTimeout caps remote fetches.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(l *Loader) {
		l.timeout = timeout
	}
}

// Loader fetches and decodes documents. URL sources are disabled unless an
// HTTP client is configured.
type Loader struct {
	fs      fs.FS
	http    *http.Client
	timeout time.Duration
}

// New builds a Loader.
func New(options ...Option) *Loader {
	l := &Loader{}
	for _, opt := range options {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Read returns the raw document bytes.
func (l *Loader) Read(ctx context.Context, src Source) ([]byte, error) {
	if src == nil {
		return nil, errors.New("formfile: source is nil")
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case SourceKindFile:
		data, err = loadFile(ctx, src.Location())
	case SourceKindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location())
	case SourceKindURL:
		if l.http == nil {
			return nil, errors.New("formfile: http support disabled")
		}
		data, err = loadHTTP(ctx, l.http, src.Location(), l.timeout)
	default:
		err = fmt.Errorf("formfile: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return nil, fmt.Errorf("formfile: read %s: %w", src.Location(), err)
	}
	return data, nil
}

// LoadForm reads and decodes a form document.
func (l *Loader) LoadForm(ctx context.Context, src Source) (model.Form, error) {
	data, err := l.Read(ctx, src)
	if err != nil {
		return model.Form{}, err
	}
	return DecodeForm(data)
}

// LoadAnswers reads and decodes an answer set.
func (l *Loader) LoadAnswers(ctx context.Context, src Source) (model.Answers, error) {
	data, err := l.Read(ctx, src)
	if err != nil {
		return nil, err
	}
	return DecodeAnswers(data)
}

// DecodeForm decodes a JSON or YAML form document. Fields are returned in
// order with dense indexes.
func DecodeForm(data []byte) (model.Form, error) {
	var form model.Form
	if err := decode(data, &form); err != nil {
		return model.Form{}, fmt.Errorf("formfile: decode form: %w", err)
	}
	form.Fields = model.NormalizeOrder(form.Fields)
	return form, nil
}

// DecodeAnswers decodes an answer set. Both a bare map and an object with an
// "answers" key are accepted.
func DecodeAnswers(data []byte) (model.Answers, error) {
	var wrapped struct {
		Answers model.Answers `json:"answers" yaml:"answers"`
	}
	if err := decode(data, &wrapped); err == nil && wrapped.Answers != nil {
		return wrapped.Answers, nil
	}

	var answers model.Answers
	if err := decode(data, &answers); err != nil {
		return nil, fmt.Errorf("formfile: decode answers: %w", err)
	}
	if answers == nil {
		answers = model.Answers{}
	}
	return answers, nil
}

// decode uses encoding/json for JSON documents so timestamps and strings keep
// their JSON meaning, and yaml.v3 for everything else.
func decode(data []byte, out any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return json.Unmarshal(trimmed, out)
	}
	return yaml.Unmarshal(trimmed, out)
}
