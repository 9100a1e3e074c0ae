package dataset

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/hr-agent/backend/pkg/logger"
	"github.com/hr-agent/backend/pkg/retry"
)

// ErrUnavailable reports that the backing source is unreachable or returned
// no rows. Terminal for the request; there is no fallback dataset.
var ErrUnavailable = errors.New("hr dataset unavailable")

// Source is one dataset backend. Backend choice is configuration; the
// loader contract does not vary by backend.
type Source interface {
	Load(ctx context.Context) ([]map[string]any, error)
}

// Loader normalizes rows from a Source and caches the last successful load
// for a bounded window so repeated chat turns do not hammer the backend.
type Loader struct {
	source Source
	ttl    time.Duration

	mu        sync.Mutex
	cached    *Table
	fetchedAt time.Time
}

func NewLoader(source Source, ttl time.Duration) *Loader {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Loader{source: source, ttl: ttl}
}

func (l *Loader) Load(ctx context.Context) (*Table, error) {
	l.mu.Lock()
	if l.cached != nil && time.Since(l.fetchedAt) < l.ttl {
		t := l.cached
		l.mu.Unlock()
		return t, nil
	}
	l.mu.Unlock()

	raw, err := l.source.Load(ctx)
	if err != nil {
		logger.Warn("Dataset load failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	table := Normalize(raw)
	if table.Empty() {
		return nil, fmt.Errorf("%w: source returned no rows", ErrUnavailable)
	}

	l.mu.Lock()
	l.cached = table
	l.fetchedAt = time.Now()
	l.mu.Unlock()

	logger.Info("Dataset loaded", zap.Int("rows", len(table.Rows)))
	return table, nil
}

// Invalidate drops the cached table so the next Load hits the backend.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.cached = nil
	l.mu.Unlock()
}

// CSVSource reads the employee master from a local delimited file.
type CSVSource struct {
	Path string
}

func (s *CSVSource) Load(ctx context.Context) ([]map[string]any, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	var rows []map[string]any
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}

		row := make(map[string]any, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// SQLSource reads the employee master from a relational table.
type SQLSource struct {
	db    *sql.DB
	table string
}

func NewSQLSource(path, table string) (*SQLSource, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset database: %w", err)
	}
	return &SQLSource{db: db, table: table}, nil
}

func (s *SQLSource) Load(ctx context.Context) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+s.table)
	if err != nil {
		return nil, fmt.Errorf("failed to query dataset table: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]any, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		out = append(out, row)
	}

	return out, rows.Err()
}

func (s *SQLSource) Close() error {
	return s.db.Close()
}

// RESTSource reads the employee master from an HTTP endpoint returning a
// JSON array of row objects (Supabase-style REST).
type RESTSource struct {
	url         string
	apiKey      string
	httpClient  *http.Client
	retryConfig retry.Config
}

func NewRESTSource(url, apiKey string, timeout time.Duration) *RESTSource {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	cfg := retry.DefaultConfig()
	cfg.Logger = logger.GetLogger()

	return &RESTSource{
		url:         url,
		apiKey:      apiKey,
		httpClient:  &http.Client{Timeout: timeout},
		retryConfig: cfg,
	}
}

func (s *RESTSource) Load(ctx context.Context) ([]map[string]any, error) {
	return retry.DoWithResult(ctx, s.retryConfig, func() ([]map[string]any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		if s.apiKey != "" {
			req.Header.Set("apikey", s.apiKey)
			req.Header.Set("Authorization", "Bearer "+s.apiKey)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("dataset request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("dataset endpoint returned status %d", resp.StatusCode)
		}

		var rows []map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
			return nil, fmt.Errorf("failed to decode dataset response: %w", err)
		}

		return rows, nil
	})
}
