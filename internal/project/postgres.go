package project

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	owner_id    TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL,
	UNIQUE (owner_id, name)
);
CREATE TABLE IF NOT EXISTS datasets (
	id         TEXT PRIMARY KEY,
	project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	name       TEXT NOT NULL,
	filename   TEXT NOT NULL,
	status     TEXT NOT NULL,
	data       TEXT NOT NULL,
	metadata   TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS datasets_project_idx ON datasets (project_id, created_at DESC);
`

// PostgresStore persists projects and datasets in PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore wraps an open connection.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres connects to url and applies the schema.
func OpenPostgres(ctx context.Context, url string) (*PostgresStore, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	s := NewPostgresStore(db)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the tables when they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error { return s.db.Close() }

type projectRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	OwnerID     string    `db:"owner_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r projectRow) project() *Project {
	return &Project{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		OwnerID:     r.OwnerID,
		Datasets:    make(map[string]*Dataset),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type datasetRow struct {
	ID        string    `db:"id"`
	ProjectID string    `db:"project_id"`
	Name      string    `db:"name"`
	Filename  string    `db:"filename"`
	Status    string    `db:"status"`
	Data      string    `db:"data"`
	Metadata  string    `db:"metadata"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r datasetRow) dataset() (*Dataset, error) {
	d := &Dataset{
		ID:        r.ID,
		ProjectID: r.ProjectID,
		Name:      r.Name,
		Filename:  r.Filename,
		Status:    Status(r.Status),
		Data:      json.RawMessage(r.Data),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Metadata != "" {
		if err := json.Unmarshal([]byte(r.Metadata), &d.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	return d, nil
}

func (s *PostgresStore) CreateProject(ctx context.Context, p *Project) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO projects (
		id, name, description, owner_id, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.Name, p.Description, p.OwnerID, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("project %q: %w", p.Name, ErrExists)
		}
		return fmt.Errorf("failed to create project: %w", err)
	}
	log.Debug().Str("project", p.Name).Msg("project created")
	return nil
}

func (s *PostgresStore) ProjectByName(ctx context.Context, ownerID, name string) (*Project, error) {
	var row projectRow
	err := s.db.GetContext(ctx, &row, `SELECT id, name, description, owner_id, created_at, updated_at
		FROM projects WHERE owner_id = $1 AND name = $2`, ownerID, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return row.project(), nil
}

func (s *PostgresStore) DefaultProject(ctx context.Context, ownerID string) (*Project, error) {
	ps, err := s.ListProjects(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(ps) > 0 {
		return ps[0], nil
	}
	p := NewProject(DefaultProjectName, "", ownerID, "")
	if err := s.CreateProject(ctx, p); err != nil {
		if errors.Is(err, ErrExists) {
			return s.ProjectByName(ctx, ownerID, DefaultProjectName)
		}
		return nil, err
	}
	return p, nil
}

func (s *PostgresStore) ListProjects(ctx context.Context, ownerID string) ([]*Project, error) {
	var rows []projectRow
	err := s.db.SelectContext(ctx, &rows, `SELECT id, name, description, owner_id, created_at, updated_at
		FROM projects WHERE owner_id = $1 ORDER BY created_at ASC, id ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	out := make([]*Project, len(rows))
	for i, r := range rows {
		out[i] = r.project()
	}
	return out, nil
}

func (s *PostgresStore) CreateDataset(ctx context.Context, d *Dataset) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	metadataJSON, err := json.Marshal(d.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO datasets (
		id, project_id, name, filename, status, data, metadata, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		d.ID, d.ProjectID, d.Name, d.Filename, string(d.Status), string(d.Data), string(metadataJSON), d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return fmt.Errorf("project %s: %w", d.ProjectID, ErrNotFound)
		}
		return fmt.Errorf("failed to create dataset: %w", err)
	}
	log.Debug().Str("dataset", d.ID).Msg("dataset stored")
	return nil
}

const datasetColumns = `d.id, d.project_id, d.name, d.filename, d.status, d.data, d.metadata, d.created_at, d.updated_at`

func (s *PostgresStore) FindDataset(ctx context.Context, id, ownerID string) (*Dataset, error) {
	var row datasetRow
	err := s.db.GetContext(ctx, &row, `SELECT `+datasetColumns+`
		FROM datasets d JOIN projects p ON p.id = d.project_id
		WHERE d.id = $1 AND p.owner_id = $2`, id, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("dataset %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}
	return row.dataset()
}

func (s *PostgresStore) ListDatasets(ctx context.Context, ownerID string, status Status) ([]*Dataset, error) {
	var rows []datasetRow
	err := s.db.SelectContext(ctx, &rows, `SELECT `+datasetColumns+`
		FROM datasets d JOIN projects p ON p.id = d.project_id
		WHERE p.owner_id = $1 AND ($2::text = '' OR d.status = $2::text)
		ORDER BY d.created_at DESC, d.id ASC`, ownerID, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to query datasets: %w", err)
	}
	out := make([]*Dataset, 0, len(rows))
	for _, r := range rows {
		d, err := r.dataset()
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *PostgresStore) DeleteDataset(ctx context.Context, id, ownerID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM datasets d USING projects p
		WHERE d.project_id = p.id AND d.id = $1 AND p.owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("dataset %s: %w", id, ErrNotFound)
	}
	return nil
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*PostgresStore)(nil)
)
