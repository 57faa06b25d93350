package project

import (
	"context"
	"errors"
)

// DefaultProjectName is used when an upload names no project.
const DefaultProjectName = "Meu Projeto"

var (
	// ErrNotFound is returned when a project or dataset does not exist or is
	// not visible to the requesting owner.
	ErrNotFound = errors.New("not found")
	// ErrExists is returned when creating a project whose name is taken.
	ErrExists = errors.New("already exists")
)

// Store persists projects and their datasets. Every dataset lookup is scoped
// to an owner; a dataset owned by someone else behaves as missing.
type Store interface {
	CreateProject(ctx context.Context, p *Project) error
	ProjectByName(ctx context.Context, ownerID, name string) (*Project, error)
	// DefaultProject returns the owner's oldest project, creating
	// DefaultProjectName when the owner has none.
	DefaultProject(ctx context.Context, ownerID string) (*Project, error)
	ListProjects(ctx context.Context, ownerID string) ([]*Project, error)

	CreateDataset(ctx context.Context, d *Dataset) error
	FindDataset(ctx context.Context, id, ownerID string) (*Dataset, error)
	// ListDatasets returns the owner's datasets newest first. An empty status
	// matches every status.
	ListDatasets(ctx context.Context, ownerID string, status Status) ([]*Dataset, error)
	DeleteDataset(ctx context.Context, id, ownerID string) error
}
