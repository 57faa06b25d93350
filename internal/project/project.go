package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/agroinsight-cli/internal/utils"
)

const (
	projectFileName = "project.json"
)

// Project groups the datasets one owner uploaded.
type Project struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	OwnerID     string              `json:"owner_id"`
	Datasets    map[string]*Dataset `json:"datasets"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`

	// Not serialized: on-disk location of the project.json
	rootDir string `json:"-"`
}

// NewProject constructs an in-memory project. Call Save() to persist.
func NewProject(name, description, ownerID, rootDir string) *Project {
	now := time.Now().UTC()
	return &Project{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(name),
		Description: description,
		OwnerID:     ownerID,
		Datasets:    make(map[string]*Dataset),
		CreatedAt:   now,
		UpdatedAt:   now,
		rootDir:     rootDir,
	}
}

// LoadProject loads a project.json from the provided directory.
func LoadProject(dir string) (*Project, error) {
	path := filepath.Join(dir, projectFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("project not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read project: %w", err)
	}
	var p Project
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse project: %w", err)
	}
	if p.Datasets == nil {
		p.Datasets = make(map[string]*Dataset)
	}
	p.rootDir = dir
	return &p, nil
}

// Save writes project.json using atomic write.
func (p *Project) Save() error {
	if p.rootDir == "" {
		return errors.New("project root directory not set")
	}
	if err := utils.EnsureProjectDir(p.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	p.UpdatedAt = time.Now().UTC()
	data, err := utils.PrettyJSON(p)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(p.rootDir, projectFileName), data)
}

// AddDataset attaches d to the project, assigning an ID and timestamps when
// they are unset.
func (p *Project) AddDataset(d *Dataset) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	d.ProjectID = p.ID
	if p.Datasets == nil {
		p.Datasets = make(map[string]*Dataset)
	}
	p.Datasets[d.ID] = d
	p.UpdatedAt = now
}

func sortNewestFirst(ds []*Dataset) {
	sort.SliceStable(ds, func(i, j int) bool {
		if !ds[i].CreatedAt.Equal(ds[j].CreatedAt) {
			return ds[i].CreatedAt.After(ds[j].CreatedAt)
		}
		return ds[i].ID < ds[j].ID
	})
}
