package project

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/rs/zerolog/log"
	"github.com/stoewer/go-strcase"
)

// FileStore keeps one directory per project under root, laid out as
// <root>/<owner>/<project-slug>/project.json.
type FileStore struct {
	root string
	mu   sync.Mutex
}

// NewFileStore returns a store rooted at dir. The directory is created lazily.
func NewFileStore(dir string) *FileStore {
	return &FileStore{root: dir}
}

// Root returns the directory the store writes into.
func (s *FileStore) Root() string { return s.root }

func (s *FileStore) ownerDir(ownerID string) string {
	return filepath.Join(s.root, slug(ownerID))
}

func (s *FileStore) CreateProject(_ context.Context, p *Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, err := s.loadOwner(p.OwnerID)
	if err != nil {
		return err
	}
	for _, e := range existing {
		if e.Name == p.Name {
			return fmt.Errorf("project %q: %w", p.Name, ErrExists)
		}
	}
	short := p.ID
	if len(short) > 8 {
		short = short[:8]
	}
	p.rootDir = filepath.Join(s.ownerDir(p.OwnerID), slug(p.Name)+"-"+short)
	if err := p.Save(); err != nil {
		return fmt.Errorf("save project %q: %w", p.Name, err)
	}
	log.Debug().Str("project", p.Name).Str("dir", p.rootDir).Msg("project created")
	return nil
}

func (s *FileStore) ProjectByName(_ context.Context, ownerID, name string) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps, err := s.loadOwner(ownerID)
	if err != nil {
		return nil, err
	}
	for _, p := range ps {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("project %q: %w", name, ErrNotFound)
}

func (s *FileStore) DefaultProject(ctx context.Context, ownerID string) (*Project, error) {
	ps, err := s.ListProjects(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(ps) > 0 {
		return ps[0], nil
	}
	p := NewProject(DefaultProjectName, "", ownerID, "")
	if err := s.CreateProject(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ListProjects returns the owner's projects, oldest first.
func (s *FileStore) ListProjects(_ context.Context, ownerID string) ([]*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadOwner(ownerID)
}

func (s *FileStore) CreateDataset(_ context.Context, d *Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.projectByID(d.ProjectID)
	if err != nil {
		return err
	}
	p.AddDataset(d)
	if err := p.Save(); err != nil {
		return fmt.Errorf("save dataset %s: %w", d.ID, err)
	}
	log.Debug().Str("dataset", d.ID).Str("project", p.Name).Msg("dataset stored")
	return nil
}

func (s *FileStore) FindDataset(_ context.Context, id, ownerID string) (*Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps, err := s.loadOwner(ownerID)
	if err != nil {
		return nil, err
	}
	for _, p := range ps {
		if d, ok := p.Datasets[id]; ok {
			return d, nil
		}
	}
	return nil, fmt.Errorf("dataset %s: %w", id, ErrNotFound)
}

func (s *FileStore) ListDatasets(_ context.Context, ownerID string, status Status) ([]*Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps, err := s.loadOwner(ownerID)
	if err != nil {
		return nil, err
	}
	var out []*Dataset
	for _, p := range ps {
		for _, d := range p.Datasets {
			if status == "" || d.Status == status {
				out = append(out, d)
			}
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *FileStore) DeleteDataset(_ context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps, err := s.loadOwner(ownerID)
	if err != nil {
		return err
	}
	for _, p := range ps {
		if _, ok := p.Datasets[id]; ok {
			delete(p.Datasets, id)
			if err := p.Save(); err != nil {
				return fmt.Errorf("delete dataset %s: %w", id, err)
			}
			log.Debug().Str("dataset", id).Str("project", p.Name).Msg("dataset deleted")
			return nil
		}
	}
	return fmt.Errorf("dataset %s: %w", id, ErrNotFound)
}

// loadOwner reads every project of ownerID, oldest first. Callers hold s.mu.
func (s *FileStore) loadOwner(ownerID string) ([]*Project, error) {
	return s.loadGlob(filepath.Join(s.ownerDir(ownerID), "*", projectFileName), ownerID)
}

func (s *FileStore) projectByID(id string) (*Project, error) {
	ps, err := s.loadGlob(filepath.Join(s.root, "*", "*", projectFileName), "")
	if err != nil {
		return nil, err
	}
	for _, p := range ps {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
}

func (s *FileStore) loadGlob(pattern, ownerID string) ([]*Project, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("scan projects: %w", err)
	}
	out := make([]*Project, 0, len(matches))
	for _, m := range matches {
		p, err := LoadProject(filepath.Dir(m))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		if ownerID != "" && p.OwnerID != ownerID {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// slug turns a free-form name into a filesystem-safe directory name.
func slug(s string) string {
	k := strcase.KebabCase(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range k {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-') {
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "default"
	}
	return out
}
