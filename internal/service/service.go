// Package service orchestrates analysis, persistence and diagnostics for one
// owner's datasets.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/KaramelBytes/agroinsight-cli/internal/analysis"
	"github.com/KaramelBytes/agroinsight-cli/internal/diagnostic"
	"github.com/KaramelBytes/agroinsight-cli/internal/project"
)

// Method describes how diagnostics are produced.
const Method = "Análise baseada em referências zootécnicas (EMBRAPA, NRC)"

// AnalysisService analyzes uploaded tables and manages the stored results.
type AnalysisService struct {
	store   project.Store
	engine  *diagnostic.Engine
	opt     analysis.Options
	metrics *Metrics
	now     func() time.Time
}

// New wires a service. A nil engine uses the default reference table and nil
// metrics are kept unregistered.
func New(store project.Store, engine *diagnostic.Engine, opt analysis.Options, metrics *Metrics) *AnalysisService {
	if engine == nil {
		engine = diagnostic.NewEngine(nil)
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &AnalysisService{
		store:   store,
		engine:  engine,
		opt:     opt,
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateRequest is one table to analyze and persist.
type CreateRequest struct {
	OwnerID string
	// ProjectName selects an existing or new project; empty uses the owner's
	// default project.
	ProjectName string
	FileName    string
	FileSize    int64
	Table       analysis.Table
}

// DiagnosticResponse wraps a generated diagnostic.
type DiagnosticResponse struct {
	Diagnostico *diagnostic.Diagnostico `json:"diagnostico"`
	GeradoEm    time.Time               `json:"geradoEm"`
	Metodo      string                  `json:"metodo"`
}

// UserStats summarizes an owner's stored datasets.
type UserStats struct {
	TotalAnalyses         int        `json:"totalAnalyses"`
	TotalDatasets         int        `json:"totalDatasets"`
	AverageRowsPerDataset int        `json:"averageRowsPerDataset"`
	MostRecentAnalysis    *time.Time `json:"mostRecentAnalysis,omitempty"`
}

// Analyze runs the dataset analyzer and records its duration.
func (s *AnalysisService) Analyze(t analysis.Table) *analysis.Result {
	start := time.Now()
	res := analysis.Analyze(t, s.opt)
	s.metrics.observeAnalysis(time.Since(start).Seconds())
	return res
}

// Diagnose generates a diagnostic for in and records its status bands.
func (s *AnalysisService) Diagnose(in diagnostic.Input) *diagnostic.Diagnostico {
	d := s.engine.Generate(in)
	s.metrics.observeDiagnostic(d)
	return d
}

// CreateAnalysis analyzes req.Table and stores it as a VALIDATED dataset.
func (s *AnalysisService) CreateAnalysis(ctx context.Context, req CreateRequest) (*project.Dataset, error) {
	if strings.TrimSpace(req.OwnerID) == "" {
		return nil, fmt.Errorf("create analysis: owner is required")
	}
	log.Info().Str("file", req.FileName).Int("rows", len(req.Table.Rows)).Msg("analyzing dataset")
	res := s.Analyze(req.Table)

	p, err := s.EnsureProject(ctx, req.OwnerID, req.ProjectName)
	if err != nil {
		return nil, fmt.Errorf("create analysis: %w", err)
	}
	data, err := json.Marshal(project.NewDatasetData(req.Table, res))
	if err != nil {
		return nil, fmt.Errorf("create analysis: encode data: %w", err)
	}
	now := s.now()
	d := &project.Dataset{
		ProjectID: p.ID,
		Name:      req.FileName,
		Filename:  req.FileName,
		Status:    project.StatusValidated,
		Data:      data,
		Metadata: project.Metadata{
			UploadedBy:        req.OwnerID,
			UploadedAt:        now,
			FileSize:          req.FileSize,
			TotalRows:         res.TotalRows,
			TotalColumns:      res.TotalColumns,
			ValidRows:         res.ValidRows,
			ZootechnicalCount: len(res.ZootechnicalVariables),
		},
		CreatedAt: now,
	}
	if err := s.store.CreateDataset(ctx, d); err != nil {
		return nil, fmt.Errorf("create analysis: %w", err)
	}
	log.Info().Str("dataset", d.ID).Str("project", p.Name).Msg("analysis created")
	return d, nil
}

// EnsureProject returns the named project, creating it when missing. An empty
// name resolves to the owner's default project.
func (s *AnalysisService) EnsureProject(ctx context.Context, ownerID, name string) (*project.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s.store.DefaultProject(ctx, ownerID)
	}
	p, err := s.store.ProjectByName(ctx, ownerID, name)
	if err == nil {
		return p, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}
	p = project.NewProject(name, "", ownerID, "")
	if err := s.store.CreateProject(ctx, p); err != nil {
		return nil, err
	}
	log.Info().Str("project", name).Msg("project created")
	return p, nil
}

// GetAnalysis returns one of the owner's datasets.
func (s *AnalysisService) GetAnalysis(ctx context.Context, id, ownerID string) (*project.Dataset, error) {
	d, err := s.store.FindDataset(ctx, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get analysis %s: %w", id, err)
	}
	return d, nil
}

// ListAnalyses returns the owner's VALIDATED datasets, newest first.
func (s *AnalysisService) ListAnalyses(ctx context.Context, ownerID string) ([]*project.Dataset, error) {
	ds, err := s.store.ListDatasets(ctx, ownerID, project.StatusValidated)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	return ds, nil
}

// GenerateDiagnostic builds the diagnostic of a stored dataset.
func (s *AnalysisService) GenerateDiagnostic(ctx context.Context, id, ownerID string) (*DiagnosticResponse, error) {
	d, err := s.GetAnalysis(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	in, err := diagnostic.DecodeInput(d.Name, d.Metadata.TotalRows, d.Data)
	if err != nil {
		return nil, fmt.Errorf("generate diagnostic %s: %w", id, err)
	}
	diag := s.Diagnose(in)
	log.Info().Str("dataset", id).Int("variables", len(diag.Numeric)).Msg("diagnostic generated")
	return &DiagnosticResponse{Diagnostico: diag, GeradoEm: s.now(), Metodo: Method}, nil
}

// DeleteAnalysis removes one of the owner's datasets.
func (s *AnalysisService) DeleteAnalysis(ctx context.Context, id, ownerID string) error {
	if err := s.store.DeleteDataset(ctx, id, ownerID); err != nil {
		return fmt.Errorf("delete analysis %s: %w", id, err)
	}
	log.Info().Str("dataset", id).Msg("analysis deleted")
	return nil
}

// UserStats counts every dataset of the owner regardless of status.
func (s *AnalysisService) UserStats(ctx context.Context, ownerID string) (*UserStats, error) {
	ds, err := s.store.ListDatasets(ctx, ownerID, "")
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	st := &UserStats{TotalAnalyses: len(ds), TotalDatasets: len(ds)}
	rows := 0
	for _, d := range ds {
		rows += d.Metadata.TotalRows
		if st.MostRecentAnalysis == nil || d.CreatedAt.After(*st.MostRecentAnalysis) {
			t := d.CreatedAt
			st.MostRecentAnalysis = &t
		}
	}
	if len(ds) > 0 {
		st.AverageRowsPerDataset = int(math.Round(float64(rows) / float64(len(ds))))
	}
	return st, nil
}

// IsNotFound reports whether err means the dataset or project does not exist
// for the requesting owner.
func IsNotFound(err error) bool { return errors.Is(err, project.ErrNotFound) }
