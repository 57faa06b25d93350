package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/agroinsight-cli/internal/analysis"
	"github.com/KaramelBytes/agroinsight-cli/internal/diagnostic"
	"github.com/KaramelBytes/agroinsight-cli/internal/project"
)

// MockStore implements project.Store for testing
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateProject(ctx context.Context, p *project.Project) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockStore) ProjectByName(ctx context.Context, ownerID, name string) (*project.Project, error) {
	args := m.Called(ctx, ownerID, name)
	p, _ := args.Get(0).(*project.Project)
	return p, args.Error(1)
}

func (m *MockStore) DefaultProject(ctx context.Context, ownerID string) (*project.Project, error) {
	args := m.Called(ctx, ownerID)
	p, _ := args.Get(0).(*project.Project)
	return p, args.Error(1)
}

func (m *MockStore) ListProjects(ctx context.Context, ownerID string) ([]*project.Project, error) {
	args := m.Called(ctx, ownerID)
	ps, _ := args.Get(0).([]*project.Project)
	return ps, args.Error(1)
}

func (m *MockStore) CreateDataset(ctx context.Context, d *project.Dataset) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockStore) FindDataset(ctx context.Context, id, ownerID string) (*project.Dataset, error) {
	args := m.Called(ctx, id, ownerID)
	d, _ := args.Get(0).(*project.Dataset)
	return d, args.Error(1)
}

func (m *MockStore) ListDatasets(ctx context.Context, ownerID string, status project.Status) ([]*project.Dataset, error) {
	args := m.Called(ctx, ownerID, status)
	ds, _ := args.Get(0).([]*project.Dataset)
	return ds, args.Error(1)
}

func (m *MockStore) DeleteDataset(ctx context.Context, id, ownerID string) error {
	return m.Called(ctx, id, ownerID).Error(0)
}

var fixed = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

func herd(n int) analysis.Table {
	t := analysis.Table{Header: []string{"ANIMAL", "GPD", "SEXO"}}
	for i := 0; i < n; i++ {
		sexo := "Macho"
		if i%3 == 0 {
			sexo = "Fêmea"
		}
		t.Rows = append(t.Rows, analysis.Row{
			"ANIMAL": analysis.Text("BOV" + string(rune('A'+i%26))),
			"GPD":    analysis.Number(1.0 + float64(i%5)*0.05),
			"SEXO":   analysis.Text(sexo),
		})
	}
	return t
}

func newFileService(t *testing.T) (*AnalysisService, *Metrics) {
	t.Helper()
	m := NewMetrics(prometheus.NewRegistry())
	s := New(project.NewFileStore(t.TempDir()), nil, analysis.DefaultOptions(), m)
	s.now = func() time.Time { return fixed }
	return s, m
}

func TestAnalysisService_EndToEnd(t *testing.T) {
	ctx := context.Background()
	s, m := newFileService(t)

	d, err := s.CreateAnalysis(ctx, CreateRequest{OwnerID: "ana", FileName: "rebanho.csv", FileSize: 2048, Table: herd(150)})
	require.NoError(t, err)
	assert.Equal(t, project.StatusValidated, d.Status)
	assert.Equal(t, "rebanho.csv", d.Name)
	assert.Equal(t, project.Metadata{
		UploadedBy: "ana", UploadedAt: fixed, FileSize: 2048,
		TotalRows: 150, TotalColumns: 3, ValidRows: 150, ZootechnicalCount: 1,
	}, d.Metadata)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.analyses))

	data, err := d.Analysis()
	require.NoError(t, err)
	assert.Len(t, data.RawData, project.RawDataRows)
	assert.Equal(t, []string{"GPD"}, data.ZootechnicalVariables)

	list, err := s.ListAnalyses(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, d.ID, list[0].ID)

	resp, err := s.GenerateDiagnostic(ctx, d.ID, "ana")
	require.NoError(t, err)
	assert.Equal(t, Method, resp.Metodo)
	assert.Equal(t, fixed, resp.GeradoEm)
	require.Len(t, resp.Diagnostico.Numeric, 1)
	assert.Equal(t, diagnostic.Excellent, resp.Diagnostico.Numeric[0].Status)
	assert.Contains(t, resp.Diagnostico.Summary, "150 registros")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.diagnostics.WithLabelValues(string(diagnostic.Excellent))))

	b, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"geradoEm":"2024-03-10T09:30:00Z"`)

	_, err = s.GenerateDiagnostic(ctx, d.ID, "bruno")
	assert.True(t, IsNotFound(err))

	st, err := s.UserStats(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, 1, st.TotalAnalyses)
	assert.Equal(t, 150, st.AverageRowsPerDataset)
	require.NotNil(t, st.MostRecentAnalysis)
	assert.True(t, st.MostRecentAnalysis.Equal(fixed))

	assert.True(t, IsNotFound(s.DeleteAnalysis(ctx, d.ID, "bruno")))
	require.NoError(t, s.DeleteAnalysis(ctx, d.ID, "ana"))
	_, err = s.GetAnalysis(ctx, d.ID, "ana")
	assert.True(t, IsNotFound(err))

	st, err = s.UserStats(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, &UserStats{}, st)
}

func TestCreateAnalysis_NamedProjectIsCreated(t *testing.T) {
	ctx := context.Background()
	store := &MockStore{}
	store.On("ProjectByName", ctx, "ana", "Confinamento").Return(nil, project.ErrNotFound).Once()
	store.On("CreateProject", ctx, mock.MatchedBy(func(p *project.Project) bool {
		return p.Name == "Confinamento" && p.OwnerID == "ana"
	})).Return(nil).Once()
	store.On("CreateDataset", ctx, mock.MatchedBy(func(d *project.Dataset) bool {
		return d.Status == project.StatusValidated && d.Metadata.TotalRows == 3 && d.ProjectID != ""
	})).Return(nil).Once()

	s := New(store, nil, analysis.DefaultOptions(), nil)
	_, err := s.CreateAnalysis(ctx, CreateRequest{OwnerID: "ana", ProjectName: " Confinamento ", FileName: "x.csv", Table: herd(3)})
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestCreateAnalysis_Errors(t *testing.T) {
	ctx := context.Background()
	s := New(&MockStore{}, nil, analysis.DefaultOptions(), nil)
	_, err := s.CreateAnalysis(ctx, CreateRequest{FileName: "x.csv"})
	assert.Error(t, err)

	boom := errors.New("disk full")
	store := &MockStore{}
	store.On("DefaultProject", ctx, "ana").Return(&project.Project{ID: "p1", Name: project.DefaultProjectName}, nil)
	store.On("CreateDataset", ctx, mock.Anything).Return(boom)
	s = New(store, nil, analysis.DefaultOptions(), nil)
	_, err = s.CreateAnalysis(ctx, CreateRequest{OwnerID: "ana", FileName: "x.csv", Table: herd(2)})
	assert.ErrorIs(t, err, boom)
}

func TestUserStats_AveragesAllStatuses(t *testing.T) {
	ctx := context.Background()
	store := &MockStore{}
	store.On("ListDatasets", ctx, "ana", project.Status("")).Return([]*project.Dataset{
		{ID: "a", Status: project.StatusValidated, Metadata: project.Metadata{TotalRows: 10}, CreatedAt: fixed.Add(-time.Hour)},
		{ID: "b", Status: project.StatusUploaded, Metadata: project.Metadata{TotalRows: 21}, CreatedAt: fixed},
	}, nil)
	s := New(store, nil, analysis.DefaultOptions(), nil)

	st, err := s.UserStats(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, 2, st.TotalAnalyses)
	assert.Equal(t, 2, st.TotalDatasets)
	assert.Equal(t, 16, st.AverageRowsPerDataset)
	assert.True(t, st.MostRecentAnalysis.Equal(fixed))
}

func TestGenerateDiagnostic_CorruptData(t *testing.T) {
	ctx := context.Background()
	store := &MockStore{}
	store.On("FindDataset", ctx, "x", "ana").Return(&project.Dataset{ID: "x", Name: "x.csv", Data: json.RawMessage(`"nope"`)}, nil)
	s := New(store, nil, analysis.DefaultOptions(), nil)

	_, err := s.GenerateDiagnostic(ctx, "x", "ana")
	assert.Error(t, err)
	assert.False(t, IsNotFound(err))
}
