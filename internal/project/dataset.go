package project

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/KaramelBytes/agroinsight-cli/internal/analysis"
)

// Status is the lifecycle state of a dataset.
type Status string

const (
	StatusUploaded   Status = "UPLOADED"
	StatusProcessing Status = "PROCESSING"
	StatusValidated  Status = "VALIDATED"
	StatusApproved   Status = "APPROVED"
	StatusRejected   Status = "REJECTED"
)

// RawDataRows is how many input rows are kept alongside a persisted analysis.
const RawDataRows = 100

// Dataset is one uploaded table and its serialized analysis.
type Dataset struct {
	ID        string          `json:"id"`
	ProjectID string          `json:"project_id"`
	Name      string          `json:"name"`
	Filename  string          `json:"filename"`
	Status    Status          `json:"status"`
	Data      json.RawMessage `json:"data"`
	Metadata  Metadata        `json:"metadata"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Metadata describes the upload that produced a dataset.
type Metadata struct {
	UploadedBy        string    `json:"uploadedBy"`
	UploadedAt        time.Time `json:"uploadedAt"`
	FileSize          int64     `json:"fileSize"`
	TotalRows         int       `json:"totalRows"`
	TotalColumns      int       `json:"totalColumns"`
	ValidRows         int       `json:"validRows"`
	ZootechnicalCount int       `json:"zootechnicalCount"`
}

// DatasetData is the blob stored in Dataset.Data: a preview of the input rows
// followed by the analysis fields.
type DatasetData struct {
	RawData []analysis.Row `json:"rawData"`
	analysis.Result
}

// NewDatasetData keeps the first RawDataRows rows of t next to res.
func NewDatasetData(t analysis.Table, res *analysis.Result) DatasetData {
	n := len(t.Rows)
	if n > RawDataRows {
		n = RawDataRows
	}
	d := DatasetData{RawData: append([]analysis.Row{}, t.Rows[:n]...)}
	if res != nil {
		d.Result = *res
	}
	return d
}

// Analysis decodes the stored analysis blob.
func (d *Dataset) Analysis() (*DatasetData, error) {
	var out DatasetData
	if err := json.Unmarshal(d.Data, &out); err != nil {
		return nil, fmt.Errorf("decode dataset %s: %w", d.ID, err)
	}
	return &out, nil
}
