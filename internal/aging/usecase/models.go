package usecase

import "github.com/shandysiswandi/goaging/internal/aging/entity"

type UploadInput struct {
	Filename string
	Sheet    string
}

type UploadResult struct {
	ReportID string
}

// ReportResult carries the report once processing is done; Report is nil
// while the upload is queued, processing or failed.
type ReportResult struct {
	Meta   entity.ReportMeta
	Report *entity.Report
}
