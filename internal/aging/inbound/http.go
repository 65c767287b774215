package inbound

import (
	"context"
	"io"
	"net/http"

	"github.com/shandysiswandi/goaging/internal/aging/schema"
	"github.com/shandysiswandi/goaging/internal/aging/usecase"
	"github.com/shandysiswandi/goaging/internal/pkg/pkgrouter"
)

type uc interface {
	Upload(ctx context.Context, r io.Reader, in usecase.UploadInput) (usecase.UploadResult, error)
	Report(ctx context.Context, reportID string) (usecase.ReportResult, error)
	Chart(ctx context.Context, reportID string, w io.Writer) error
	Sheets(ctx context.Context, r io.Reader, filename string) ([]string, error)
	Schema() schema.Config
	MaxUploadBytes() int64
}

func RegisterHTTPEndpoint(r *pkgrouter.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/reports", end.Upload) // multipart file or raw body with ?filename=&sheet=
	r.GET("/reports/:id", end.Report)
	r.Raw(http.MethodGet, "/reports/:id/charts/collector-aging.png", end.CollectorAgingChart)

	r.POST("/sheets", end.Sheets)
	r.GET("/schema", end.Schema)
}
