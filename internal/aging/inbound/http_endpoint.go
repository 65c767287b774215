package inbound

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/shandysiswandi/goaging/internal/aging/usecase"
	"github.com/shandysiswandi/goaging/internal/pkg/pkgerror"
	"github.com/shandysiswandi/goaging/internal/pkg/pkgrouter"
)

const (
	// maxFormOverhead bounds boundaries, part headers and the non-file fields.
	maxFormOverhead = 1 << 20
	maxFieldBytes   = 1 << 10
)

type HTTPEndpoint struct {
	uc uc
}

func (h *HTTPEndpoint) Upload(ctx context.Context, r *http.Request) (any, error) {
	up, err := extractUpload(r, h.uc.MaxUploadBytes())
	if err != nil {
		return nil, err
	}

	result, err := h.uc.Upload(ctx, up.body, usecase.UploadInput{
		Filename: up.filename,
		Sheet:    up.sheet,
	})
	if err != nil {
		return nil, err
	}

	return UploadResponse{ReportID: result.ReportID}, nil
}

func (h *HTTPEndpoint) Report(ctx context.Context, r *http.Request) (any, error) {
	reportID := strings.TrimSpace(pkgrouter.GetParam(ctx, "id"))
	if reportID == "" {
		return nil, pkgerror.NewInvalidInput(errors.New("report id is required"))
	}

	result, err := h.uc.Report(ctx, reportID)
	if err != nil {
		return nil, err
	}

	return toReportResponse(result), nil
}

func (h *HTTPEndpoint) CollectorAgingChart(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	reportID := strings.TrimSpace(pkgrouter.GetParam(ctx, "id"))
	if reportID == "" {
		return pkgerror.NewInvalidInput(errors.New("report id is required"))
	}

	var buf bytes.Buffer
	if err := h.uc.Chart(ctx, reportID, &buf); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, err := buf.WriteTo(w)
	return err
}

func (h *HTTPEndpoint) Sheets(ctx context.Context, r *http.Request) (any, error) {
	up, err := extractUpload(r, h.uc.MaxUploadBytes())
	if err != nil {
		return nil, err
	}

	names, err := h.uc.Sheets(ctx, up.body, up.filename)
	if err != nil {
		return nil, err
	}

	return SheetsResponse{Filename: up.filename, Sheets: names}, nil
}

func (h *HTTPEndpoint) Schema(ctx context.Context, r *http.Request) (any, error) {
	return toSchemaResponse(h.uc.Schema()), nil
}

type upload struct {
	body     io.Reader
	filename string
	sheet    string
}

// extractUpload accepts either a multipart form with a "file" part and an
// optional "sheet" field, or the raw file as the request body with
// ?filename= and ?sheet= query parameters. Multipart bodies are streamed
// and never read past limit.
func extractUpload(r *http.Request, limit int64) (upload, error) {
	query := r.URL.Query()
	up := upload{
		filename: strings.TrimSpace(query.Get("filename")),
		sheet:    strings.TrimSpace(query.Get("sheet")),
	}

	contentType := r.Header.Get("Content-Type")
	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil && strings.EqualFold(mediaType, "multipart/form-data") {
			return extractMultipartFile(r, up, limit)
		}
	}

	if r.Body == nil || r.Body == http.NoBody {
		return up, pkgerror.NewInvalidInput(errors.New("empty request body"))
	}

	up.body = r.Body
	return up, nil
}

func extractMultipartFile(r *http.Request, up upload, limit int64) (upload, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, limit+maxFormOverhead)
	reader, err := r.MultipartReader()
	if err != nil {
		return up, pkgerror.NewInvalidFormat()
	}

	var file []byte
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return up, multipartErr(err, limit)
		}

		switch part.FormName() {
		case "file":
			// no Close on the error paths, it drains the rest of the part
			data, err := io.ReadAll(io.LimitReader(part, limit+1))
			if err != nil {
				return up, multipartErr(err, limit)
			}
			if int64(len(data)) > limit {
				return up, pkgerror.NewTooLarge(limit)
			}
			file = data
			if up.filename == "" {
				up.filename = part.FileName()
			}
		case "sheet":
			value, err := io.ReadAll(io.LimitReader(part, maxFieldBytes))
			if err != nil {
				return up, multipartErr(err, limit)
			}
			if sheet := strings.TrimSpace(string(value)); sheet != "" {
				up.sheet = sheet
			}
		}
		_ = part.Close()
	}

	if file == nil {
		return up, pkgerror.NewInvalidInput(errors.New("file part is required"))
	}

	up.body = bytes.NewReader(file)
	return up, nil
}

func multipartErr(err error, limit int64) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return pkgerror.NewTooLarge(limit)
	}
	return pkgerror.NewInvalidFormat()
}
