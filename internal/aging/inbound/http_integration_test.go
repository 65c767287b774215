package inbound

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/shandysiswandi/goaging/internal/aging/entity"
	"github.com/shandysiswandi/goaging/internal/aging/event"
	"github.com/shandysiswandi/goaging/internal/aging/schema"
	"github.com/shandysiswandi/goaging/internal/aging/store"
	"github.com/shandysiswandi/goaging/internal/aging/usecase"
	"github.com/shandysiswandi/goaging/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/goaging/internal/pkg/pkgroutine"
	"github.com/shandysiswandi/goaging/internal/pkg/pkguid"
)

type envelope[T any] struct {
	Message string         `json:"message"`
	Data    T              `json:"data"`
	Meta    map[string]any `json:"meta,omitempty"`
}

const arCSV = "Scope Status,Outstanding USD (AR system),Collector Name,Region,31-60 day,61-90 day,91-180 day,181-360 day,360+ day,Overdue > 90 day,For Reporting\n" +
	"In Scope,\"1,000\",Ann,EMEA,10,0,5,0,0,5,Yes\n" +
	" in scope ,50,Bob,APAC,0,20,0,0,0,0,No\n" +
	"Out of Scope,30,Ann,EMEA,1,1,1,1,1,3,Yes\n"

func newTestRouter(t *testing.T) (*pkgrouter.Router, *pkgroutine.Manager) {
	t.Helper()
	return newLimitedRouter(t, 0)
}

func newLimitedRouter(t *testing.T, maxUploadBytes int64) (*pkgrouter.Router, *pkgroutine.Manager) {
	t.Helper()

	runner := pkgroutine.NewManager(10)
	bus := event.NewBus(64)
	consumer := event.NewWarningConsumer(bus, event.LogReporter{}, event.ConsumerConfig{Workers: 1})
	consumer.Start()
	t.Cleanup(func() {
		_ = consumer.Stop(context.Background())
	})

	uc := usecase.New(usecase.Dependency{
		Store:          store.NewInMemoryStore(),
		Events:         bus,
		Runner:         runner,
		ID:             pkguid.NewUUID(),
		Schema:         schema.Default(),
		MaxUploadBytes: maxUploadBytes,
		RootCtx:        context.Background(),
	})

	router := pkgrouter.NewRouter(pkguid.NewUUID())
	RegisterHTTPEndpoint(router, uc)

	return router, runner
}

func TestUploadProcessQuery(t *testing.T) {
	router, runner := newTestRouter(t)

	reportID := uploadFile(t, router, "ar.csv", []byte(arCSV), "")
	report := waitReport(t, router, reportID)

	if report.Rows != 3 || report.Dataset != "ar" {
		t.Fatalf("unexpected report header: %+v", report)
	}
	if len(report.Tables) != 5 {
		t.Fatalf("expected 5 tables, got %d", len(report.Tables))
	}

	scope := report.Tables[0]
	if scope.Name != entity.TableScopeSummary || scope.Error != "" {
		t.Fatalf("unexpected scope table: %+v", scope)
	}
	if len(scope.Rows) != 2 || scope.Rows[0].Label != "In Scope" || scope.Rows[0].Count != 2 {
		t.Fatalf("unexpected scope rows: %+v", scope.Rows)
	}
	if got := scope.Rows[0].Values[0].String(); got != "1050" {
		t.Fatalf("unexpected in-scope total %s", got)
	}

	collectors := report.Tables[1]
	if collectors.Name != entity.TableCollectorAging || len(collectors.Rows) != 2 {
		t.Fatalf("unexpected collector table: %+v", collectors)
	}

	req := httptest.NewRequest(http.MethodGet, "/reports/"+reportID+"/charts/collector-aging.png", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected chart status: %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("unexpected chart content type %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Fatal("chart body is not a PNG")
	}

	if err := runner.Wait(); err != nil {
		t.Fatalf("runner wait: %v", err)
	}
}

func TestUploadRawBodyWithMissingFields(t *testing.T) {
	router, _ := newTestRouter(t)

	body := "Scope Status,Outstanding USD (AR system)\nIn Scope,100\nIn Scope,abc\n"
	req := httptest.NewRequest(http.MethodPost, "/reports?filename=partial.csv", strings.NewReader(body))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("unexpected status: %d %s", rec.Code, rec.Body.String())
	}

	var env envelope[UploadResponse]
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}

	report := waitReport(t, router, env.Data.ReportID)
	if len(report.Resolution.Unresolved) == 0 {
		t.Fatal("expected unresolved fields")
	}
	if report.Tables[0].Error != "" {
		t.Fatalf("scope summary must be computed: %s", report.Tables[0].Error)
	}
	if report.Tables[1].Error == "" || len(report.Tables[1].MissingFields) == 0 {
		t.Fatalf("collector aging must report missing fields: %+v", report.Tables[1])
	}
	if len(report.Warnings) != 1 || report.Warnings[0].FirstRow != 3 {
		t.Fatalf("unexpected warnings: %+v", report.Warnings)
	}

	req = httptest.NewRequest(http.MethodGet, "/reports/"+env.Data.ReportID+"/charts/collector-aging.png", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for missing collector aging, got %d", rec.Code)
	}
}

func TestSheetsAndSchema(t *testing.T) {
	router, _ := newTestRouter(t)

	f := excelize.NewFile()
	if _, err := f.NewSheet("AR"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	_ = f.Close()

	body, contentType := multipartBody(t, "book.xlsx", buf.Bytes(), "")
	req := httptest.NewRequest(http.MethodPost, "/sheets", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected sheets status: %d %s", rec.Code, rec.Body.String())
	}

	var sheets envelope[SheetsResponse]
	if err := json.NewDecoder(rec.Body).Decode(&sheets); err != nil {
		t.Fatalf("decode sheets: %v", err)
	}
	if len(sheets.Data.Sheets) != 2 || sheets.Data.Sheets[1] != "AR" {
		t.Fatalf("unexpected sheets: %+v", sheets.Data)
	}

	req = httptest.NewRequest(http.MethodGet, "/schema", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected schema status: %d", rec.Code)
	}

	var sch envelope[SchemaResponse]
	if err := json.NewDecoder(rec.Body).Decode(&sch); err != nil {
		t.Fatalf("decode schema: %v", err)
	}
	if sch.Data.Version == "" || len(sch.Data.RequiredFields) == 0 {
		t.Fatalf("unexpected schema: %+v", sch.Data)
	}
}

func TestReportNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/unknown", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/unknown/charts/collector-aging.png", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for chart, got %d", rec.Code)
	}
}

func TestUploadRequiresFile(t *testing.T) {
	router, _ := newTestRouter(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("sheet", "AR"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/reports", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func TestUploadStopsReadingPastLimit(t *testing.T) {
	router, _ := newLimitedRouter(t, 1<<10)

	const boundary = "agingboundary"
	size := 16 << 20
	body := &countingReader{r: io.MultiReader(
		strings.NewReader("--"+boundary+"\r\n"+
			"Content-Disposition: form-data; name=\"file\"; filename=\"big.csv\"\r\n"+
			"Content-Type: text/csv\r\n\r\n"),
		strings.NewReader(strings.Repeat("1,2\n", size/4)),
		strings.NewReader("\r\n--"+boundary+"--\r\n"),
	)}

	req := httptest.NewRequest(http.MethodPost, "/reports", body)
	req.Header.Set("Content-Type", "multipart/form-data; boundary="+boundary)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d %s", rec.Code, rec.Body.String())
	}
	if body.n > 64<<10 {
		t.Fatalf("read %d of %d body bytes for a 1KiB limit", body.n, size)
	}
}

func TestSheetsRejectsLargeUpload(t *testing.T) {
	router, _ := newLimitedRouter(t, 16)

	body, contentType := multipartBody(t, "ar.csv", []byte(arCSV), "")
	req := httptest.NewRequest(http.MethodPost, "/sheets", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d %s", rec.Code, rec.Body.String())
	}
}

func multipartBody(t *testing.T, filename string, data []byte, sheet string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if sheet != "" {
		if err := writer.WriteField("sheet", sheet); err != nil {
			t.Fatalf("write sheet field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	return body, writer.FormDataContentType()
}

func uploadFile(t *testing.T, router http.Handler, filename string, data []byte, sheet string) string {
	t.Helper()

	body, contentType := multipartBody(t, filename, data, sheet)
	req := httptest.NewRequest(http.MethodPost, "/reports", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("unexpected status: %d %s", rec.Code, rec.Body.String())
	}

	var env envelope[UploadResponse]
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if env.Data.ReportID == "" {
		t.Fatal("report id is empty")
	}

	return env.Data.ReportID
}

func getReport(t *testing.T, router http.Handler, reportID string) ReportResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/reports/"+reportID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected report status: %d", rec.Code)
	}

	var env envelope[ReportResponse]
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode report: %v", err)
	}

	return env.Data
}

func waitReport(t *testing.T, router http.Handler, reportID string) ReportResponse {
	t.Helper()

	var report ReportResponse
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		report = getReport(t, router, reportID)
		if report.Status == entity.ReportStatusDone || report.Status == entity.ReportStatusFailed {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	if report.Status != entity.ReportStatusDone {
		t.Fatalf("report not done, status=%s err=%s", report.Status, report.Error)
	}
	return report
}
