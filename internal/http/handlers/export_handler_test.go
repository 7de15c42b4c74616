package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/africanjoy/feedback-backend/internal/domain"
	"github.com/africanjoy/feedback-backend/internal/export"
	"github.com/africanjoy/feedback-backend/internal/repo"
	"github.com/africanjoy/feedback-backend/internal/store"
)

func exportRouter(t *testing.T, seed []int) *gin.Engine {
	t.Helper()
	dsn := fmt.Sprintf("file:exp_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	st := store.New(db, nil)
	for i, rating := range seed {
		name := "Reviewer"
		fb := &domain.Feedback{
			Rating:     rating,
			RatingType: domain.RatingTypeFor(rating),
			Name:       &name,
			CreatedAt:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).Add(-time.Duration(i) * time.Hour),
		}
		if err := st.Insert(context.Background(), fb); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := New(nil, nil, nil, ExportDeps{
		Store: st,
		Brand: export.Branding{Name: "African Joy Dairy", Subtitle: "Customer Feedback"},
	})
	r.GET("/export/csv", h.ExportCSV)
	r.GET("/export/pdf", h.ExportPDF)
	return r
}

func TestExportCSVAttachment(t *testing.T) {
	r := exportRouter(t, []int{5, 4, 3})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/export/csv", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type = %q", ct)
	}
	cd := w.Header().Get("Content-Disposition")
	if !strings.Contains(cd, "attachment") || !strings.Contains(cd, "feedback-export-") {
		t.Fatalf("disposition = %q", cd)
	}
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if lines[0] != "Date,Name,Location,Rating,Type,Feedback" {
		t.Fatalf("header = %q", lines[0])
	}
	if len(lines) != 4 {
		t.Fatalf("rows = %d, want 3 + header", len(lines)-1)
	}
}

func TestExportCSVRespectsFilter(t *testing.T) {
	r := exportRouter(t, []int{5, 4, 1})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/export/csv?min_rating=4", nil))
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("filtered rows = %d, want 2 + header", len(lines)-1)
	}
}

func TestExportCSVNoData(t *testing.T) {
	r := exportRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/export/csv", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil || er.Code != ErrCodeNoData {
		t.Fatalf("envelope = %s", w.Body.String())
	}
}

func TestExportPDFAttachment(t *testing.T) {
	r := exportRouter(t, []int{5, 5, 3, 1})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/export/pdf", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type = %q", ct)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "feedback-report-") {
		t.Fatalf("disposition = %q", w.Header().Get("Content-Disposition"))
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")) {
		t.Fatal("payload is not a PDF")
	}
}

func TestExportPDFNoData(t *testing.T) {
	r := exportRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/export/pdf", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestExportBadFilter(t *testing.T) {
	r := exportRouter(t, []int{5})
	for _, path := range []string{"/export/csv?start_date=nope", "/export/pdf?min_rating=-2"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", path, w.Code)
		}
	}
}
