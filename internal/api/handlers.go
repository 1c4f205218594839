package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"genre-schedule/internal/analysis"
	"genre-schedule/internal/models"
	"genre-schedule/internal/service"
	"genre-schedule/internal/state"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

const DefaultMaxUpload = 10 << 20 // 10MB

type Handler struct {
	CSVService *analysis.CSVService
	State      *state.AppState

	// NewDataSource creates the connection used by /api/db/connect
	NewDataSource func() service.DataSource

	MaxUpload int64
	logger    *zap.Logger
}

func NewHandler(csv *analysis.CSVService, st *state.AppState, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		CSVService: csv,
		State:      st,
		NewDataSource: func() service.DataSource {
			return &service.PostgresDataSource{}
		},
		MaxUpload: DefaultMaxUpload,
		logger:    logger.Named("api"),
	}
}

// NewRouter wires middleware and routes
func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	h.RegisterRoutes(r)
	return r
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HealthCheck)
	r.Get("/api/status", h.GetStatus)
	r.Post("/api/analyze-file", h.AnalyzeFile)
	r.Get("/api/report", h.GetReport)

	// DB Routes
	r.Post("/api/db/connect", h.ConnectDB)
	r.Get("/api/db/tables", h.ListTables)
	r.Post("/api/db/analyze", h.AnalyzeTable)
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// ============================================================================
// Health & Status
// ============================================================================

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	resp := models.StatusResponse{DBConnected: h.State.GetDataSource() != nil}
	if report := h.State.GetReport(); report != nil {
		resp.ReportLoaded = true
		resp.Source = report.Source
		resp.Genres = len(report.Results)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ============================================================================
// Analysis
// ============================================================================

// AnalyzeFile handles a CSV upload and returns the most common schedule per genre
func (h *Handler) AnalyzeFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUpload)
	if err := r.ParseMultipartForm(h.MaxUpload); err != nil {
		http.Error(w, "Invalid upload", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "No file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if !strings.HasSuffix(strings.ToLower(name), ".csv") {
		http.Error(w, "Only CSV files are allowed", http.StatusBadRequest)
		return
	}

	report, err := h.CSVService.AnalyzeReader(name, file)
	if err != nil {
		h.analysisError(w, err)
		return
	}
	h.State.SetReport(report)

	writeJSON(w, http.StatusOK, models.UploadResponse{
		Message:  fmt.Sprintf("File '%s' analyzed successfully", name),
		Filename: name,
		Report:   report,
	})
}

// GetReport returns the latest report
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	report := h.State.GetReport()
	if report == nil {
		http.Error(w, "No report available", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ============================================================================
// Database
// ============================================================================

// ConnectDB establishes a database connection
func (h *Handler) ConnectDB(w http.ResponseWriter, r *http.Request) {
	var config service.DataSourceConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	// Currently only Postgres supported
	if config.Type != "postgres" {
		http.Error(w, "Only postgres is supported currently", http.StatusBadRequest)
		return
	}

	ds := h.NewDataSource()
	if err := ds.Connect(r.Context(), config); err != nil {
		http.Error(w, fmt.Sprintf("Failed to connect: %v", err), http.StatusInternalServerError)
		return
	}

	if err := h.State.SetDataSource(ds); err != nil {
		h.logger.Warn("closing previous connection failed", zap.Error(err))
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "connected"})
}

// ListTables returns tables from connected DB
func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	ds := h.State.GetDataSource()
	if ds == nil {
		http.Error(w, "No database connection", http.StatusBadRequest)
		return
	}

	tables, err := ds.ListTables(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Error listing tables: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"tables": tables})
}

// AnalyzeTable fetches a table and computes the most common schedule per genre
func (h *Handler) AnalyzeTable(w http.ResponseWriter, r *http.Request) {
	ds := h.State.GetDataSource()
	if ds == nil {
		http.Error(w, "No database connection", http.StatusBadRequest)
		return
	}

	var req struct {
		TableName string `json:"table_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TableName == "" {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	rows, err := ds.FetchRows(r.Context(), req.TableName)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error fetching data: %v", err), http.StatusInternalServerError)
		return
	}

	report, err := h.CSVService.AnalyzeData(req.TableName, rows)
	if err != nil {
		h.analysisError(w, err)
		return
	}
	h.State.SetReport(report)

	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) analysisError(w http.ResponseWriter, err error) {
	switch {
	case analysis.IsMissingColumn(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, analysis.ErrEmptyResult):
		http.Error(w, "No valid data found in the CSV", http.StatusBadRequest)
	default:
		h.logger.Error("analysis failed", zap.Error(err))
		http.Error(w, fmt.Sprintf("Error analyzing data: %v", err), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
