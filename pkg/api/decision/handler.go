package decision

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/Montabos/Quantis/pkg/core/analysis"
	"github.com/Montabos/Quantis/pkg/core/availability"
	"github.com/Montabos/Quantis/pkg/core/ingest"
	"github.com/Montabos/Quantis/pkg/core/structure"
	"github.com/Montabos/Quantis/pkg/core/store"
	"github.com/Montabos/Quantis/pkg/models"
)

// AnalyzeRequest is the payload for a full analysis run. Files carries the
// column profiles of the uploaded data; FilePaths their on-disk locations
// for the code-execution service.
type AnalyzeRequest struct {
	Question  string                     `json:"question"`
	Files     []models.FileColumnProfile `json:"files,omitempty"`
	FilePaths []string                   `json:"file_paths,omitempty"`
	Mode      string                     `json:"mode,omitempty"`
}

type AnalyzeResponse struct {
	RunID  string                 `json:"run_id"`
	Report *models.AnalysisResult `json:"report"`
}

type AvailabilityRequest struct {
	Requirements []models.DataRequirement   `json:"requirements"`
	Files        []models.FileColumnProfile `json:"files"`
}

type StructureRequest struct {
	Question string                     `json:"question"`
	Files    []models.FileColumnProfile `json:"files,omitempty"`
}

type ProfileResponse struct {
	Profile *models.FileColumnProfile `json:"profile"`
}

// Handler holds dependencies for decision-analysis endpoints
type Handler struct {
	Orchestrator *analysis.Orchestrator
	Negotiator   *structure.Negotiator
	Checker      *availability.Checker
	Repo         *store.ReportRepo // nil when no database is configured
}

// NewHandler creates a new decision handler
func NewHandler(orchestrator *analysis.Orchestrator, negotiator *structure.Negotiator, repo *store.ReportRepo) *Handler {
	return &Handler{
		Orchestrator: orchestrator,
		Negotiator:   negotiator,
		Checker:      availability.NewChecker(),
		Repo:         repo,
	}
}

func corsHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// HandleAnalyze runs the full pipeline for one question and, when a database
// is configured, persists the finished report under a fresh run ID.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	corsHeaders(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Question == "" {
		http.Error(w, "question is required", http.StatusBadRequest)
		return
	}

	fmt.Printf("[API] analyze: %q with %d file(s)\n", req.Question, len(req.Files))

	result, err := h.Orchestrator.Analyze(r.Context(), analysis.Request{
		Question:  req.Question,
		Files:     req.Files,
		FilePaths: req.FilePaths,
		Mode:      req.Mode,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	runID := uuid.New().String()
	if h.Repo != nil {
		if err := h.Repo.Save(r.Context(), runID, req.Question, result); err != nil {
			fmt.Printf("[API] report save failed: %v\n", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AnalyzeResponse{RunID: runID, Report: result})
}

// HandleAvailability reconciles explicit requirements against file profiles
// without touching the model. Useful for previewing the tier before a run.
func (h *Handler) HandleAvailability(w http.ResponseWriter, r *http.Request) {
	corsHeaders(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req AvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	summary := h.Checker.CheckAll(req.Requirements, req.Files)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

// HandleStructure runs requirement analysis plus structure adaptation and
// returns the negotiated plan, without generating the report itself.
func (h *Handler) HandleStructure(w http.ResponseWriter, r *http.Request) {
	corsHeaders(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req StructureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Question == "" {
		http.Error(w, "question is required", http.StatusBadRequest)
		return
	}

	plan, err := h.Negotiator.AnalyzeAndAdapt(r.Context(), req.Question, req.Files)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(plan)
}

// HandleProfile profiles one uploaded CSV (multipart field "file") into the
// column metadata the availability checker consumes.
func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	corsHeaders(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	profile, err := ingest.ProfileCSV(uuid.New().String()[:8], header.Filename, file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ProfileResponse{Profile: profile})
}

// HandleReport serves one stored report: GET /api/report?run_id=...
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	corsHeaders(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if h.Repo == nil {
		http.Error(w, "report storage not configured", http.StatusServiceUnavailable)
		return
	}

	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		http.Error(w, "run_id is required", http.StatusBadRequest)
		return
	}

	record, err := h.Repo.Load(r.Context(), runID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(record)
}

// HandleReports lists recent runs: GET /api/reports?limit=20
func (h *Handler) HandleReports(w http.ResponseWriter, r *http.Request) {
	corsHeaders(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if h.Repo == nil {
		http.Error(w, "report storage not configured", http.StatusServiceUnavailable)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := h.Repo.List(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}
