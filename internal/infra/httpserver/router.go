package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appassistant "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/application/assistant"
	appingest "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/application/ingest"
	apppatients "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/application/patients"
	appusers "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/application/users"
	domassistant "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/assistant"
	dominference "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/inference"
	dompatients "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/patients"
	domain "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/scans"
	"github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/middleware"
)

type Router struct {
	ingestSvc    *appingest.Service
	patientSvc   *apppatients.Service
	userSvc      *appusers.Service
	assistantSvc *appassistant.Service
}

// Options carries the non-service wiring for the HTTP surface.
type Options struct {
	CORSOrigins []string
	Checkers    map[string]middleware.HealthChecker
}

func NewRouter(ingestSvc *appingest.Service, patientSvc *apppatients.Service, userSvc *appusers.Service, assistantSvc *appassistant.Service, opts Options) http.Handler {
	r := &Router{ingestSvc: ingestSvc, patientSvc: patientSvc, userSvc: userSvc, assistantSvc: assistantSvc}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	mux.Get("/health", middleware.HealthHandler(opts.Checkers))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/scans", r.wrap(r.handleIngest))
		rt.Get("/scans", r.wrap(r.handleListScans))
		rt.Get("/scans/{id}", r.wrap(r.handleGetScan))
		rt.Get("/analytics", r.wrap(r.handleAnalytics))
		rt.Post("/users", r.wrap(r.handleRegisterUser))
		rt.Get("/users/{id}", r.wrap(r.handleGetUser))
		rt.Post("/patients", r.wrap(r.handleRegisterPatient))
		rt.Get("/patients", r.wrap(r.handleListPatients))
		rt.Get("/patients/{id}", r.wrap(r.handleGetPatient))
		rt.Post("/assistant/chat", r.wrap(r.handleChat))
		rt.Get("/assistant/history", r.wrap(r.handleChatHistory))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			writeError(w, err)
		}
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, sql.ErrNoRows):
		return http.StatusNotFound
	case errors.Is(err, dominference.ErrUnavailable), errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domassistant.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, domassistant.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps domain errors to status codes. Pipeline failures carry
// their stage so clients can tell a rejected upload from a dead model
// service.
func writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	var stageErr *appingest.StageError
	if errors.As(err, &stageErr) {
		json.NewEncoder(w).Encode(map[string]string{
			"stage": string(stageErr.Stage),
			"error": stageErr.Err.Error(),
		})
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}

// POST /v1/scans
// multipart/form-data: file (image), patient_id (optional), user_id
// (optional when API keys are configured; the authenticated user wins).
func (r *Router) handleIngest(w http.ResponseWriter, req *http.Request) error {
	middleware.IncrementIngests()
	middleware.IncrementIngestsRunning()
	defer middleware.DecrementIngestsRunning()

	if err := req.ParseMultipartForm(appingest.MaxImageSize); err != nil {
		return &appingest.StageError{Stage: appingest.StageValidating,
			Err: fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)}
	}
	file, header, err := req.FormFile("file")
	if err != nil {
		return &appingest.StageError{Stage: appingest.StageValidating,
			Err: fmt.Errorf("%w: missing file field", domain.ErrInvalidInput)}
	}
	defer file.Close()

	// +1 so an oversized body is detected instead of silently truncated
	image, err := io.ReadAll(io.LimitReader(file, appingest.MaxImageSize+1))
	if err != nil {
		return &appingest.StageError{Stage: appingest.StageValidating,
			Err: fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)}
	}

	userID := middleware.GetUserFromContext(req.Context())
	if userID == "" {
		userID = req.FormValue("user_id")
	}
	if err := middleware.ValidateUserID(userID); err != nil {
		return &appingest.StageError{Stage: appingest.StageValidating,
			Err: fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)}
	}

	patientID := req.FormValue("patient_id")
	if patientID != "" {
		if err := middleware.ValidateUUID(patientID); err != nil {
			return &appingest.StageError{Stage: appingest.StageValidating,
				Err: fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)}
		}
	}

	// multipart writers often tag files application/octet-stream; sniff then
	mime := header.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(image)
	}

	scan, err := r.ingestSvc.Ingest(req.Context(), appingest.IngestCommand{
		UserID:    userID,
		PatientID: patientID,
		Image:     image,
		MimeType:  mime,
	})
	if err != nil {
		middleware.IncrementIngestsFailed()
		return err
	}

	return writeJSON(w, http.StatusCreated, scan)
}

// GET /v1/scans?from=&to= | ?page=&page_size= | ?limit=
func (r *Router) handleListScans(w http.ResponseWriter, req *http.Request) error {
	q := req.URL.Query()

	if q.Get("from") != "" || q.Get("to") != "" {
		start, end, err := parseDayRange(q.Get("from"), q.Get("to"))
		if err != nil {
			return err
		}
		list, err := r.ingestSvc.ListByRange(req.Context(), start, end)
		if err != nil {
			return err
		}
		return writeJSON(w, http.StatusOK, list)
	}

	if q.Get("page") != "" || q.Get("page_size") != "" {
		page, _ := strconv.Atoi(q.Get("page"))
		size, _ := strconv.Atoi(q.Get("page_size"))
		result, err := r.ingestSvc.Paginate(req.Context(), page, size)
		if err != nil {
			return err
		}
		return writeJSON(w, http.StatusOK, result)
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	list, err := r.ingestSvc.Latest(req.Context(), middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /v1/scans/{id}
func (r *Router) handleGetScan(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateUUID(id); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	scan, err := r.ingestSvc.Get(req.Context(), domain.ScanID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, scan)
}

// GET /v1/analytics?range=week|month|year  or  ?from=YYYY-MM-DD&to=YYYY-MM-DD
func (r *Router) handleAnalytics(w http.ResponseWriter, req *http.Request) error {
	q := req.URL.Query()

	var start, end time.Time
	if rng := q.Get("range"); rng != "" {
		if err := middleware.ValidateRangeKeyword(rng); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		end = time.Now().UTC()
		switch rng {
		case "week":
			start = end.AddDate(0, 0, -7)
		case "month":
			start = end.AddDate(0, -1, 0)
		case "year":
			start = end.AddDate(-1, 0, 0)
		}
	} else {
		var err error
		start, end, err = parseDayRange(q.Get("from"), q.Get("to"))
		if err != nil {
			return err
		}
	}

	buckets, err := r.ingestSvc.AnalyticsRange(req.Context(), start, end)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, buckets)
}

// POST /v1/users
func (r *Router) handleRegisterUser(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if body.ID != "" {
		if err := middleware.ValidateUserID(body.ID); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
	}

	u, err := r.userSvc.Register(req.Context(), appusers.RegisterCommand{
		ID:    body.ID,
		Email: middleware.SanitizeString(body.Email),
		Name:  middleware.SanitizeString(body.Name),
	})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, u)
}

// GET /v1/users/{id}
func (r *Router) handleGetUser(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateUserID(id); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	u, err := r.userSvc.Get(req.Context(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, u)
}

// POST /v1/patients
func (r *Router) handleRegisterPatient(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Age       int    `json:"age"`
		Status    string `json:"status"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	p, err := r.patientSvc.Register(req.Context(), apppatients.RegisterCommand{
		FirstName: middleware.SanitizeString(body.FirstName),
		LastName:  middleware.SanitizeString(body.LastName),
		Age:       body.Age,
		Status:    body.Status,
	})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, p)
}

// GET /v1/patients?limit=
func (r *Router) handleListPatients(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	list, err := r.patientSvc.List(req.Context(), middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /v1/patients/{id}
func (r *Router) handleGetPatient(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateUUID(id); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	p, err := r.patientSvc.Get(req.Context(), dompatients.PatientID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, p)
}

// POST /v1/assistant/chat
// Body: {"message": "...", "scan_id": "<optional>"}
func (r *Router) handleChat(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Message string `json:"message"`
		ScanID  string `json:"scan_id"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	message := middleware.SanitizeString(body.Message)
	if message == "" {
		return fmt.Errorf("%w: message is required", domain.ErrInvalidInput)
	}
	if body.ScanID != "" {
		if err := middleware.ValidateUUID(body.ScanID); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
	}

	reply, err := r.assistantSvc.ChatAndStore(req.Context(), message, body.ScanID)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, reply)
}

// GET /v1/assistant/history?scan_id=&limit=  or  ?page=&page_size=
func (r *Router) handleChatHistory(w http.ResponseWriter, req *http.Request) error {
	q := req.URL.Query()

	if scanID := q.Get("scan_id"); scanID != "" {
		if err := middleware.ValidateUUID(scanID); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		limit, _ := strconv.Atoi(q.Get("limit"))
		list, err := r.assistantSvc.History(req.Context(), scanID, middleware.ValidateLimit(limit))
		if err != nil {
			return err
		}
		return writeJSON(w, http.StatusOK, list)
	}

	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))
	list, err := r.assistantSvc.ListReplies(req.Context(), page, size)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// parseDayRange turns from/to day strings into an inclusive UTC window.
// A missing "to" means today; a missing "from" means 7 days before "to".
func parseDayRange(from, to string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if to == "" {
		end = time.Now().UTC()
	} else {
		if end, err = middleware.ParseDay(to); err != nil {
			return start, end, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		end = end.Add(24*time.Hour - time.Nanosecond)
	}

	if from == "" {
		start = end.AddDate(0, 0, -7)
	} else {
		if start, err = middleware.ParseDay(from); err != nil {
			return start, end, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
	}

	if start.After(end) {
		return start, end, fmt.Errorf("%w: from is after to", domain.ErrInvalidInput)
	}
	return start, end, nil
}
