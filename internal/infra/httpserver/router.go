package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	appauth "github.com/bryanwahyu/fracture-ai/internal/application/auth"
	apppred "github.com/bryanwahyu/fracture-ai/internal/application/predictions"
	appreports "github.com/bryanwahyu/fracture-ai/internal/application/reports"
	domain "github.com/bryanwahyu/fracture-ai/internal/domain/predictions"
	repdomain "github.com/bryanwahyu/fracture-ai/internal/domain/reports"
	usersdomain "github.com/bryanwahyu/fracture-ai/internal/domain/users"
	"github.com/bryanwahyu/fracture-ai/internal/middleware"
)

// maxUploadBytes caps the multipart body; X-ray uploads are a few MB at most.
const maxUploadBytes = 32 << 20

type Router struct {
	predSvc   *apppred.Service
	authSvc   *appauth.Service
	reportSvc *appreports.Service
	log       zerolog.Logger
}

type Options struct {
	// UploadsDir, when non-empty, is served at /uploads/ (local storage driver).
	UploadsDir string
	// Health checkers by name, wired into /health.
	Checkers map[string]middleware.HealthChecker
}

func NewRouter(predSvc *apppred.Service, authSvc *appauth.Service, reportSvc *appreports.Service, log zerolog.Logger, opts Options) http.Handler {
	r := &Router{
		predSvc:   predSvc,
		authSvc:   authSvc,
		reportSvc: reportSvc,
		log:       log.With().Str("component", "httpserver").Logger(),
	}

	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}))
	mux.Use(middleware.RequestLogger(log))
	mux.Use(middleware.MetricsMiddleware)

	mux.Get("/health", middleware.HealthHandler(opts.Checkers))
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/api/auth", func(rt chi.Router) {
		rt.Use(middleware.RateLimitMiddleware(10, 1))
		rt.Post("/register", r.wrap(r.handleRegister))
		rt.Post("/login", r.wrap(r.handleLogin))
	})

	mux.Group(func(rt chi.Router) {
		rt.Use(middleware.JWTAuth(authSvc))
		rt.Use(middleware.RateLimitMiddleware(30, 2))
		rt.Get("/api/auth/user", r.wrap(r.handleCurrentUser))
		rt.Post("/api/predict", r.wrap(r.handlePredict))
		rt.Get("/api/history", r.wrap(r.handleHistory))
		rt.Delete("/api/history", r.wrap(r.handleDeleteHistory))
		rt.Post("/api/reports", r.wrap(r.handleGenerateReport))
		rt.Get("/api/reports", r.wrap(r.handleListReports))
		rt.Get("/api/reports/{prediction_id}", r.wrap(r.handleLatestReport))
	})

	// artifact retrieval: siapa pun yang pegang URL bisa fetch (trust
	// boundary yang disengaja, reference-nya unguessable)
	if opts.UploadsDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(opts.UploadsDir)))
		mux.Get("/uploads/*", fs.ServeHTTP)
	}

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap adapts error-returning handlers and owns the error → status mapping.
// Callers get enough detail to act on, never internals.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		var vErr *domain.ValidationError
		var infErr *domain.InferenceError
		var stoErr *domain.StorageError
		var perErr *domain.PersistenceError

		switch {
		case errors.As(err, &vErr):
			writeError(w, http.StatusBadRequest, "invalid request", vErr.Error())
		case errors.As(err, &infErr):
			status := http.StatusBadGateway
			if infErr.Reason == domain.ReasonTimeout {
				status = http.StatusGatewayTimeout
			}
			writeError(w, status, "analysis failed", infErr.Error())
		case errors.As(err, &stoErr):
			writeError(w, http.StatusInternalServerError, "failed to store image", stoErr.Error())
		case errors.As(err, &perErr):
			// beda dengan "analysis failed": inference sudah sukses di sini
			writeError(w, http.StatusInternalServerError, "result computed but not saved", perErr.Error())
		case errors.Is(err, usersdomain.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid credentials", "")
		case errors.Is(err, usersdomain.ErrNotFound):
			writeError(w, http.StatusNotFound, "not found", "")
		case errors.Is(err, usersdomain.ErrEmailTaken):
			writeError(w, http.StatusBadRequest, "user with this email already exists", "")
		case errors.Is(err, repdomain.ErrQuotaExceeded):
			writeError(w, http.StatusTooManyRequests, "ai quota exceeded", "")
		case errors.Is(err, sql.ErrNoRows):
			writeError(w, http.StatusNotFound, "not found", "")
		default:
			r.log.Error().Err(err).Str("path", req.URL.Path).Msg("unhandled error")
			writeError(w, http.StatusInternalServerError, "internal error", "")
		}
	}
}

// POST /api/auth/register
func (r *Router) handleRegister(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		FullName string `json:"fullName"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return &domain.ValidationError{Field: "body", Message: "invalid JSON"}
	}

	token, err := r.authSvc.Register(req.Context(), body.FullName, body.Username, body.Email, body.Password)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}

// POST /api/auth/login
func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return &domain.ValidationError{Field: "body", Message: "invalid JSON"}
	}

	token, err := r.authSvc.Login(req.Context(), body.Email, body.Password)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// GET /api/auth/user — resolve the session back into the account it belongs to
func (r *Router) handleCurrentUser(w http.ResponseWriter, req *http.Request) error {
	userID := middleware.GetUserFromContext(req.Context())

	u, err := r.authSvc.Users.FindByID(req.Context(), userID)
	if err != nil {
		return err
	}
	// password hash tidak pernah ikut (json:"-" di entity)
	return writeJSON(w, http.StatusOK, u)
}

// POST /api/predict — multipart {image, patientName, patientAge, patientSex, patientId}
func (r *Router) handlePredict(w http.ResponseWriter, req *http.Request) error {
	userID := middleware.GetUserFromContext(req.Context())

	req.Body = http.MaxBytesReader(w, req.Body, maxUploadBytes)
	if err := req.ParseMultipartForm(maxUploadBytes); err != nil {
		return &domain.ValidationError{Field: "image", Message: "invalid or oversized multipart body"}
	}

	var image []byte
	var filename string
	if file, header, err := req.FormFile("image"); err == nil {
		defer file.Close()
		image, err = io.ReadAll(file)
		if err != nil {
			return &domain.ValidationError{Field: "image", Message: "could not read image upload"}
		}
		filename = header.Filename
	}

	cmd := domain.SubmitRequest{
		Image:       image,
		Filename:    filename,
		PatientName: middleware.SanitizeString(req.FormValue("patientName")),
		PatientAge:  req.FormValue("patientAge"),
		PatientSex:  req.FormValue("patientSex"),
		PatientRef:  middleware.SanitizeString(req.FormValue("patientId")),
	}

	p, err := r.predSvc.Submit(req.Context(), userID, cmd)
	if err != nil {
		middleware.IncrementPredictionsFailed()
		return err
	}
	middleware.IncrementPredictions()

	// balikin record lengkap supaya frontend gak perlu round trip kedua
	return writeJSON(w, http.StatusOK, p)
}

// GET /api/history?patientId=&limit=
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	userID := middleware.GetUserFromContext(req.Context())
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	filter := req.URL.Query().Get("patientId")

	list, err := r.predSvc.History(req.Context(), userID, filter, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	if list == nil {
		list = []*domain.Prediction{}
	}
	return writeJSON(w, http.StatusOK, list)
}

// DELETE /api/history
func (r *Router) handleDeleteHistory(w http.ResponseWriter, req *http.Request) error {
	userID := middleware.GetUserFromContext(req.Context())

	n, err := r.predSvc.DeleteHistory(req.Context(), userID)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{"deleted": n})
}

// POST /api/reports — body: {"prediction_id": "<id>"}
func (r *Router) handleGenerateReport(w http.ResponseWriter, req *http.Request) error {
	userID := middleware.GetUserFromContext(req.Context())

	var body struct {
		PredictionID string `json:"prediction_id"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return &domain.ValidationError{Field: "body", Message: "invalid JSON"}
	}
	if body.PredictionID == "" {
		return &domain.ValidationError{Field: "prediction_id", Message: "prediction_id is required"}
	}

	rep, err := r.reportSvc.GenerateAndStore(req.Context(), userID, domain.PredictionID(body.PredictionID))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, rep)
}

// GET /api/reports?page=&page_size=
func (r *Router) handleListReports(w http.ResponseWriter, req *http.Request) error {
	userID := middleware.GetUserFromContext(req.Context())
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	list, err := r.reportSvc.List(req.Context(), userID, page, middleware.ValidatePageSize(size))
	if err != nil {
		return err
	}
	if list == nil {
		list = []*repdomain.Report{}
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /api/reports/{prediction_id} — newest report for one prediction
func (r *Router) handleLatestReport(w http.ResponseWriter, req *http.Request) error {
	userID := middleware.GetUserFromContext(req.Context())

	rep, err := r.reportSvc.LatestFor(req.Context(), userID, chi.URLParam(req, "prediction_id"))
	if err != nil {
		return err
	}
	if rep == nil {
		return sql.ErrNoRows
	}
	return writeJSON(w, http.StatusOK, rep)
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   msg,
		"details": details,
	})
}
