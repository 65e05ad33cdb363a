package web

import (
	"crypto/subtle"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"schedcal/internal/config"
	"schedcal/internal/docread"
	"schedcal/internal/extract"
	"schedcal/internal/ics"
	appLog "schedcal/internal/log"
	"schedcal/internal/model"
	"schedcal/internal/spool"
)

// multipartMemory is how much of a multipart body is buffered in memory
// before parts spill to temporary files.
const multipartMemory = 8 << 20

// Server provides the upload, export and stats APIs plus the static UI.
type Server struct {
	cfg    *config.Config
	orch   *extract.Orchestrator
	spool  *spool.Spool
	router chi.Router

	// now stamps exported calendars.
	now func() time.Time
}

// embeddedStatic contains the single-page upload UI.
//
//go:embed all:static
var embeddedStatic embed.FS

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, orch *extract.Orchestrator, sp *spool.Spool) *Server {
	s := &Server{
		cfg:   cfg,
		orch:  orch,
		spool: sp,
		now:   time.Now,
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	// /health 는 항상 무인증으로 노출한다.
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.basicAuthEnabled() {
			appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
			r.Use(s.basicAuthMiddleware)
		}

		r.Post("/api/upload", s.handleUpload)
		r.Post("/api/ics", s.handleICS)
		r.Get("/api/stats", s.handleStats)

		r.Handle("/*", s.staticFileServer())
	})

	s.router = r
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// 빈 사용자명 또는 비밀번호가 설정된 경우에는 비활성화로 취급한다.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="schedcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// requestLogger logs one line per request through the app logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		appLog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleUpload decodes every uploaded file and extracts the batch.
//
// POST /api/upload (multipart, field "files")
//   - no files:       400 {"error":"No files uploaded."}
//   - decode failure: 500 {"error":"Failed to process outlines.","details":...}
//     for the whole batch
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.cfg != nil && s.cfg.Upload.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Upload too large.")
			return
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			appLog.Error("multipart parse failed", err)
		}
		writeError(w, http.StatusBadRequest, "No files uploaded.")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "No files uploaded.")
		return
	}

	docs := make([]extract.Document, 0, len(files))
	for _, fh := range files {
		doc, err := s.readUpload(fh)
		if err != nil {
			appLog.Error("upload decode failed", err, "file", fh.Filename)
			writeJSON(w, http.StatusInternalServerError, errorDetails{
				Error:   "Failed to process outlines.",
				Details: err.Error(),
			})
			return
		}
		docs = append(docs, doc)
	}

	appLog.Info("processing upload batch", "documents", len(docs), "ai", s.orch.AIEnabled())
	writeJSON(w, http.StatusOK, s.orch.ProcessBatch(r.Context(), docs))
}

// readUpload spools one part to disk and decodes it by media type.
func (s *Server) readUpload(fh *multipart.FileHeader) (extract.Document, error) {
	f, err := fh.Open()
	if err != nil {
		return extract.Document{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	path, err := s.spool.Save(f)
	if err != nil {
		return extract.Document{}, err
	}
	defer s.spool.Remove(path)

	mediaType := docread.Detect(fh.Filename, fh.Header.Get("Content-Type"))
	text, err := docread.Decode(path, mediaType)
	if err != nil {
		return extract.Document{}, fmt.Errorf("%s: %w", fh.Filename, err)
	}
	return extract.Document{Name: fh.Filename, Text: text}, nil
}

type icsRequest struct {
	Events []model.ExportEvent `json:"events"`
}

// handleICS serializes posted events into a downloadable calendar.
func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	var req icsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Events) == 0 {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("No events."))
		return
	}

	body := ics.Serialize(req.Events, s.now())
	appLog.Info("calendar exported", "events", len(req.Events))

	w.Header().Set("Content-Type", "text/calendar")
	w.Header().Set("Content-Disposition", "attachment; filename=schedule.ics")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

type statsResponse struct {
	AIEnabled bool `json:"ai_enabled"`
	extract.StatsSnapshot
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statsResponse{
		AIEnabled:     s.orch.AIEnabled(),
		StatsSnapshot: s.orch.Stats(),
	})
}

// staticFileServer serves the embedded UI from internal/web/static.
func (s *Server) staticFileServer() http.Handler {
	sub, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		appLog.Error("failed to initialize embedded static filesystem", err)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "static UI not available", http.StatusServiceUnavailable)
		})
	}

	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 절대 /api/* 요청은 정적 UI에서 서빙하지 않는다.
		if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}

type errorDetails struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorDetails{Error: msg})
}
