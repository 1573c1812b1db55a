// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the conversion pipeline over HTTP: an upload form,
// a multipart conversion endpoint, and read access to conversion history.
package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sathanbabu-png/PDFConverter/internal/history"
	"github.com/sathanbabu-png/PDFConverter/internal/pipeline"
	"github.com/sathanbabu-png/PDFConverter/pkg/types"
)

//go:embed index.html
var indexHTML []byte

const (
	msgNotPDF   = "Please select a valid PDF file."
	maxMemory   = 32 << 20
	headerID    = "X-Conversion-ID"
	headerSteps = "X-Conversion-Steps"
)

// Converter runs one upload through the pipeline.
type Converter interface {
	Run(ctx context.Context, info types.FileInfo, data []byte, format types.OutputFormat) (pipeline.Result, error)
}

// History is the read side of the conversion history.
type History interface {
	List(ctx context.Context, limit int) ([]types.ConversionRecord, error)
	Get(ctx context.Context, id string) (types.ConversionRecord, error)
}

// Server handles HTTP requests. History may be nil, in which case the
// history endpoints answer 404.
type Server struct {
	conv      Converter
	hist      History
	log       *zap.Logger
	maxUpload int64
}

// New returns a server. A nil logger disables logging.
func New(conv Converter, hist History, cfg types.ServerConfig, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	maxMB := cfg.MaxUploadMB
	if maxMB <= 0 {
		maxMB = types.DefaultConfig().Server.MaxUploadMB
	}
	return &Server{conv: conv, hist: hist, log: log, maxUpload: maxMB << 20}
}

// Handler returns the routed handler wrapped with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /api/convert", s.handleConvert)
	mux.HandleFunc("GET /api/history", s.handleHistoryList)
	mux.HandleFunc("GET /api/history/{id}", s.handleHistoryGet)
	mux.HandleFunc("GET /health", s.handleHealth)
	return s.logRequests(mux)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down,
// waiting up to shutdownTimeout for in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln, shutdownTimeout)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("server listening", zap.String("addr", ln.Addr().String()))
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down", zap.Duration("timeout", shutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > s.maxUpload {
		writeError(w, http.StatusRequestEntityTooLarge, s.tooLargeMsg())
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, s.tooLargeMsg())
			return
		}
		writeError(w, http.StatusBadRequest, msgNotPDF)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, hdr, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, msgNotPDF)
		return
	}
	defer file.Close()

	format := types.FormatWord
	if v := r.FormValue("format"); v != "" {
		if format, err = types.ParseOutputFormat(v); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("reading upload: %v", err))
		return
	}

	info := types.FileInfo{Name: hdr.Filename, Size: int64(len(data)), Type: uploadType(hdr.Header.Get("Content-Type"), data)}
	res, err := s.conv.Run(r.Context(), info, data, format)
	if errors.Is(err, pipeline.ErrNotPDF) {
		writeError(w, http.StatusBadRequest, msgNotPDF)
		return
	}
	if err != nil {
		s.log.Warn("conversion failed",
			zap.String("id", res.ID),
			zap.String("file", info.Name),
			zap.String("format", string(format)),
			zap.Error(err))
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error": err.Error(),
			"id":    res.ID,
			"steps": res.Steps,
		})
		return
	}

	s.log.Info("conversion completed",
		zap.String("id", res.ID),
		zap.String("file", info.Name),
		zap.String("size", info.SizeMB()),
		zap.String("output", res.Name),
		zap.Int("output_bytes", len(res.Data)))

	steps, _ := json.Marshal(res.Steps)
	w.Header().Set("Content-Type", res.MimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.Header().Set(headerID, res.ID)
	w.Header().Set(headerSteps, string(steps))
	w.WriteHeader(http.StatusOK)
	w.Write(res.Data)
}

func (s *Server) tooLargeMsg() string {
	return fmt.Sprintf("file exceeds the %d MB upload limit", s.maxUpload>>20)
}

// uploadType trusts a specific declared type and sniffs generic ones.
func uploadType(declared string, data []byte) string {
	mt, _, err := mime.ParseMediaType(declared)
	if err != nil || mt == "" || mt == "application/octet-stream" {
		return pipeline.DetectType(data)
	}
	return mt
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	if s.hist == nil {
		writeError(w, http.StatusNotFound, "history is disabled")
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", v))
			return
		}
		limit = n
	}
	recs, err := s.hist.List(r.Context(), limit)
	if err != nil {
		s.log.Error("listing history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "listing history failed")
		return
	}
	if recs == nil {
		recs = []types.ConversionRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleHistoryGet(w http.ResponseWriter, r *http.Request) {
	if s.hist == nil {
		writeError(w, http.StatusNotFound, "history is disabled")
		return
	}
	rec, err := s.hist.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, history.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.log.Error("reading history", zap.String("id", r.PathValue("id")), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "reading history failed")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)
		if sw.status == 0 {
			sw.status = http.StatusOK
		}
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Int("bytes", sw.bytes),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", strings.TrimSpace(r.RemoteAddr)))
	})
}
