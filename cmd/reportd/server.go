package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/wudi/reportkit/report"
)

type server struct {
	assembler *report.Assembler
	maxBody   int64
	logger    *zap.Logger
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/stages", s.handleStages)
	r.Get("/seed", s.handleSeed)
	r.Post("/reports", s.handleReport)
	return r
}

func (s *server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func (s *server) handleStages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"stages": report.Stages()})
}

func (s *server) handleSeed(w http.ResponseWriter, r *http.Request) {
	seed, err := report.BlankSeed(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.send(w, r, seed)
}

func (s *server) handleReport(w http.ResponseWriter, r *http.Request) {
	var in report.Input
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := json.NewDecoder(body).Decode(&in); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(in.Seed) == 0 {
		seed, err := report.BlankSeed(r.Context())
		if err != nil {
			s.fail(w, r, err)
			return
		}
		in.Seed = seed
	}
	pdf, err := s.assembler.Assemble(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.send(w, r, pdf)
}

// send writes a PDF, or its base64 text when the client asks for text.
func (s *server) send(w http.ResponseWriter, r *http.Request, pdf []byte) {
	if strings.Contains(r.Header.Get("Accept"), "text/plain") {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(base64.StdEncoding.EncodeToString(pdf)))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="report.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, report.ErrInvalidSeed):
		status = http.StatusBadRequest
	case errors.Is(err, report.ErrAssetUnavailable):
		status = http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	fields := []zap.Field{zap.Error(err), zap.Int("status", status)}
	var se *report.StageError
	if errors.As(err, &se) {
		fields = append(fields, zap.String("stage", se.Stage))
	}
	s.logger.Warn("report failed", fields...)
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
