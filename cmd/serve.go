package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/recon-hq/recon/internal/recommend"
	"github.com/recon-hq/recon/pkg/tmdb"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the movie API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		svc, client, err := initService()
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(svc, client),
		}

		// Graceful shutdown. The signal context is already canceled by the
		// time we get here, so drain on a fresh timeout instead.
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(drainCtx); err != nil {
				zap.L().Warn("server shutdown", zap.Error(err))
			}
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// newRouter builds the API routes. The frontend is served from another
// origin, so CORS stays wide open for GETs.
func newRouter(svc *recommend.Service, client tmdb.Client) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Proxy endpoints run soft-fail: a degraded upstream yields an empty
	// result set with a 200 rather than a hard error.
	r.Get("/api/movies/popular", func(w http.ResponseWriter, r *http.Request) {
		payload, err := client.PopularMovies(r.Context(), tmdb.SoftFail())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, payload)
	})

	r.Get("/api/movies/search", func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("query"))
		if query == "" {
			writeJSON(w, http.StatusOK, map[string]any{"results": []any{}})
			return
		}
		payload, err := client.SearchMovies(r.Context(), query, tmdb.SoftFail())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, payload)
	})

	r.Get("/api/movies/recommend/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := movieID(w, r)
		if !ok {
			return
		}
		result, err := svc.Recommend(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	r.Get("/api/movies/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := movieID(w, r)
		if !ok {
			return
		}
		movie, err := svc.Movie(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, movie)
	})

	return r
}

// movieID parses the id path parameter, writing a 400 when it is not a
// positive integer.
func movieID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeJSONError(w, http.StatusBadRequest, "invalid movie id")
		return 0, false
	}
	return id, true
}

// writeError maps upstream error kinds to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var statusErr *tmdb.StatusError
	switch {
	case errors.Is(err, tmdb.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, tmdb.ErrUnavailable),
		errors.Is(err, tmdb.ErrMalformed),
		errors.As(err, &statusErr):
		status = http.StatusBadGateway
	}

	zap.L().Error("request failed",
		zap.Int("status", status),
		zap.Error(err),
	)
	writeJSONError(w, status, eris.Cause(err).Error())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// requestLogger tags each request with an id and logs its outcome.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r)

		zap.L().Info("request handled",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
