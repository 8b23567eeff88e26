package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/compliance-cli/internal/dataset"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the compliance analysis HTTP API",
	Long:  "Exposes the scanner and assistant over HTTP. Requests run synchronously to completion; the knowledge base is scoped to the server process.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initSession(cfg)
		if err != nil {
			return err
		}
		defer e.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/analyze", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Columns []string   `json:"columns"`
				Rows    [][]string `json:"rows"`
				Explain bool       `json:"explain"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
				return
			}
			if len(body.Columns) == 0 || len(body.Rows) == 0 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "columns and rows are required"})
				return
			}

			d := dataset.New(body.Columns, body.Rows)
			result := e.Session.AnalyzeDataset(req.Context(), d, body.Explain)
			writeJSON(w, http.StatusOK, result)
		})

		r.Post("/kb", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Text string `json:"text"`
				Name string `json:"name"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
				return
			}
			if body.Text == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
				return
			}
			if body.Name == "" {
				body.Name = "document"
			}

			result := e.Session.LoadDocument(req.Context(), body.Text, body.Name)
			writeJSON(w, http.StatusOK, result)
		})

		r.Post("/ask", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Question string `json:"question"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
				return
			}
			if body.Question == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
				return
			}

			result := e.Session.Ask(req.Context(), body.Question)
			writeJSON(w, http.StatusOK, result)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
