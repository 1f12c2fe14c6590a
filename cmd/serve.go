package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mediareach/press-cli/internal/workflow"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the distribution session over HTTP",
	Long:  "Exposes one operator session as a small JSON API, so a front end can drive the same approval-gated workflow the run command does.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newSessionRouter(env.workflow),
		}

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// sessionAPI serializes HTTP access to the single operator session: the
// workflow is a sequential single-writer structure.
type sessionAPI struct {
	mu sync.Mutex
	w  *workflow.Workflow
}

func newSessionRouter(w *workflow.Workflow) http.Handler {
	api := &sessionAPI{w: w}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/session", func(r chi.Router) {
		r.Get("/state", api.getState)
		r.Post("/topic", api.setTopic)
		r.Put("/topics", api.setTopics)
		r.Post("/approve", api.approve)
		r.Post("/advance", api.advance)
		r.Post("/back", api.back)
		r.Post("/reset", api.reset)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (a *sessionAPI) getState(w http.ResponseWriter, _ *http.Request) {
	a.mu.Lock()
	st := a.w.State()
	a.mu.Unlock()
	writeJSON(w, http.StatusOK, st)
}

func (a *sessionAPI) setTopic(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Topic string `json:"topic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Topic == "" {
		writeError(w, http.StatusBadRequest, eris.New("topic is required"))
		return
	}

	a.mu.Lock()
	a.w.SetTopic(req.Topic)
	st := a.w.State()
	a.mu.Unlock()
	writeJSON(w, http.StatusOK, st)
}

func (a *sessionAPI) setTopics(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Topics []string `json:"topics"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, eris.New("invalid request body"))
		return
	}

	a.mu.Lock()
	a.w.SetTopics(req.Topics)
	st := a.w.State()
	a.mu.Unlock()
	writeJSON(w, http.StatusOK, st)
}

func (a *sessionAPI) approve(w http.ResponseWriter, _ *http.Request) {
	a.mu.Lock()
	a.w.Approve()
	st := a.w.State()
	a.mu.Unlock()
	writeJSON(w, http.StatusOK, st)
}

func (a *sessionAPI) advance(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	err := a.w.Advance(r.Context())
	st := a.w.State()
	a.mu.Unlock()

	if err != nil {
		writeJSON(w, http.StatusConflict, map[string]any{"error": err.Error(), "state": st})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (a *sessionAPI) back(w http.ResponseWriter, _ *http.Request) {
	a.mu.Lock()
	err := a.w.Back()
	st := a.w.State()
	a.mu.Unlock()

	if err != nil {
		writeJSON(w, http.StatusConflict, map[string]any{"error": err.Error(), "state": st})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (a *sessionAPI) reset(w http.ResponseWriter, _ *http.Request) {
	a.mu.Lock()
	a.w.Reset()
	st := a.w.State()
	a.mu.Unlock()
	writeJSON(w, http.StatusOK, st)
}
