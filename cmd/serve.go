package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/fundmatch/internal/matcher"
	"github.com/sells-group/fundmatch/internal/model"
	"github.com/sells-group/fundmatch/internal/store"
)

var (
	servePort    int
	serveOffline bool
	serveDataset string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for matching requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := matcher.ValidateConfig(cfg.Match); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		datasetPath := serveDataset
		if datasetPath == "" {
			datasetPath = cfg.Dataset.Path
		}
		funds, err := loadFunds(ctx, st, datasetPath)
		if err != nil {
			return err
		}

		api := &apiServer{
			st:   st,
			pipe: newPipeline(serveOffline, funds),
			topK: cfg.Match.TopK,
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.router(),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port), zap.Int("funds", len(funds)))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// apiServer holds the matching pipeline shared by all HTTP handlers. The
// fund catalog is loaded once at startup.
type apiServer struct {
	st   store.Store
	pipe *pipeline
	topK int
}

func (s *apiServer) router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/match", s.handleMatch)
		r.Get("/funds", s.handleFunds)
		r.Get("/runs", s.handleRuns)
		r.Get("/runs/{id}", s.handleRun)
	})
	return r
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// matchRequest carries either a URL to fetch and extract, or an
// already-built company profile to score directly.
type matchRequest struct {
	URL      string                `json:"url,omitempty"`
	Profile  *model.CompanyProfile `json:"company_profile,omitempty"`
	Context  string                `json:"context,omitempty"`
	DealType string                `json:"deal_type,omitempty"`
	TopK     int                   `json:"k,omitempty"`
	Save     bool                  `json:"save,omitempty"`
}

func (r *matchRequest) companyURL() string {
	if r.URL != "" {
		return r.URL
	}
	return r.Profile.URL
}

func (s *apiServer) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" && req.Profile == nil {
		writeError(w, http.StatusBadRequest, "url or company_profile is required")
		return
	}

	topK := req.TopK
	if topK == 0 {
		topK = s.topK
	}

	var run *matchRunHandle
	if req.Save {
		var err error
		run, err = beginRun(r.Context(), s.st, req.companyURL())
		if err != nil {
			zap.L().Error("create run failed", zap.String("company", req.companyURL()), zap.Error(err))
		}
	}

	var result *model.MatchResult
	var err error
	if req.Profile != nil {
		result, err = s.pipe.matchProfile(r.Context(), req.Profile, req.Context, req.DealType, topK)
	} else {
		result, err = s.pipe.match(r.Context(), req.URL, req.Context, req.DealType, topK)
	}
	if err != nil {
		run.fail(r.Context(), err)
		zap.L().Error("match failed", zap.String("company", req.companyURL()), zap.Error(err))
		writeError(w, http.StatusBadGateway, "match failed")
		return
	}
	run.complete(r.Context(), result)

	writeJSON(w, http.StatusOK, result)
}

func (s *apiServer) handleFunds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"funds": s.pipe.funds,
		"count": len(s.pipe.funds),
	})
}

func (s *apiServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	filter := store.RunFilter{
		Status:     model.RunStatus(r.URL.Query().Get("status")),
		CompanyURL: r.URL.Query().Get("url"),
	}

	runs, err := s.st.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("list runs failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list runs failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}

func (s *apiServer) handleRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.st.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().BoolVar(&serveOffline, "offline", false, "use heuristic extraction, no API calls")
	serveCmd.Flags().StringVar(&serveDataset, "dataset", "", "fund catalog file (default from config, or the store)")
	rootCmd.AddCommand(serveCmd)
}
