package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/agora-platform/agora/internal/model"
	"github.com/agora-platform/agora/internal/worker"
)

// Store is the persistence surface the API depends on
type Store interface {
	CreateTopic(ctx context.Context, question, createdBy string) (model.Topic, error)
	GetTopic(ctx context.Context, id int64) (model.Topic, error)
	ListTopics(ctx context.Context) ([]model.TopicSummary, error)

	CreateArgument(ctx context.Context, topicID int64, side model.Side, title, content, author, sources string) (int64, error)
	GetArgument(ctx context.Context, id int64) (model.Argument, error)
	ListArguments(ctx context.Context, topicID int64, side model.Side) ([]model.Argument, error)
	ListArgumentsByValidity(ctx context.Context, topicID int64, side model.Side) ([]model.Argument, error)
	UpdateArgumentValidity(ctx context.Context, id int64, verdict model.Verdict) error
	UpvoteArgument(ctx context.Context, id int64) (int, error)
	DownvoteArgument(ctx context.Context, id int64) (int, error)
}

// Verifier runs the argument verification pipeline
type Verifier interface {
	VerifyArgument(ctx context.Context, title, content, question string) (model.Verdict, error)
}

// Server exposes the debate platform over HTTP
type Server struct {
	store    Store
	verifier Verifier
	batch    *worker.BatchVerifier
	logger   *log.Logger
}

// NewServer creates an API server
func NewServer(store Store, verifier Verifier, workerCfg model.WorkerConfig, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		store:    store,
		verifier: verifier,
		batch:    worker.NewBatchVerifier(verifier, workerCfg),
		logger:   logger,
	}
}

// Router builds the HTTP route table
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/", s.handleRoot).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/topics", s.handleCreateTopic).Methods("POST")
	api.HandleFunc("/topics", s.handleListTopics).Methods("GET")
	api.HandleFunc("/topics/{id:[0-9]+}", s.handleGetTopic).Methods("GET")
	api.HandleFunc("/topics/{id:[0-9]+}/arguments", s.handleCreateArgument).Methods("POST")
	api.HandleFunc("/topics/{id:[0-9]+}/arguments", s.handleListArguments).Methods("GET")
	api.HandleFunc("/topics/{id:[0-9]+}/arguments/verified", s.handleVerifiedArguments).Methods("GET")
	api.HandleFunc("/topics/{id:[0-9]+}/verify-all", s.handleVerifyAll).Methods("POST")
	api.HandleFunc("/arguments/{id:[0-9]+}/upvote", s.handleUpvote).Methods("POST")
	api.HandleFunc("/arguments/{id:[0-9]+}/downvote", s.handleDownvote).Methods("POST")
	api.HandleFunc("/arguments/{id:[0-9]+}/verify", s.handleVerifyArgument).Methods("POST")

	return r
}

// ListenAndServe runs the server until the context is cancelled
func (s *Server) ListenAndServe(ctx context.Context, cfg model.ServerConfig) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("listening on %s", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Printf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
