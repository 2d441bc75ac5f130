package host

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"notelist/internal/logging"
)

// Server is a development stand-in for the live-set GraphQL endpoint.
type Server struct {
	addr    string
	version string
	service *Service
	logger  logging.Logger
	server  *http.Server
}

func NewServer(addr, version string, service *Service, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Server{
		addr:    addr,
		version: version,
		service: service,
		logger:  logger.With(logging.F("component", "host")),
	}
}

// Handler builds the routed, CORS-enabled and logged handler.
func (s *Server) Handler() http.Handler {
	gql := &graphqlHandler{service: s.service}
	router := mux.NewRouter().StrictSlash(true)
	router.Handle("/", gql).Methods(http.MethodPost)
	router.Handle("/graphql", gql).Methods(http.MethodPost)
	router.HandleFunc("/health", s.health).Methods(http.MethodGet)
	router.HandleFunc("/admin/select", s.selectClip).Methods(http.MethodPost)

	withCORS := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
	}).Handler(router)

	logged := LoggingMiddleware(s.logger, withCORS)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, _ := withOperationRecorder(r.Context())
		logged.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listener)
}

func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("host_listening", logging.F("addr", listener.Addr().String()))
		errCh <- s.server.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		s.logger.Info("host_stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"version": s.version,
		"pid":     os.Getpid(),
	})
}

type selectRequest struct {
	ClipID int `json:"clip_id"`
}

func (s *Server) selectClip(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if err := s.service.SelectDetailClip(r.Context(), req.ClipID); err != nil {
		status := http.StatusInternalServerError
		var svcErr *ServiceError
		if errors.As(err, &svcErr) && svcErr.Kind == ServiceErrorNotFound {
			status = http.StatusNotFound
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"clip_id": req.ClipID})
}
