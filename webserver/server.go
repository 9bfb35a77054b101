package webserver

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/malonaz/carscout/internal/agent"
	"github.com/malonaz/carscout/internal/configuration"
	"github.com/malonaz/carscout/internal/conversation"
	"github.com/malonaz/carscout/internal/debug"
	"github.com/malonaz/carscout/internal/search"
)

//go:embed templates
var templatesFS embed.FS

var log = debug.GetLogger()

// Client is the part of the service the web surface needs.
type Client interface {
	search.Client
	conversation.Client
	Health(ctx context.Context) (*agent.HealthResponse, error)
}

// NewServeCmd instantiates and returns the serve command.
func NewServeCmd(config *configuration.Config) *cobra.Command {
	var opts struct {
		Port int
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the search and chat pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := agent.NewClient(config.ServiceURL, config.Timeout())
			server, err := New(config, client)
			if err != nil {
				return err
			}
			if opts.Port == 0 {
				opts.Port = config.Web.Port
			}
			return server.Start(opts.Port)
		},
	}

	cmd.Flags().IntVarP(&opts.Port, "port", "p", 0, "Port to serve on (defaults to web.port)")
	return cmd
}

// Server renders the search and chat pages.
type Server struct {
	client   Client
	config   *configuration.Config
	tmpl     *template.Template
	sessions *sessionStore
}

// New parses the templates and instantiates a server.
func New(config *configuration.Config, client Client) (*Server, error) {
	funcMap := sprig.HtmlFuncMap()
	funcMap["formatTurn"] = formatTurn
	funcMap["paragraphs"] = paragraphs
	funcMap["timestamp"] = func(t time.Time) string {
		return formatTimestamp(t, config.Chat.TimeFormat)
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS,
		"templates/*.tmpl",
		"templates/includes/*.tmpl",
		"templates/pages/*.tmpl",
	)
	if err != nil {
		return nil, errors.Wrap(err, "parsing templates")
	}

	return &Server{
		client:   client,
		config:   config,
		tmpl:     tmpl,
		sessions: newSessionStore(config.Web.MaxSessions),
	}, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/search", s.handleSearch)
	r.Get("/healthz", s.handleHealth)
	r.Route("/chat", func(r chi.Router) {
		r.Get("/", s.handleChatStart)
		r.Get("/{sessionID}", s.handleChat)
		r.Post("/{sessionID}/messages", s.handleChatMessage)
		r.Post("/{sessionID}/new", s.handleChatNew)
	})
	return r
}

// Start serves on port until the listener fails.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	fmt.Printf("Server starting on http://localhost%s\n", addr)
	log.Info("serving", "addr", addr, "service_url", s.config.ServiceURL)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health, err := s.client.Health(r.Context())
	if err != nil {
		log.Warn("health check failed", "error", err)
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	status := http.StatusOK
	if !health.Healthy() {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, health)
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		log.Error("rendering template", "template", name, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// requestLogger logs one line per request to the debug logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info("request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}
