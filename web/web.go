// Package web serves the ledger entry form: a submission form, the ledger table with
// inline editing and an Excel export, plus a small JSON API for the same operations.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cgim/ledger-sheets/ledger"
	"github.com/cgim/ledger-sheets/log"
)

//go:embed templates/*.html
var templates embed.FS

type Options struct {
	Mode          string
	Title         string
	Link          string
	Timeout       time.Duration
	CheckRevision bool
}

type Server struct {
	ledger  *ledger.Ledger
	options Options
}

func NewServer(l *ledger.Ledger, options Options) *Server {
	if options.Title == "" {
		options.Title = "Delivery register"
	}

	if options.Timeout <= 0 {
		options.Timeout = 30 * time.Second
	}

	return &Server{
		ledger:  l,
		options: options,
	}
}

// Router returns the gin engine serving the form and API routes.
func (s *Server) Router() (*gin.Engine, error) {
	if s.options.Mode != "" {
		gin.SetMode(s.options.Mode)
	}

	t, err := template.New("").Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(requestLogger(), gin.Recovery())
	r.SetHTMLTemplate(t)

	r.GET("/", s.index)
	r.POST("/entries", s.submit)
	r.POST("/ledger", s.reconcile)
	r.GET("/export.xlsx", s.export)

	api := r.Group("/api")
	api.GET("/entries", s.list)
	api.POST("/entries", s.create)

	return r, nil
}

// Run serves HTTP requests on 'address' until the context is cancelled.
func (s *Server) Run(ctx context.Context, address string) error {
	r, err := s.Router()
	if err != nil {
		return err
	}

	srv := http.Server{
		Addr:              address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Infof("ledger form listening on http://%v", address)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err

	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdown); err != nil {
			return err
		}

		if err := <-errs; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	}
}

func (s *Server) context(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), s.options.Timeout)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := strings.TrimSpace(c.GetHeader("X-Request-Id"))
		if id == "" {
			id = uuid.NewString()
		}

		c.Set("request-id", id)
		c.Header("X-Request-Id", id)

		c.Next()

		fields := map[string]any{
			"request_id": id,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
		}

		if len(c.Errors) > 0 {
			fields["error"] = c.Errors.String()
			log.WithFields(fields).Warn("request")
		} else {
			log.WithFields(fields).Debug("request")
		}
	}
}

func status(err error) int {
	switch {
	case errors.Is(err, ledger.ErrValidation):
		return http.StatusBadRequest

	case errors.Is(err, ledger.ErrConflict):
		return http.StatusConflict

	case errors.Is(err, ledger.ErrStoreOperation), errors.Is(err, ledger.ErrLedgerAccess):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}
