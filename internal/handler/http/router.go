package http

import (
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/wfh-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	AllowedOrigins []string
	Env            string
	Version        string
	LogLevel       slog.Level
	// LogOutput defaults to os.Stdout.
	LogOutput io.Writer
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}

// NewLogger returns the ECS-formatted JSON logger used for request logs.
func NewLogger(w io.Writer, level slog.Level, env, version string) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(false)
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "wfh-cmlabs"),
		slog.String("version", version),
		slog.String("env", env),
	)
}

func NewRouter(
	JWTService jwt.Service,
	opts RouterOptions,
	arrangementHandler ArrangementHandler,
	delegationHandler DelegationHandler,
	auditHandler AuditHandler,
	reportHandler ReportHandler,
) *chi.Mux {
	r := chi.NewRouter()

	out := opts.LogOutput
	if out == nil {
		out = os.Stdout
	}
	logger := NewLogger(out, opts.LogLevel, opts.Env, opts.Version)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/arrangements", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionArrangementCreate)).Post("/", arrangementHandler.Submit)
				r.With(middleware.RequirePermission(user.PermissionArrangementCreate)).Post("/preview", arrangementHandler.Preview)
				r.With(middleware.RequirePermission(user.PermissionArrangementViewOwn)).Get("/my", arrangementHandler.ListMine)
				r.With(middleware.RequirePermission(user.PermissionArrangementViewTeam)).Get("/team", arrangementHandler.ListTeam)
				r.Get("/batches/{batchID}", arrangementHandler.GetBatch)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", arrangementHandler.Get)
					r.Post("/transitions", arrangementHandler.Transition)
				})
			})

			r.Route("/delegations", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionDelegationManage))
				r.Post("/", delegationHandler.Delegate)
				r.Post("/respond", delegationHandler.Respond)
				r.Post("/undelegate", delegationHandler.Undelegate)
				r.Get("/my", delegationHandler.ListMine)
				r.Get("/incoming", delegationHandler.ListIncoming)
			})

			r.Get("/audit-logs", auditHandler.List)

			r.Route("/reports", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionReportsView))
				r.Get("/statistics", reportHandler.GetStatistics)
			})
		})
	})
	return r
}
