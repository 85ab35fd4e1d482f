package httpapi

import (
	"net/http"

	"github.com/godilite/gradebook/internal/observability"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type RouterOptions struct {
	Metrics *observability.Metrics
	Limiter *rate.Limiter
	Logger  *zap.Logger
}

// NewRouter mounts the grade routes under /grades together with /health and,
// when metrics are configured, /metrics.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics.Handler()).Methods(http.MethodGet)
	}

	g := r.PathPrefix("/grades").Subrouter()
	g.Use(rateLimit(opts.Limiter), routeMetrics(opts.Metrics))

	g.HandleFunc("/student/{id}", h.studentRedirect).Methods(http.MethodGet)

	g.HandleFunc("/learner/{id}/class/average", h.classAverages).Methods(http.MethodGet)
	g.HandleFunc("/learner/{id}/average", h.overallAverage).Methods(http.MethodGet)
	g.HandleFunc("/learner/{id}/composite", h.weightedComposite).Methods(http.MethodGet)
	g.HandleFunc("/learner/{id}", h.listByLearner).Methods(http.MethodGet)
	g.HandleFunc("/learner/{id}", h.deleteByLearner).Methods(http.MethodDelete)

	g.HandleFunc("/class/{id}", h.listByClass).Methods(http.MethodGet)
	g.HandleFunc("/class/{id}", h.deleteByClass).Methods(http.MethodDelete)

	g.HandleFunc("/stats", h.cohortStats).Methods(http.MethodGet)
	g.HandleFunc("/stats/{id}", h.cohortStats).Methods(http.MethodGet)

	g.HandleFunc("", h.createRecord).Methods(http.MethodPost)
	g.HandleFunc("/", h.createRecord).Methods(http.MethodPost)
	g.HandleFunc("/{id}/add", h.editScore("add score", addScore)).Methods(http.MethodPatch)
	g.HandleFunc("/{id}/remove", h.editScore("remove score", removeScore)).Methods(http.MethodPatch)
	g.HandleFunc("/{id}", h.getRecord).Methods(http.MethodGet)
	g.HandleFunc("/{id}", h.deleteRecord).Methods(http.MethodDelete)

	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(zap.NewStdLog(logger.Named("http-recovery"))),
		handlers.PrintRecoveryStack(true),
	)
	return recovery(handlers.ProxyHeaders(requestLogger(logger.Named("http"))(r)))
}
