package http

import (
	"encoding/json"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/platform/logger"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// MaxRequestBytes bounds any request body. hostListing carries a base64 image.
const MaxRequestBytes = 10 << 20

// NewRouter mounts the GraphQL endpoint behind the viewer middleware and a public health check.
func NewRouter(graph http.Handler, viewers middleware.ViewerResolver, serviceName string, log *logger.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.Logger(log.Named("HTTP")))

	r.Get("/healthz", handleHealth)

	r.Group(func(gr chi.Router) {
		gr.Use(middleware.RequestSizeLimit(MaxRequestBytes))
		gr.Use(middleware.Viewer(viewers, log.Named("ViewerMiddleware")))
		gr.Handle("/graphql", graph)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
