package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"hetman-rag/internal/handlers"
	"hetman-rag/internal/indexer"
	"hetman-rag/internal/photo"
	"hetman-rag/internal/rag"
	"hetman-rag/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Engine     *rag.Engine
	Photos     *photo.Lookup
	Pipeline   *indexer.Pipeline
	Store      vectorstore.VectorStore
	Collection string
	PhotoDir   string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)
	r.Use(LoggerMiddleware)

	askHandler := handlers.NewAskHandler(deps.Engine, deps.Photos)
	indexHandler := handlers.NewIndexHandler(deps.Pipeline)
	healthHandler := handlers.NewHealthHandler(deps.Store, deps.Collection)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/ask", askHandler)
		r.Method(http.MethodPost, "/index", indexHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
	})

	// Resolved photo paths point into this directory.
	r.Handle("/images/*", http.StripPrefix("/images/", http.FileServer(http.Dir(deps.PhotoDir))))

	return r
}
