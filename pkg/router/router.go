package router

import (
	"context"
	"net/http"

	"github.com/homequest/backend/config"
	"github.com/homequest/backend/pkg/logger"
	"github.com/homequest/backend/pkg/xcontext"

	"github.com/rs/cors"
	"gorm.io/gorm"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc may return a derived context which is passed to the
// following middlewares and the handler.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc is always called after the request is handled, even if a
// middleware or the handler returned an error.
type CloserFunc func(ctx context.Context)

type Router struct {
	ctx context.Context

	routes  map[string]map[string]http.HandlerFunc
	befores []MiddlewareFunc
	afters  []MiddlewareFunc
	closers []CloserFunc
}

func New(ctx context.Context, db *gorm.DB, cfg config.Configs, log logger.Logger) *Router {
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, log)
	ctx = xcontext.WithDB(ctx, db)

	return &Router{
		ctx:    ctx,
		routes: make(map[string]map[string]http.HandlerFunc),
	}
}

// Branch creates a child router sharing the same routing table. Middlewares
// added to the branch do not affect its parent.
func (r *Router) Branch() *Router {
	return &Router{
		ctx:     r.ctx,
		routes:  r.routes,
		befores: append([]MiddlewareFunc{}, r.befores...),
		afters:  append([]MiddlewareFunc{}, r.afters...),
		closers: append([]CloserFunc{}, r.closers...),
	}
}

func (r *Router) Before(m MiddlewareFunc) {
	r.befores = append(r.befores, m)
}

func (r *Router) After(m MiddlewareFunc) {
	r.afters = append(r.afters, m)
}

func (r *Router) AddCloser(c CloserFunc) {
	r.closers = append(r.closers, c)
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.register(http.MethodGet, pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.register(http.MethodPost, pattern, wrapHandler(r, http.MethodPost, handler))
}

func (r *Router) register(method, pattern string, h http.HandlerFunc) {
	if _, ok := r.routes[pattern]; !ok {
		r.routes[pattern] = make(map[string]http.HandlerFunc)
	}

	if _, ok := r.routes[pattern][method]; ok {
		panic("duplicated route " + method + " " + pattern)
	}

	r.routes[pattern][method] = h
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	methods, ok := r.routes[req.URL.Path]
	if !ok {
		http.NotFound(w, req)
		return
	}

	h, ok := methods[req.Method]
	if !ok {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	h(w, req)
}

// Handler returns the http.Handler of the whole routing table, wrapped with
// the CORS policy of the server.
func (r *Router) Handler(cfg config.ServerConfigs) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	return c.Handler(r)
}
