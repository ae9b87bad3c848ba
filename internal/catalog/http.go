package catalog

import (
	"context"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ProductCatalog/internal/mediator"
	"ProductCatalog/pkg/kit"
)

type Server struct {
	Bus   *mediator.Mediator
	Store Store
	Log   *zap.Logger

	// StrictNotFound answers 404 for an unknown id. When false the
	// response is 200 with a JSON null body.
	StrictNotFound bool
	// WriteLimiter, when set, rate limits POST /products per client IP.
	WriteLimiter *kit.IPRateLimiter
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.ready)

	r.Get("/products", s.list)
	r.Get("/products/{id}", s.get)

	create := http.Handler(http.HandlerFunc(s.create))
	if s.WriteLimiter != nil {
		create = s.WriteLimiter.Middleware(create)
	}
	r.Method(http.MethodPost, "/products", create)

	return r
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
	defer cancel()

	if err := s.Store.Ping(ctx); err != nil {
		s.logger().Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	products, err := mediator.Send[[]Product](r.Context(), s.Bus, GetProducts{})
	if err != nil {
		s.logger().Error("list products failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if products == nil {
		products = []Product{}
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad id", map[string]any{"id": raw})
		return
	}

	p, err := mediator.Send[*Product](r.Context(), s.Bus, GetProductByID{ID: id})
	if err != nil {
		s.logger().Error("get product failed", zap.Error(err), zap.Int("id", id))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if p == nil && s.StrictNotFound {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var in Product
	if err := kit.DecodeJSON(w, r, &in); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	p, err := mediator.Send[Product](r.Context(), s.Bus, AddProduct{Product: in})
	if err != nil {
		s.logger().Error("add product failed", zap.Error(err), zap.Int("id", in.ID))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	w.Header().Set("Location", path.Join(r.URL.Path, strconv.Itoa(p.ID)))
	kit.WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) logger() *zap.Logger {
	if s.Log != nil {
		return s.Log
	}
	return zap.NewNop()
}
