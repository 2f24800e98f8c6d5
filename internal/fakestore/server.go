// Package fakestore serves a local copy of the demo store API. Tests run the
// client against it and cmd/fakestore serves it for offline development.
package fakestore

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-faster/jx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/five82/shelf/internal/product"
)

// Server is an in-memory store API.
type Server struct {
	log      *zap.Logger
	products []product.Product

	mu      sync.Mutex
	users   []user
	tokens  map[string]string
	failing bool
	latency time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithProducts replaces the fixture catalog.
func WithProducts(items []product.Product) Option {
	return func(s *Server) { s.products = items }
}

// WithLatency delays every response.
func WithLatency(d time.Duration) Option {
	return func(s *Server) { s.latency = d }
}

// WithLogger logs requests to lg.
func WithLogger(lg *zap.Logger) Option {
	return func(s *Server) { s.log = lg }
}

// New returns a server seeded with Fixtures and the demo account.
func New(opts ...Option) *Server {
	s := &Server{
		log:      zap.NewNop(),
		products: Fixtures(),
		users: []user{{
			ID:       1,
			Email:    "john@gmail.com",
			Username: DemoUsername,
			Password: DemoPassword,
		}},
		tokens: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetFailing makes every catalog endpoint answer 500 until cleared.
func (s *Server) SetFailing(failing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = failing
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(s.delay)

	r.Route("/products", func(r chi.Router) {
		r.Use(s.outage)
		r.Get("/", s.listProducts)
		r.Get("/categories", s.listCategories)
		r.Get("/category/{category}", s.listCategory)
		r.Get("/{id}", s.getProduct)
	})
	r.Post("/auth/login", s.login)
	r.Post("/users", s.createUser)
	return r
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	items := s.products
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 && n < len(items) {
			items = items[:n]
		}
	}
	writeJSON(w, http.StatusOK, encodeProducts(items))
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeText(w, http.StatusBadRequest, "product id should be provided")
		return
	}
	for _, p := range s.products {
		if p.ID == id {
			var e jx.Encoder
			encodeProduct(&e, p)
			writeJSON(w, http.StatusOK, e.Bytes())
			return
		}
	}
	// The demo API answers unknown ids with an empty 200.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
}

func (s *Server) listCategories(w http.ResponseWriter, _ *http.Request) {
	cat := product.Catalog{Items: s.products}
	writeJSON(w, http.StatusOK, encodeStrings(cat.Categories()))
}

func (s *Server) listCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	var items []product.Product
	for _, p := range s.products {
		if strings.EqualFold(p.Category, category) {
			items = append(items, p)
		}
	}
	writeJSON(w, http.StatusOK, encodeProducts(items))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeText(w, http.StatusBadRequest, "unreadable body")
		return
	}
	username, password, err := decodeLogin(body)
	if err != nil || username == "" || password == "" {
		writeText(w, http.StatusBadRequest, "username and password are not provided in JSON format")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username && u.Password == password {
			token := uuid.NewString()
			s.tokens[token] = username
			writeJSON(w, http.StatusOK, encodeField("token", func(e *jx.Encoder) { e.Str(token) }))
			return
		}
	}
	writeText(w, http.StatusUnauthorized, "username or password is incorrect")
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeText(w, http.StatusBadRequest, "unreadable body")
		return
	}
	u, err := decodeUser(body)
	if err != nil || u.Username == "" || u.Password == "" || u.Email == "" {
		writeText(w, http.StatusBadRequest, "data is undefined")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			writeText(w, http.StatusConflict, "username already taken")
			return
		}
	}
	u.ID = len(s.users) + 1
	s.users = append(s.users, u)
	writeJSON(w, http.StatusOK, encodeField("id", func(e *jx.Encoder) { e.Int(u.ID) }))
}

// ValidToken reports whether token was issued by this server.
func (s *Server) ValidToken(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tokens[token]
	return ok
}

func (s *Server) outage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		failing := s.failing
		s.mu.Unlock()
		if failing {
			writeText(w, http.StatusInternalServerError, "service unavailable")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) delay(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.latency > 0 {
			select {
			case <-time.After(s.latency):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(lg *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			lg.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, msg)
}
