package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hupe1980/vectis/vector"
)

// Server is an in-memory fake of the remote store's HTTP API.
//
// Batch-get slots for missing keys are JSON null. Similarity search ranks
// stored vectors by euclidean distance, ties broken by key.
type Server struct {
	srv *httptest.Server

	mu        sync.Mutex
	kv        map[string]string
	vectors   map[string]vector.Vector
	overrides map[string]http.HandlerFunc
	hits      map[string]int
}

// NewServer starts a fake store that is shut down when the test ends.
func NewServer(tb testing.TB) *Server {
	tb.Helper()

	s := StartServer()
	tb.Cleanup(s.Close)
	return s
}

// StartServer starts a fake store. The caller must call Close.
func StartServer() *Server {
	s := &Server{
		kv:        make(map[string]string),
		vectors:   make(map[string]vector.Vector),
		overrides: make(map[string]http.HandlerFunc),
		hits:      make(map[string]int),
	}

	r := chi.NewRouter()
	r.Post("/api/put", s.route("POST /api/put", s.handlePut))
	r.Get("/api/get", s.route("GET /api/get", s.handleGet))
	r.Post("/api/delete", s.route("POST /api/delete", s.handleDelete))
	r.Post("/api/batch", s.route("POST /api/batch", s.handleBatch))
	r.Post("/api/batch_get", s.route("POST /api/batch_get", s.handleBatchGet))
	r.Get("/api/scan", s.route("GET /api/scan", s.handleScan))
	r.Post("/api/vector/put", s.route("POST /api/vector/put", s.handleVectorPut))
	r.Get("/api/vector/get", s.route("GET /api/vector/get", s.handleVectorGet))
	r.Post("/api/vector/search", s.route("POST /api/vector/search", s.handleVectorSearch))
	r.Get("/api/vector/list", s.route("GET /api/vector/list", s.handleVectorList))
	r.Get("/api/vector/stats", s.route("GET /api/vector/stats", s.handleVectorStats))
	r.Get("/api/stats", s.route("GET /api/stats", s.handleStats))
	r.Get("/api/health", s.route("GET /api/health", s.handleHealth))

	s.srv = httptest.NewServer(r)
	return s
}

// URL returns the base URL of the fake store.
func (s *Server) URL() string { return s.srv.URL }

// Close stops the server; later requests fail at the transport level.
func (s *Server) Close() { s.srv.Close() }

// Override replaces the handler of a route such as "POST /api/batch_get".
// A nil handler restores the default.
func (s *Server) Override(route string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h == nil {
		delete(s.overrides, route)
		return
	}
	s.overrides[route] = h
}

// Hits returns how many requests reached route.
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// Seed stores entries directly, bypassing HTTP.
func (s *Server) Seed(entries map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range entries {
		s.kv[k] = v
	}
}

// SeedVector stores a vector directly, bypassing HTTP.
func (s *Server) SeedVector(key string, v vector.Vector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors[key] = v.Clone()
}

// Value returns the stored value for key.
func (s *Server) Value(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.kv[key]
	return v, ok
}

// Vector returns the stored vector for key.
func (s *Server) Vector(key string) (vector.Vector, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vectors[key]
	return v.Clone(), ok
}

// Len returns the number of stored key/value entries.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.kv)
}

func (s *Server) route(name string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[name]++
		override := s.overrides[name]
		s.mu.Unlock()

		if override != nil {
			override(w, r)
			return
		}
		h(w, r)
	}
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || !r.PostForm.Has("key") || !r.PostForm.Has("value") {
		http.Error(w, "Missing key or value", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.kv[r.PostForm.Get("key")] = r.PostForm.Get("value")
	s.mu.Unlock()
	writeText(w, "OK")
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	if !r.URL.Query().Has("key") {
		http.Error(w, "Missing key", http.StatusBadRequest)
		return
	}
	v, ok := s.Value(r.URL.Query().Get("key"))
	if !ok {
		http.Error(w, "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeText(w, v)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || !r.PostForm.Has("key") {
		http.Error(w, "Missing key", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	delete(s.kv, r.PostForm.Get("key"))
	s.mu.Unlock()
	writeText(w, "OK")
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Operations []struct {
			Type  string `json:"type"`
			Key   string `json:"key"`
			Value string `json:"value"`
		} `json:"operations"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	for _, op := range req.Operations {
		if op.Type != "PUT" && op.Type != "DELETE" {
			http.Error(w, "Unknown operation type: "+op.Type, http.StatusBadRequest)
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range req.Operations {
		if op.Type == "PUT" {
			s.kv[op.Key] = op.Value
		} else {
			delete(s.kv, op.Key)
		}
	}
	writeText(w, "OK")
}

func (s *Server) handleBatchGet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Keys []string `json:"keys"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	values := make([]*string, len(req.Keys))
	for i, k := range req.Keys {
		if v, ok := s.kv[k]; ok {
			values[i] = &v
		}
	}
	s.mu.Unlock()

	writeJSON(w, map[string]any{"values": values})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end := q.Get("start"), q.Get("end")
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	reverse := q.Get("reverse") == "true"

	type entry struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}

	s.mu.Lock()
	entries := make([]entry, 0)
	for k, v := range s.kv {
		if k >= start && (end == "" || k < end) {
			entries = append(entries, entry{Key: k, Value: v})
		}
	}
	s.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if reverse {
			return entries[i].Key > entries[j].Key
		}
		return entries[i].Key < entries[j].Key
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	writeJSON(w, map[string]any{"entries": entries})
}

func (s *Server) handleVectorPut(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key    string         `json:"key"`
		Vector *vector.Vector `json:"vector"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == "" || req.Vector == nil {
		http.Error(w, "Missing key or vector", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.vectors {
		if existing.Dim() != req.Vector.Dim() {
			http.Error(w, fmt.Sprintf("dimension mismatch: expected %d, got %d", existing.Dim(), req.Vector.Dim()), http.StatusInternalServerError)
			return
		}
		break
	}
	s.vectors[req.Key] = *req.Vector
	writeText(w, "OK")
}

func (s *Server) handleVectorGet(w http.ResponseWriter, r *http.Request) {
	if !r.URL.Query().Has("key") {
		http.Error(w, "Missing key", http.StatusBadRequest)
		return
	}
	v, ok := s.Vector(r.URL.Query().Get("key"))
	if !ok {
		http.Error(w, "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{"vector": v})
}

func (s *Server) handleVectorSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query vector.Vector `json:"query"`
		K     int           `json:"k"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.K < 0 {
		http.Error(w, "Missing vector query", http.StatusBadRequest)
		return
	}

	type result struct {
		Key      string  `json:"key"`
		Distance float64 `json:"distance"`
	}

	s.mu.Lock()
	results := make([]result, 0, len(s.vectors))
	for k, v := range s.vectors {
		d, err := req.Query.EuclideanDistance(v)
		if err != nil {
			continue
		}
		results = append(results, result{Key: k, Distance: d})
	}
	s.mu.Unlock()

	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Key < results[j].Key
	})
	if len(results) > req.K {
		results = results[:req.K]
	}

	writeJSON(w, map[string]any{"results": results})
}

func (s *Server) handleVectorList(w http.ResponseWriter, _ *http.Request) {
	type item struct {
		Key       string `json:"key"`
		Dimension int    `json:"dimension"`
		Vector    string `json:"vector"`
	}

	s.mu.Lock()
	keys := make([]string, 0, len(s.vectors))
	for k := range s.vectors {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	items := make([]item, 0, len(keys))
	for _, k := range keys {
		v := s.vectors[k]
		parts := make([]string, v.Dim())
		for i, x := range v.Slice() {
			parts[i] = strconv.FormatFloat(float64(x), 'g', -1, 32)
		}
		items = append(items, item{Key: k, Dimension: v.Dim(), Vector: strings.Join(parts, ",")})
	}
	s.mu.Unlock()

	writeJSON(w, map[string]any{"vectors": items})
}

func (s *Server) handleVectorStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	n := len(s.vectors)
	dim := 0
	for _, v := range s.vectors {
		dim = v.Dim()
		break
	}
	s.mu.Unlock()

	writeJSON(w, map[string]any{
		"index_enabled":   false,
		"num_vectors":     n,
		"dimension":       dim,
		"metric":          "euclidean",
		"num_layers":      0,
		"avg_connections": 0,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	stats := map[string]any{
		"total_entries": len(s.kv),
		"total_vectors": len(s.vectors),
		"total_puts":    s.hits["POST /api/put"],
		"total_gets":    s.hits["GET /api/get"],
	}
	s.mu.Unlock()

	writeJSON(w, stats)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{"status": "healthy"})
}

func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
