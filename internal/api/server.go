// Package api provides the HTTP API for observing a running simulation.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hoenas/econosim/internal/engine"
	"github.com/hoenas/econosim/internal/market"
	"github.com/hoenas/econosim/internal/persistence"
)

// Server serves the world state over HTTP.
type Server struct {
	World    *engine.World
	Eng      *engine.Engine
	DB       *persistence.DB // optional; /trades returns 404 without it
	Feed     *Feed           // optional; /feed returns 404 without it
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	// Trade history hits the database; keep scrapers off it.
	tradesLimiter := NewRateLimiter(120, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/market", s.handleMarket)
	mux.HandleFunc("/api/v1/companies", s.handleCompanies)
	mux.HandleFunc("/api/v1/trades", RateLimitMiddleware(tradesLimiter, s.handleTrades))

	// Live clearing feed (websocket).
	mux.HandleFunc("/api/v1/feed", s.handleFeed)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no ECONOSIM_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var status map[string]any
	s.World.View(func(world *engine.World) {
		status = map[string]any{
			"name":        "EconoSim",
			"tick":        world.LastTick,
			"speed":       s.Eng.Speed,
			"running":     s.Eng.Running,
			"companies":   len(world.Companies),
			"producers":   len(world.Producers),
			"consumers":   len(world.Consumers),
			"live_offers": len(world.Ledger.Offers),
			"live_orders": len(world.Ledger.Orders),
			"stats":       world.Market.Stats,
		}
	})
	writeJSON(w, status)
}

// handleMarket returns the per-resource book summary: live depth on each
// side plus the cached best ask and best bid.
func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	type bookEntry struct {
		Resource    string   `json:"resource"`
		Offers      int      `json:"offers"`
		Orders      int      `json:"orders"`
		OfferVolume float64  `json:"offer_volume"`
		OrderVolume float64  `json:"order_volume"`
		BestAsk     *float64 `json:"best_ask,omitempty"`
		BestBid     *float64 `json:"best_bid,omitempty"`
	}

	var book []bookEntry
	s.World.View(func(world *engine.World) {
		book = make([]bookEntry, world.Resources.Count())
		for h := range book {
			book[h].Resource = world.Resources.Name(h)
			if price, ok := world.Ledger.BestPrice(h); ok {
				p := price
				book[h].BestAsk = &p
			}
			if bid, ok := world.Ledger.BestBid(h); ok {
				b := bid
				book[h].BestBid = &b
			}
		}
		for _, offer := range world.Ledger.Offers {
			book[offer.Resource].Offers++
			book[offer.Resource].OfferVolume += offer.Amount
		}
		for _, order := range world.Ledger.Orders {
			book[order.Resource].Orders++
			book[order.Resource].OrderVolume += order.Amount
		}
	})
	writeJSON(w, book)
}

func (s *Server) handleCompanies(w http.ResponseWriter, r *http.Request) {
	type companyEntry struct {
		Name       string             `json:"name"`
		Currency   float64            `json:"currency"`
		Value      float64            `json:"value"`
		Processors []string           `json:"processors"`
		Stock      map[string]float64 `json:"stock"`
	}

	var companies []companyEntry
	s.World.View(func(world *engine.World) {
		for _, c := range world.Companies {
			entry := companyEntry{
				Name:     c.Name,
				Currency: c.Currency,
				Value:    c.Value,
				Stock:    make(map[string]float64),
			}
			for _, p := range c.Processors {
				entry.Processors = append(entry.Processors, p.Name)
			}
			for resource, amount := range c.Stock.Resources {
				if amount > 0 {
					entry.Stock[world.Resources.Name(resource)] = amount
				}
			}
			companies = append(companies, entry)
		}
	})
	writeJSON(w, companies)
}

// handleTrades returns recent settlements from the telemetry database,
// newest first. ?limit=N caps the result (default 100, max 1000).
func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "trade history not enabled", http.StatusNotFound)
		return
	}

	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, 1000)
	}

	rows, err := s.DB.RecentTrades(limit)
	if err != nil {
		slog.Error("trade query failed", "error", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, rows)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	if s.Feed == nil {
		http.Error(w, "live feed not enabled", http.StatusNotFound)
		return
	}
	s.Feed.ServeHTTP(w, r)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.Speed = req.Speed
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed})
}

// ownerLabel names a trade participant for API output.
func ownerLabel(world *engine.World, o market.Owner) string {
	if handle, isCompany := o.AsCompany(); isCompany {
		if handle >= 0 && handle < len(world.Companies) {
			return world.Companies[handle].Name
		}
	}
	return "market"
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
