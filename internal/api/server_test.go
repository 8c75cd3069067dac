package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hoenas/econosim/internal/economy"
	"github.com/hoenas/econosim/internal/engine"
	"github.com/hoenas/econosim/internal/market"
)

func newTestServer() *Server {
	resources := economy.NewResourceCatalog([]string{"points", "ore"})
	recipes := &economy.RecipeTable{}
	world := engine.NewWorld(resources, recipes, 1)
	world.Companies = []*economy.Company{economy.NewCompany("acme")}
	world.Companies[0].Currency = 500

	world.Market.PlaceOffer(world.Ledger, market.Offer{
		Resource: 1, Amount: 3, PricePerUnit: 7, Owner: market.MarketOwner(), TimeToLive: 5,
	})
	world.Market.PlaceOrder(world.Ledger, market.Order{
		Resource: 1, Amount: 2, MaxPricePerUnit: 4, Owner: market.CompanyOwner(0), TimeToLive: 5,
	})

	return &Server{World: world, Eng: engine.NewEngine(), AdminKey: "sekrit"}
}

func TestStatusEndpoint(t *testing.T) {
	s := newTestServer()

	rec := httptest.NewRecorder()
	s.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	var status map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if status["companies"].(float64) != 1 {
		t.Fatalf("companies = %v, want 1", status["companies"])
	}
	if status["live_offers"].(float64) != 1 || status["live_orders"].(float64) != 1 {
		t.Fatalf("book depth wrong: %v", status)
	}
}

func TestMarketEndpointBestPrices(t *testing.T) {
	s := newTestServer()

	rec := httptest.NewRecorder()
	s.handleMarket(rec, httptest.NewRequest(http.MethodGet, "/api/v1/market", nil))

	var book []struct {
		Resource string   `json:"resource"`
		Offers   int      `json:"offers"`
		BestAsk  *float64 `json:"best_ask"`
		BestBid  *float64 `json:"best_bid"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &book); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if len(book) != 2 {
		t.Fatalf("book entries = %d, want 2", len(book))
	}
	if book[0].BestAsk != nil {
		t.Fatal("empty resource should have no best ask")
	}
	if book[1].BestAsk == nil || *book[1].BestAsk != 7 {
		t.Fatalf("best ask = %v, want 7", book[1].BestAsk)
	}
	if book[1].BestBid == nil || *book[1].BestBid != 4 {
		t.Fatalf("best bid = %v, want 4", book[1].BestBid)
	}
}

func TestCompaniesEndpoint(t *testing.T) {
	s := newTestServer()

	rec := httptest.NewRecorder()
	s.handleCompanies(rec, httptest.NewRequest(http.MethodGet, "/api/v1/companies", nil))

	var companies []struct {
		Name     string  `json:"name"`
		Currency float64 `json:"currency"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &companies); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if len(companies) != 1 || companies[0].Name != "acme" || companies[0].Currency != 500 {
		t.Fatalf("unexpected companies: %+v", companies)
	}
}

func TestSpeedEndpointAuth(t *testing.T) {
	s := newTestServer()
	handler := s.adminOnly(s.handleSpeed)

	post := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/speed", strings.NewReader(`{"speed": 2}`))
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		handler(rec, req)
		return rec
	}

	if rec := post(""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: code = %d, want 401", rec.Code)
	}
	if rec := post("wrong"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: code = %d, want 401", rec.Code)
	}
	if rec := post("sekrit"); rec.Code != http.StatusOK {
		t.Fatalf("good token: code = %d, want 200", rec.Code)
	}
	if s.Eng.Speed != 2 {
		t.Fatalf("speed = %f, want 2", s.Eng.Speed)
	}

	// GET is public and reports the current speed.
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/speed", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET code = %d, want 200", rec.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)

	if !rl.Allow("10.0.0.1") || !rl.Allow("10.0.0.1") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("third request should be limited")
	}
	// Other clients are unaffected.
	if !rl.Allow("10.0.0.2") {
		t.Fatal("separate IP should pass")
	}
	if rl.RetryAfter("10.0.0.1") <= 0 {
		t.Fatal("limited IP should report a retry delay")
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:1234"
	if ip := clientIP(req); ip != "192.168.1.5" {
		t.Fatalf("ip = %q", ip)
	}

	req.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.1")
	if ip := clientIP(req); ip != "1.2.3.4" {
		t.Fatalf("forwarded ip = %q", ip)
	}
}
