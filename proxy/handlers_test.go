package proxy

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zeebo/assert"

	"github.com/cetusprotocol/aggregator-go/aggregator"
)

const routeFoundBody = `{
	"code": 0,
	"msg": "success",
	"data": {
		"amount_in": 1000000000,
		"amount_out": 987654321,
		"routes": [
			{
				"amount_in": 1000000000,
				"amount_out": 987654321,
				"initial_price": "1.01",
				"path": [
					{
						"id": "0xpool",
						"direction": true,
						"provider": "CETUS",
						"from": "0x2::sui::SUI",
						"target": "0xc::cetus::CETUS",
						"fee_rate": "0.0025",
						"amount_in": 1000000000,
						"amount_out": 987654321
					}
				]
			}
		]
	}
}`

func newTestHandler(t *testing.T, upstream http.HandlerFunc) *quoteHandler {
	t.Helper()
	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)
	return newQuoteHandler(aggregator.NewClient(aggregator.WithEndpoint(server.URL)))
}

func doFindRoutes(handler *quoteHandler, method, target string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	handler.FindRoutes(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) findRoutesResponse {
	t.Helper()
	var resp findRoutesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return resp
}

func TestFindRoutes_RouteFound(t *testing.T) {
	handler := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(routeFoundBody))
	})

	rec := doFindRoutes(handler, http.MethodGet,
		"/v1/find_routes?from=0x2::sui::SUI&target=0xc::cetus::CETUS&amount=1000000000&by_amount_in=true&depth=3&split_count=1&providers=CETUS", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store, no-cache, must-revalidate", rec.Header().Get("Cache-Control"))

	resp := decodeEnvelope(t, rec)
	assert.Equal(t, uint32(0), resp.Code)
	assert.NotNil(t, resp.Data)
	assert.Equal(t, "987654321", resp.Data.AmountOut.String())
	assert.Equal(t, 1, len(resp.Data.Routes))
	assert.Equal(t, "CETUS", resp.Data.Routes[0].Path[0].Provider)
}

func TestFindRoutes_NoRoute(t *testing.T) {
	handler := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":0,"msg":"success","data":null}`))
	})

	rec := doFindRoutes(handler, http.MethodGet,
		"/v1/find_routes?from=0x2::sui::SUI&target=0xc::cetus::CETUS&amount=1000000000", "")

	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeEnvelope(t, rec)
	assert.Equal(t, uint32(0), resp.Code)
	assert.Nil(t, resp.Data)
}

func TestFindRoutes_BadInput(t *testing.T) {
	handler := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream should not be called for invalid input")
	})

	tests := []struct {
		name   string
		target string
	}{
		{name: "missing amount", target: "/v1/find_routes?from=a&target=b"},
		{name: "bad amount", target: "/v1/find_routes?from=a&target=b&amount=12.5"},
		{name: "bad by_amount_in", target: "/v1/find_routes?from=a&target=b&amount=1&by_amount_in=maybe"},
		{name: "bad depth", target: "/v1/find_routes?from=a&target=b&amount=1&depth=-3"},
		{name: "bad split_count", target: "/v1/find_routes?from=a&target=b&amount=1&split_count=x"},
		{name: "empty from", target: "/v1/find_routes?target=b&amount=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doFindRoutes(handler, http.MethodGet, tt.target, "")
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400\nbody: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestFindRoutes_UpstreamAPIErrorPassthrough(t *testing.T) {
	handler := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":10002,"msg":"no suitable route found","data":null}`))
	})

	rec := doFindRoutes(handler, http.MethodGet,
		"/v1/find_routes?from=a&target=b&amount=1", "")

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	resp := decodeEnvelope(t, rec)
	assert.Equal(t, uint32(10002), resp.Code)
	assert.Equal(t, "no suitable route found", resp.Msg)
}

func TestFindRoutes_UpstreamUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	handler := newQuoteHandler(aggregator.NewClient(aggregator.WithEndpoint(url)))
	rec := doFindRoutes(handler, http.MethodGet, "/v1/find_routes?from=a&target=b&amount=1", "")

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	resp := decodeEnvelope(t, rec)
	assert.Equal(t, uint32(http.StatusBadGateway), resp.Code)
	assert.Equal(t, "upstream aggregator unreachable", resp.Msg)
}

func TestFindRoutes_UpstreamGarbage(t *testing.T) {
	handler := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	})

	rec := doFindRoutes(handler, http.MethodGet, "/v1/find_routes?from=a&target=b&amount=1", "")

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	resp := decodeEnvelope(t, rec)
	assert.Equal(t, "invalid upstream response", resp.Msg)
}

func TestFindRoutes_PostWithLiquidityChanges(t *testing.T) {
	var gotUpstreamMethod string
	handler := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		gotUpstreamMethod = r.Method
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":0,"msg":"success","data":null}`))
	})

	body := `{
		"from": "0x2::sui::SUI",
		"target": "0xc::cetus::CETUS",
		"amount": "1000000000",
		"by_amount_in": true,
		"liquidity_changes": [
			{"pool": "0xpool", "tick_lower": -100, "tick_upper": 100, "delta_liquidity": -5000000}
		]
	}`

	rec := doFindRoutes(handler, http.MethodPost, "/v1/find_routes", body)
	assert.Equal(t, http.StatusOK, rec.Code)
	// Liquidity simulation must ride the POST form upstream.
	assert.Equal(t, http.MethodPost, gotUpstreamMethod)
}

func TestFindRoutes_PostBadJSON(t *testing.T) {
	handler := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream should not be called for invalid input")
	})

	rec := doFindRoutes(handler, http.MethodPost, "/v1/find_routes", `{"from": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
