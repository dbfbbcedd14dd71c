package proxy

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cetusprotocol/aggregator-go/aggregator"
)

// quoteHandler serves the /v1/find_routes endpoint by forwarding to the
// aggregator client and re-serializing the upstream envelope.
type quoteHandler struct {
	client *aggregator.Client
}

func newQuoteHandler(client *aggregator.Client) *quoteHandler {
	return &quoteHandler{client: client}
}

// findRoutesRequest mirrors the upstream POST body for find_routes.
type findRoutesRequest struct {
	From             string                `json:"from"`
	Target           string                `json:"target"`
	Amount           string                `json:"amount"`
	ByAmountIn       bool                  `json:"by_amount_in"`
	Depth            *uint32               `json:"depth,omitempty"`
	SplitAlgorithm   *string               `json:"split_algorithm,omitempty"`
	SplitFactor      *float64              `json:"split_factor,omitempty"`
	SplitCount       *uint32               `json:"split_count,omitempty"`
	Providers        string                `json:"providers,omitempty"`
	LiquidityChanges []liquidityChangeBody `json:"liquidity_changes,omitempty"`
}

type liquidityChangeBody struct {
	Pool           string      `json:"pool"`
	TickLower      int32       `json:"tick_lower"`
	TickUpper      int32       `json:"tick_upper"`
	DeltaLiquidity json.Number `json:"delta_liquidity"`
}

// findRoutesResponse is the envelope returned to callers, matching the
// upstream service so clients can switch between direct and proxied access.
type findRoutesResponse struct {
	Code uint32                 `json:"code"`
	Msg  string                 `json:"msg"`
	Data *aggregator.RouterData `json:"data"`
}

// FindRoutes handles both the GET (query parameters) and POST (JSON body)
// forms of the endpoint.
//
// Returns:
// - 400 Bad Request: invalid or missing input parameters
// - 502 Bad Gateway: the upstream aggregator failed or answered garbage
// - 200 OK with data=null: valid query but no route exists
// - 200 OK with data set: route found
func (h *quoteHandler) FindRoutes(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	params, err := parseFindRoutesRequest(r)
	if err != nil {
		quoteRequests.WithLabelValues(outcomeBadRequest).Inc()
		writeJSON(w, http.StatusBadRequest, findRoutesResponse{
			Code: http.StatusBadRequest,
			Msg:  err.Error(),
		})
		return
	}

	data, err := h.client.FindRouters(r.Context(), params)
	quoteDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		h.writeError(w, err)
		return
	}

	if data == nil {
		quoteRequests.WithLabelValues(outcomeNoRoute).Inc()
	} else {
		quoteRequests.WithLabelValues(outcomeOK).Inc()
	}

	// Quotes are time-sensitive, keep them out of browser/CDN caches.
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	writeJSON(w, http.StatusOK, findRoutesResponse{Code: 0, Msg: "success", Data: data})
}

func (h *quoteHandler) writeError(w http.ResponseWriter, err error) {
	var (
		inputErr *aggregator.InputError
		apiErr   *aggregator.APIError
		reqErr   *aggregator.RequestError
		parseErr *aggregator.ParseError
	)

	switch {
	case errors.As(err, &inputErr):
		quoteRequests.WithLabelValues(outcomeBadRequest).Inc()
		writeJSON(w, http.StatusBadRequest, findRoutesResponse{
			Code: http.StatusBadRequest,
			Msg:  inputErr.Error(),
		})
	case errors.As(err, &apiErr):
		// Pass the upstream code and message through verbatim.
		quoteRequests.WithLabelValues(outcomeUpstreamError).Inc()
		writeJSON(w, http.StatusBadGateway, findRoutesResponse{
			Code: apiErr.Code,
			Msg:  apiErr.Message,
		})
	case errors.As(err, &reqErr):
		quoteRequests.WithLabelValues(outcomeUpstreamError).Inc()
		Logger.Error().Err(err).Msg("Upstream aggregator unreachable")
		writeJSON(w, http.StatusBadGateway, findRoutesResponse{
			Code: http.StatusBadGateway,
			Msg:  "upstream aggregator unreachable",
		})
	case errors.As(err, &parseErr):
		quoteRequests.WithLabelValues(outcomeUpstreamError).Inc()
		Logger.Error().Err(err).Msg("Upstream aggregator returned an unexpected response")
		writeJSON(w, http.StatusBadGateway, findRoutesResponse{
			Code: http.StatusBadGateway,
			Msg:  "invalid upstream response",
		})
	default:
		quoteRequests.WithLabelValues(outcomeUpstreamError).Inc()
		Logger.Error().Err(err).Msg("Quote request failed")
		writeJSON(w, http.StatusInternalServerError, findRoutesResponse{
			Code: http.StatusInternalServerError,
			Msg:  "internal error",
		})
	}
}

func parseFindRoutesRequest(r *http.Request) (aggregator.FindRouterParams, error) {
	if r.Method == http.MethodPost {
		return parseFindRoutesBody(r)
	}
	return parseFindRoutesQuery(r)
}

func parseFindRoutesQuery(r *http.Request) (aggregator.FindRouterParams, error) {
	q := r.URL.Query()

	params := aggregator.FindRouterParams{
		From:   q.Get("from"),
		Target: q.Get("target"),
	}

	amount, err := parseAmount(q.Get("amount"))
	if err != nil {
		return aggregator.FindRouterParams{}, err
	}
	params.Amount = amount

	if v := q.Get("by_amount_in"); v != "" {
		byAmountIn, err := strconv.ParseBool(v)
		if err != nil {
			return aggregator.FindRouterParams{}, errors.New("by_amount_in must be a boolean")
		}
		params.ByAmountIn = byAmountIn
	}

	if v := q.Get("depth"); v != "" {
		depth, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return aggregator.FindRouterParams{}, errors.New("depth must be a positive integer")
		}
		d := uint32(depth)
		params.Depth = &d
	}

	if v := q.Get("split_algorithm"); v != "" {
		params.SplitAlgorithm = &v
	}

	if v := q.Get("split_factor"); v != "" {
		factor, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return aggregator.FindRouterParams{}, errors.New("split_factor must be a number")
		}
		params.SplitFactor = &factor
	}

	if v := q.Get("split_count"); v != "" {
		count, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return aggregator.FindRouterParams{}, errors.New("split_count must be a positive integer")
		}
		c := uint32(count)
		params.SplitCount = &c
	}

	if v := q.Get("providers"); v != "" {
		params.Providers = strings.Split(v, ",")
	}

	return params, nil
}

func parseFindRoutesBody(r *http.Request) (aggregator.FindRouterParams, error) {
	var body findRoutesRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return aggregator.FindRouterParams{}, errors.New("request body is not valid JSON")
	}

	params := aggregator.FindRouterParams{
		From:           body.From,
		Target:         body.Target,
		ByAmountIn:     body.ByAmountIn,
		Depth:          body.Depth,
		SplitAlgorithm: body.SplitAlgorithm,
		SplitFactor:    body.SplitFactor,
		SplitCount:     body.SplitCount,
	}

	amount, err := parseAmount(body.Amount)
	if err != nil {
		return aggregator.FindRouterParams{}, err
	}
	params.Amount = amount

	if body.Providers != "" {
		params.Providers = strings.Split(body.Providers, ",")
	}

	for _, change := range body.LiquidityChanges {
		delta := new(big.Int)
		if change.DeltaLiquidity != "" {
			if _, ok := delta.SetString(change.DeltaLiquidity.String(), 10); !ok {
				return aggregator.FindRouterParams{}, errors.New("delta_liquidity must be an integer")
			}
		}
		params.LiquidityChanges = append(params.LiquidityChanges, aggregator.PreSwapLpChangeParams{
			PoolID:         change.Pool,
			TickLower:      change.TickLower,
			TickUpper:      change.TickUpper,
			DeltaLiquidity: delta,
		})
	}

	return params, nil
}

func parseAmount(raw string) (*big.Int, error) {
	if raw == "" {
		return nil, errors.New("amount is required")
	}
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, errors.New("amount must be a base-10 integer")
	}
	return amount, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		Logger.Error().Err(err).Msg("Failed to encode response")
	}
}
