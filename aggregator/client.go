package aggregator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultEndpoint is the production aggregator deployment on Sui mainnet.
const DefaultEndpoint = "https://api-sui.cetus.zone/router_v2"

// sdkVersion is appended to every find_routes request so the service can
// track client versions.
const sdkVersion = "1000327"

var log zerolog.Logger

func init() {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log = zerolog.New(out).With().Timestamp().Str("component", "aggregator").Logger()
}

// Client queries the Cetus Aggregator service for swap routes. It performs
// exactly one outbound request per call, keeps no state between calls, and is
// safe for concurrent use.
type Client struct {
	endpoint   string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a client against the default endpoint. Options can
// override the endpoint, the underlying HTTP client, its timeout, and the
// logger.
func NewClient(opts ...Option) *Client {
	c := &Client{
		endpoint:   DefaultEndpoint,
		httpClient: &http.Client{},
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the base URL the client talks to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// FindRouters asks the aggregator service for the best swap routes matching
// params. A nil result with a nil error means the service found no viable
// route; callers must treat that as a normal outcome, not a failure.
//
// Failures are surfaced as one of the typed errors in this package:
// *InputError for locally rejected parameters, *RequestError for transport
// failures, *APIError for structured service errors, and *ParseError when
// the response body does not match the schema.
func (c *Client) FindRouters(ctx context.Context, params FindRouterParams) (*RouterData, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	c.log.Debug().
		Str("from", params.From).
		Str("target", params.Target).
		Str("amount", params.Amount.String()).
		Bool("byAmountIn", params.ByAmountIn).
		Msg("Querying aggregator for swap routes")

	var (
		resp *http.Response
		err  error
	)
	if len(params.LiquidityChanges) > 0 {
		resp, err = c.postRouter(ctx, params)
	} else {
		resp, err = c.getRouter(ctx, params)
	}
	if err != nil {
		return nil, err
	}

	return c.parseRouterResponse(resp)
}

func validateParams(params FindRouterParams) error {
	if params.From == "" {
		return &InputError{Reason: "from coin type is empty"}
	}
	if params.Target == "" {
		return &InputError{Reason: "target coin type is empty"}
	}
	if params.Amount == nil {
		return &InputError{Reason: "amount is nil"}
	}
	if params.Amount.Sign() < 0 {
		return &InputError{Reason: "amount is negative"}
	}
	return nil
}

// getRouter issues the plain GET form of find_routes.
func (c *Client) getRouter(ctx context.Context, params FindRouterParams) (*http.Response, error) {
	q := url.Values{}
	q.Set("from", params.From)
	q.Set("target", params.Target)
	q.Set("amount", params.Amount.String())
	q.Set("by_amount_in", strconv.FormatBool(params.ByAmountIn))

	if params.Depth != nil {
		q.Set("depth", strconv.FormatUint(uint64(*params.Depth), 10))
	}
	if params.SplitAlgorithm != nil {
		q.Set("split_algorithm", *params.SplitAlgorithm)
	}
	if params.SplitFactor != nil {
		q.Set("split_factor", strconv.FormatFloat(*params.SplitFactor, 'f', -1, 64))
	}
	if params.SplitCount != nil {
		q.Set("split_count", strconv.FormatUint(uint64(*params.SplitCount), 10))
	}
	if len(params.Providers) > 0 {
		q.Set("providers", strings.Join(params.Providers, ","))
	}
	q.Set("v", sdkVersion)

	fullURL := c.endpoint + "/find_routes?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &RequestError{Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	return resp, nil
}

// postRouter issues the POST form of find_routes, used when the caller wants
// the service to simulate liquidity changes before routing.
func (c *Client) postRouter(ctx context.Context, params FindRouterParams) (*http.Response, error) {
	body := map[string]any{
		"from":         params.From,
		"target":       params.Target,
		"amount":       params.Amount.String(),
		"by_amount_in": params.ByAmountIn,
	}
	if params.Depth != nil {
		body["depth"] = *params.Depth
	}
	if params.SplitAlgorithm != nil {
		body["split_algorithm"] = *params.SplitAlgorithm
	}
	if params.SplitFactor != nil {
		body["split_factor"] = *params.SplitFactor
	}
	if params.SplitCount != nil {
		body["split_count"] = *params.SplitCount
	}
	if len(params.Providers) > 0 {
		body["providers"] = strings.Join(params.Providers, ",")
	}

	changes := make([]map[string]any, 0, len(params.LiquidityChanges))
	for _, change := range params.LiquidityChanges {
		delta := "0"
		if change.DeltaLiquidity != nil {
			delta = change.DeltaLiquidity.String()
		}
		changes = append(changes, map[string]any{
			"pool":       change.PoolID,
			"tick_lower": change.TickLower,
			"tick_upper": change.TickUpper,
			// json.Number keeps the delta a bare number on the wire without
			// squeezing it through an int64.
			"delta_liquidity": json.Number(delta),
		})
	}
	body["liquidity_changes"] = changes

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &RequestError{Err: fmt.Errorf("failed to encode request body: %w", err)}
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.endpoint+"/find_routes", bytes.NewReader(payload))
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	return resp, nil
}

// parseRouterResponse unwraps the {code, msg, data} envelope. A null data
// field on a successful reply means no route exists.
func (c *Client) parseRouterResponse(resp *http.Response) (*RouterData, error) {
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// The service usually wraps errors in the regular envelope even on
		// non-2xx statuses. Fall back to the raw status when it doesn't.
		var envelope aggregatorResponse
		if jsonErr := json.Unmarshal(body, &envelope); jsonErr == nil && envelope.Msg != "" {
			return nil, &APIError{Code: envelope.Code, Message: envelope.Msg}
		}
		return nil, &APIError{
			Code:    uint32(resp.StatusCode),
			Message: fmt.Sprintf("unexpected status: %s", resp.Status),
		}
	}

	var envelope aggregatorResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &ParseError{Err: err}
	}

	if envelope.Code != 0 && envelope.Code != 200 {
		return nil, &APIError{Code: envelope.Code, Message: envelope.Msg}
	}

	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		c.log.Debug().Msg("Aggregator found no route")
		return nil, nil
	}

	var data RouterData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, &ParseError{Err: err}
	}

	c.log.Debug().
		Str("amountIn", data.AmountIn.String()).
		Str("amountOut", data.AmountOut.String()).
		Int("routes", len(data.Routes)).
		Msg("Aggregator query successful")

	return &data, nil
}
