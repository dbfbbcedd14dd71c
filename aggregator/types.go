package aggregator

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// BigInt is an arbitrary-precision integer for wire amounts. On-chain token
// amounts routinely exceed the 64-bit range, and the aggregator service emits
// them either as JSON numbers or as decimal strings depending on magnitude,
// so both forms are accepted. It always marshals as a decimal string.
type BigInt struct {
	big.Int
}

// NewBigInt creates a BigInt from an int64.
func NewBigInt(v int64) *BigInt {
	b := new(BigInt)
	b.SetInt64(v)
	return b
}

// NewBigIntFromString creates a BigInt from a base-10 string.
func NewBigIntFromString(s string) (*BigInt, error) {
	b := new(BigInt)
	if _, ok := b.SetString(s, 10); !ok {
		return nil, fmt.Errorf("invalid integer amount: %q", s)
	}
	return b, nil
}

// MarshalJSON implements json.Marshaler.
func (b BigInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *BigInt) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" {
		b.SetInt64(0)
		return nil
	}
	if _, ok := b.SetString(s, 10); !ok {
		return fmt.Errorf("invalid integer amount: %q", s)
	}
	return nil
}

// FindRouterParams are the inputs for a route search. From, Target and Amount
// are required; every optional field defaults to whatever the aggregator
// service picks when the parameter is absent.
type FindRouterParams struct {
	// From is the coin type being sold, e.g. "0x2::sui::SUI".
	From string
	// Target is the coin type being bought.
	Target string
	// Amount is the swap amount in base units. Whether it is an input or a
	// desired output amount depends on ByAmountIn.
	Amount *big.Int
	// ByAmountIn is true when Amount is a fixed input, false when Amount is
	// the desired output.
	ByAmountIn bool
	// Depth limits the number of hops in a single route.
	Depth *uint32
	// SplitAlgorithm selects the service-side split strategy.
	SplitAlgorithm *string
	// SplitFactor tunes the split strategy.
	SplitFactor *float64
	// SplitCount limits how many parallel routes the trade is divided across.
	SplitCount *uint32
	// Providers restricts routing to the named liquidity providers.
	Providers []string
	// LiquidityChanges simulates pool liquidity modifications before routing.
	LiquidityChanges []PreSwapLpChangeParams
}

// PreSwapLpChangeParams describes a simulated liquidity change applied to a
// concentrated-liquidity pool before the route computation runs.
type PreSwapLpChangeParams struct {
	PoolID         string
	TickLower      int32
	TickUpper      int32
	DeltaLiquidity *big.Int
}

// RouterData is the result of a route search: the total amounts and the
// parallel split routes that make up the swap.
type RouterData struct {
	AmountIn              BigInt            `json:"amount_in"`
	AmountOut             BigInt            `json:"amount_out"`
	ByAmountIn            bool              `json:"by_amount_in"`
	Routes                []Router          `json:"routes"`
	InsufficientLiquidity bool              `json:"insufficient_liquidity"`
	Packages              map[string]string `json:"packages,omitempty"`
	TotalDeepFee          *float64          `json:"total_deep_fee,omitempty"`
	Error                 *RouterError      `json:"error,omitempty"`
}

// Router is one split path through the swap graph.
type Router struct {
	Path         []Path `json:"path"`
	AmountIn     BigInt `json:"amount_in"`
	AmountOut    BigInt `json:"amount_out"`
	InitialPrice string `json:"initial_price"`
}

// InitialPriceDecimal parses the route's initial price.
func (r *Router) InitialPriceDecimal() (decimal.Decimal, error) {
	return decimal.NewFromString(r.InitialPrice)
}

// Path is a single hop through one pool.
type Path struct {
	// ID is the pool object id.
	ID string `json:"id"`
	// Direction is true for an a2b swap within the pool, false for b2a.
	Direction       bool             `json:"direction"`
	Provider        string           `json:"provider"`
	From            string           `json:"from"`
	Target          string           `json:"target"`
	FeeRate         string           `json:"fee_rate"`
	AmountIn        BigInt           `json:"amount_in"`
	AmountOut       BigInt           `json:"amount_out"`
	Version         *string          `json:"version,omitempty"`
	ExtendedDetails *ExtendedDetails `json:"extended_details,omitempty"`
}

// FeeRateDecimal parses the hop's fee rate.
func (p *Path) FeeRateDecimal() (decimal.Decimal, error) {
	return decimal.NewFromString(p.FeeRate)
}

// ExtendedDetails carries provider-specific extras. Which fields are set
// depends on the provider of the hop.
type ExtendedDetails struct {
	AftermathPoolFlatness   *float64 `json:"aftermath_pool_flatness,omitempty"`
	AftermathLpSupplyType   *string  `json:"aftermath_lp_supply_type,omitempty"`
	TurbosFeeType           *string  `json:"turbos_fee_type,omitempty"`
	AfterSqrtPrice          *BigInt  `json:"after_sqrt_price,omitempty"`
	DeepbookV3DeepFee       *float64 `json:"deepbookv3_deep_fee,omitempty"`
	ScallopScoinTreasury    *string  `json:"scallop_scoin_treasury,omitempty"`
	HaedalPmmBasePriceSeed  *string  `json:"haedal_pmm_base_price_seed,omitempty"`
	HaedalPmmQuotePriceSeed *string  `json:"haedal_pmm_quote_price_seed,omitempty"`
	SteammBankA             *string  `json:"steamm_bank_a,omitempty"`
	SteammBankB             *string  `json:"steamm_bank_b,omitempty"`
	SteammLendingMarket     *string  `json:"steamm_lending_market,omitempty"`
	SteammLendingMarketType *string  `json:"steamm_lending_market_type,omitempty"`
	SteammBTokenAType       *string  `json:"steamm_btoken_a_type,omitempty"`
	SteammBTokenBType       *string  `json:"steamm_btoken_b_type,omitempty"`
	SteammLpTokenType       *string  `json:"steamm_lp_token_type,omitempty"`
}

// RouterError is the error block the service may embed inside a route result.
type RouterError struct {
	Code uint32 `json:"code"`
	Msg  string `json:"msg"`
}

// aggregatorResponse is the envelope every find_routes reply is wrapped in.
type aggregatorResponse struct {
	Code uint32          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}
