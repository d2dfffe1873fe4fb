package session

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/zappabad/memex/internal/inventory"
	"github.com/zappabad/memex/internal/market"
)

// OrderRequest is a player intent to buy or sell cards of one asset.
type OrderRequest struct {
	Asset  market.AssetID
	Side   market.Side
	Kind   market.OrderKind
	Amount int
	// LimitPrice is required for limit orders and ignored for market orders.
	LimitPrice float64
}

// OrderResult describes a filled order.
type OrderResult struct {
	Asset  market.AssetID
	Side   market.Side
	Amount int
	// Price is the execution price; always the live price.
	Price decimal.Decimal
	// Total is Price times Amount.
	Total decimal.Decimal
	// Fee is deducted from sell proceeds.
	Fee decimal.Decimal
	// Net is the balance change magnitude: Total for buys, Total-Fee for sells.
	Net       decimal.Decimal
	Instances []inventory.Instance
	Balance   decimal.Decimal
}

// Quote previews an order without touching state.
type Quote struct {
	Price decimal.Decimal
	Total decimal.Decimal
	Fee   decimal.Decimal
	Net   decimal.Decimal
}

func (s *Session) validateOrder(req OrderRequest) (*assetState, error) {
	st, err := s.state(req.Asset)
	if err != nil {
		return nil, err
	}
	if req.Amount < 1 {
		return nil, fmt.Errorf("%w: amount %d", ErrInvalidOrder, req.Amount)
	}
	if req.Side != market.SideBuy && req.Side != market.SideSell {
		return nil, fmt.Errorf("%w: side %s", ErrInvalidOrder, req.Side)
	}
	switch req.Kind {
	case market.OrderKindMarket:
	case market.OrderKindLimit:
		if req.LimitPrice <= 0 {
			return nil, fmt.Errorf("%w: limit price %v", ErrInvalidOrder, req.LimitPrice)
		}
	default:
		return nil, fmt.Errorf("%w: kind %s", ErrInvalidOrder, req.Kind)
	}
	return st, nil
}

// Quote returns the previewed cost of req. Limit orders are previewed at
// their limit price.
func (s *Session) Quote(req OrderRequest) (Quote, error) {
	st, err := s.validateOrder(req)
	if err != nil {
		return Quote{}, err
	}
	price := s.currentPrice(st)
	if req.Kind == market.OrderKindLimit {
		price = decimal.NewFromFloat(req.LimitPrice)
	}
	total := price.Mul(decimal.NewFromInt(int64(req.Amount)))
	q := Quote{Price: price, Total: total, Net: total}
	if req.Side == market.SideSell {
		q.Fee = total.Mul(s.cfg.FeeRate)
		q.Net = total.Sub(q.Fee)
	}
	return q, nil
}

// PlaceOrder settles req at the live price. A limit buy is rejected while the
// live price is above the limit, a limit sell while it is below. Failed
// orders leave balance, collection and supply untouched.
func (s *Session) PlaceOrder(req OrderRequest) (OrderResult, error) {
	fields := []zap.Field{
		zap.String("asset", string(req.Asset)),
		zap.Stringer("side", req.Side),
		zap.Stringer("kind", req.Kind),
		zap.Int("amount", req.Amount),
	}

	st, err := s.validateOrder(req)
	if err != nil {
		return OrderResult{}, s.reject("order", err, fields...)
	}
	if req.Kind == market.OrderKindLimit {
		current, limit := st.price.Current, req.LimitPrice
		if (req.Side == market.SideBuy && current > limit) || (req.Side == market.SideSell && current < limit) {
			err := fmt.Errorf("%w: %s at %v, live %v", ErrLimitNotMarketable, req.Side, limit, current)
			return OrderResult{}, s.reject("order", err, fields...)
		}
	}

	price := s.currentPrice(st)
	total := price.Mul(decimal.NewFromInt(int64(req.Amount)))
	res := OrderResult{
		Asset:  req.Asset,
		Side:   req.Side,
		Amount: req.Amount,
		Price:  price,
		Total:  total,
	}

	switch req.Side {
	case market.SideBuy:
		if total.GreaterThan(s.balance) {
			err := fmt.Errorf("%w: need %s, have %s", ErrInsufficientFunds, total, s.balance)
			return OrderResult{}, s.reject("order", err, fields...)
		}
		minted, err := s.ledger.MintBatch(req.Asset, req.Amount, inventory.WithOrigin(inventory.OriginBuy))
		if err != nil {
			return OrderResult{}, s.reject("order", err, fields...)
		}
		res.Net = total
		res.Instances = minted
		s.setBalance(s.balance.Sub(total))

	case market.SideSell:
		holdings := s.ledger.Holdings(req.Asset)
		if len(holdings) < req.Amount {
			err := fmt.Errorf("%w: hold %d, selling %d", ErrInsufficientInventory, len(holdings), req.Amount)
			return OrderResult{}, s.reject("order", err, fields...)
		}
		ids := make([]string, req.Amount)
		for i := range ids {
			ids[i] = holdings[i].ID
		}
		removed, err := s.ledger.RemoveAll(ids)
		if err != nil {
			return OrderResult{}, s.reject("order", err, fields...)
		}
		res.Fee = total.Mul(s.cfg.FeeRate)
		res.Net = total.Sub(res.Fee)
		res.Instances = removed
		s.setBalance(s.balance.Add(res.Net))
	}

	res.Balance = s.balance
	s.logger.Info("order filled", append(fields,
		zap.String("price", price.String()),
		zap.String("net", res.Net.String()),
		zap.String("balance", s.balance.String()),
	)...)
	s.obs.OrderFilled(req.Asset, req.Side, req.Amount)
	return res, nil
}

// MaxAffordable sizes a buy at percent of what the balance can afford at the
// live price. The result is never below 1.
func (s *Session) MaxAffordable(id market.AssetID, percent int) (int, error) {
	st, err := s.state(id)
	if err != nil {
		return 0, err
	}
	if percent < 0 || percent > 100 {
		return 0, fmt.Errorf("%w: percent %d", ErrInvalidOrder, percent)
	}
	price := s.currentPrice(st)
	if !price.IsPositive() {
		return 1, nil
	}
	affordable := s.balance.Div(price).Floor().IntPart()
	n := int(affordable * int64(percent) / 100)
	if n < 1 {
		n = 1
	}
	return n, nil
}
