package factory

import (
	"context"
	"net/http"

	"pizza-hq/pizzeria/pkg/store"
)

// OrderEndpoint is the factory path that accepts pizza orders.
const OrderEndpoint = "/api/order"

// Diner identifies who placed an order.
type Diner struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// OrderRequest is the body sent to the factory.
type OrderRequest struct {
	Diner Diner        `json:"diner"`
	Order *store.Order `json:"order"`
}

// OrderReceipt is the factory's signed verification of an order.
type OrderReceipt struct {
	JWT       string `json:"jwt"`
	ReportURL string `json:"reportUrl,omitempty"`
}

// SubmitOrder asks the factory to make an order. With no factory
// configured it returns an empty receipt and no error.
func (c *Client) SubmitOrder(ctx context.Context, diner Diner, order *store.Order) (*OrderReceipt, error) {
	receipt := &OrderReceipt{}
	if !c.Enabled() {
		c.logger.Debug("factory disabled, order not forwarded", "order", order.ID)
		return receipt, nil
	}
	if err := c.Do(ctx, http.MethodPost, OrderEndpoint, OrderRequest{Diner: diner, Order: order}, receipt); err != nil {
		return nil, err
	}
	return receipt, nil
}
