package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"pizza-hq/pizzeria/pkg/api/middleware"
	"pizza-hq/pizzeria/pkg/factory"
	"pizza-hq/pizzeria/pkg/store"
	"pizza-hq/pizzeria/pkg/telemetry/metrics"
	"pizza-hq/pizzeria/pkg/telemetry/tracing"
)

type createOrderRequest struct {
	FranchiseID int64             `json:"franchiseId"`
	StoreID     int64             `json:"storeId"`
	Items       []store.OrderItem `json:"items"`
}

type createOrderResponse struct {
	Order     *store.Order `json:"order"`
	JWT       string       `json:"jwt"`
	ReportURL string       `json:"reportUrl,omitempty"`
}

func (h *handlers) menu(w http.ResponseWriter, r *http.Request) {
	items, err := h.deps.DB.Menu(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *handlers) addMenuItem(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		writeError(w, r, statusError(http.StatusForbidden, "unable to add menu item"))
		return
	}
	var item store.MenuItem
	if err := decodeJSON(r, &item); err != nil {
		writeError(w, r, err)
		return
	}
	if item.Title == "" || item.Price < 0 {
		writeError(w, r, statusError(http.StatusBadRequest, "title and a non-negative price are required"))
		return
	}
	if _, err := h.deps.DB.AddMenuItem(r.Context(), item); err != nil {
		writeError(w, r, err)
		return
	}
	h.menu(w, r)
}

func (h *handlers) listOrders(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	orders, err := h.deps.DB.Orders(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dinerId": claims.UserID, "orders": orders})
}

// createOrder validates the items against the menu (preparation), stores
// the order (payment processing), has the factory make it (baking) and
// encodes the receipt (packaging). Once the body parses, exactly one sale
// is recorded, failed unless the receipt is written.
func (h *handlers) createOrder(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var (
		stages  metrics.StageLatencies
		success bool
		err     error
	)
	defer func() {
		h.deps.Metrics.RecordPizzaSale(saleItems(req.Items), success, time.Since(start), stages)
	}()

	if len(req.Items) == 0 {
		writeError(w, r, statusError(http.StatusBadRequest, "order must contain at least one item"))
		return
	}
	ctx := r.Context()
	claims := middleware.GetClaims(ctx)
	span := trace.SpanFromContext(ctx)
	tracing.SetOrderAttributes(span, req.FranchiseID, req.StoreID, len(req.Items), orderTotal(req.Items))

	stages.Preparation, err = h.stage(ctx, "preparation", func(ctx context.Context) error {
		return h.checkMenu(ctx, req.Items)
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	var order *store.Order
	stages.Payment, err = h.stage(ctx, "payment", func(ctx context.Context) error {
		order, err = h.deps.DB.CreateOrder(ctx, claims.UserID, req.FranchiseID, req.StoreID, req.Items)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	span.SetAttributes(attribute.String(tracing.AttrOrderID, order.ID))

	var receipt *factory.OrderReceipt
	stages.Baking, err = h.stage(ctx, "baking", func(ctx context.Context) error {
		receipt, err = h.deps.Factory.SubmitOrder(ctx, factory.Diner{ID: claims.UserID, Name: claims.Name, Email: claims.Email}, order)
		return err
	})
	if err != nil {
		h.deps.Logger.ErrorContext(ctx, "factory rejected order", "order_id", order.ID, "error", err)
		writeError(w, r, statusError(http.StatusInternalServerError, "Failed to fulfill order at factory"))
		return
	}

	var body []byte
	stages.Packaging, err = h.stage(ctx, "packaging", func(context.Context) error {
		body, err = json.Marshal(createOrderResponse{Order: order, JWT: receipt.JWT, ReportURL: receipt.ReportURL})
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	success = true
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// stage runs fn inside an "order.<name>" span and returns how long it took.
func (h *handlers) stage(ctx context.Context, name string, fn func(context.Context) error) (time.Duration, error) {
	ctx, span := h.deps.Tracer.Start(ctx, "order."+name)
	defer span.End()

	mark := time.Now()
	err := fn(ctx)
	tracing.SetError(span, err)
	return time.Since(mark), err
}

// checkMenu rejects items that are not on the menu or carry a negative price.
func (h *handlers) checkMenu(ctx context.Context, items []store.OrderItem) error {
	menu, err := h.deps.DB.Menu(ctx)
	if err != nil {
		return err
	}
	onMenu := make(map[int64]bool, len(menu))
	for _, m := range menu {
		onMenu[m.ID] = true
	}
	for _, it := range items {
		if !onMenu[it.MenuID] || it.Price < 0 {
			return statusError(http.StatusBadRequest, "unknown menu item")
		}
	}
	return nil
}

func orderTotal(items []store.OrderItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Price
	}
	return total
}

func saleItems(items []store.OrderItem) []metrics.SaleItem {
	out := make([]metrics.SaleItem, 0, len(items))
	for _, it := range items {
		out = append(out, metrics.SaleItem{Description: it.Description, Price: it.Price})
	}
	return out
}
