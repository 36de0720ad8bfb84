package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys. Standard keys follow the OpenTelemetry HTTP conventions;
// service-specific keys live under "pizzeria.".
const (
	AttrHTTPMethod = "http.request.method"
	AttrHTTPRoute  = "url.path"
	AttrHTTPStatus = "http.response.status_code"
	AttrServerAddr = "server.address"

	AttrRequestID = "pizzeria.request_id"

	AttrOrderID     = "pizzeria.order.id"
	AttrFranchiseID = "pizzeria.franchise.id"
	AttrStoreID     = "pizzeria.store.id"
	AttrOrderItems  = "pizzeria.order.items"
	AttrOrderTotal  = "pizzeria.order.total"

	AttrFactoryEndpoint = "pizzeria.factory.endpoint"

	AttrErrorMessage = "error.message"
)

// SetHTTPAttributes sets the inbound request attributes on span.
func SetHTTPAttributes(span trace.Span, method, path string, status int) {
	span.SetAttributes(
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrHTTPRoute, path),
		attribute.Int(AttrHTTPStatus, status),
	)
}

// SetOrderAttributes describes an order on span.
func SetOrderAttributes(span trace.Span, franchiseID, storeID int64, items int, total float64) {
	span.SetAttributes(
		attribute.Int64(AttrFranchiseID, franchiseID),
		attribute.Int64(AttrStoreID, storeID),
		attribute.Int(AttrOrderItems, items),
		attribute.Float64(AttrOrderTotal, total),
	)
}

// SetFactoryAttributes describes an outbound factory call on span.
func SetFactoryAttributes(span trace.Span, method, host, endpoint string, status int) {
	span.SetAttributes(
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrServerAddr, host),
		attribute.String(AttrFactoryEndpoint, endpoint),
	)
	if status > 0 {
		span.SetAttributes(attribute.Int(AttrHTTPStatus, status))
	}
}
