// Package logging builds the process-wide log/slog logger.
//
// The logger writes JSON or text, filters by level, and optionally masks
// sensitive data through a ReplaceAttr hook:
//
//   - attributes named like password, token, api_key, authorization or
//     credential are replaced with a short hint ("eyJh***")
//   - Bearer and Basic authorization values inside strings become "Bearer ***"
//   - email addresses inside strings become "***@***"
//
// Request-scoped fields are carried on the context:
//
//	ctx = logging.WithRequestID(ctx, id)
//	logger.InfoContext(ctx, "order placed") // adds request_id
package logging
