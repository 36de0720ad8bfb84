// Package health runs readiness checks for the pizzeria's dependencies.
//
// Each dependency registers a CheckFunc. A check that returns ErrDisabled
// reports "disabled" instead of failing, which is how optional integrations
// such as the factory or the metrics collector show up when they are not
// configured:
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("database", db.Ping)
//	checker.RegisterCheck("factory", func(context.Context) error {
//	    if !client.Enabled() {
//	        return health.ErrDisabled
//	    }
//	    return nil
//	})
//
// Handler serves the aggregated report: 200 while every enabled check
// passes, 503 once any of them fails or times out.
package health
