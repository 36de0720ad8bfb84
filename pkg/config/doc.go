// Package config loads and validates the pizzeria service configuration.
//
// Configuration is read from a YAML file, decoded on top of the defaults,
// overridden by PIZZERIA_* environment variables and validated:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//	if err != nil {
//		var verr config.ValidationError
//		if errors.As(err, &verr) {
//			for _, fe := range verr.Errors {
//				fmt.Println(fe.Field, fe.Message)
//			}
//		}
//	}
//
// A Watcher can follow the file and deliver reloaded configurations, which
// the server uses to rotate collector credentials without a restart.
//
// Example configuration:
//
//	server:
//	  listen_address: "0.0.0.0:3000"
//	auth:
//	  jwt_secret: "change-me-to-something-long"
//	database:
//	  path: "data/pizzeria.db"
//	factory:
//	  url: "https://factory.example.com"
//	  api_key: "factory-key"
//	metrics:
//	  flush_interval: 5s
//	  collector_url: "https://otlp.example.com/otlp/v1/metrics"
//	  credential: "123456:glc_key"
//	  auth_mode: basic
//	  source: "pizzeria-dev"
//	logging:
//	  level: info
//	  format: json
package config
