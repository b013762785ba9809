// Package config loads the gateway configuration.
//
// Values are resolved in three layers: built-in defaults, then an optional
// YAML file, then CONTENTGATE_ environment variables. String values read
// from the file may reference the environment as ${VAR}; a reference to an
// unset variable is an error rather than an empty string, so a missing
// secret fails at startup.
//
//	# contentgate.yaml
//	auth:
//	  jwt_secret: ${JWT_SECRET}
//	upstream:
//	  api_key: ${ANTHROPIC_API_KEY}
//	  max_concurrent: 8
//	ledger:
//	  driver: postgres
//	  dsn: ${DATABASE_URL}
//
// The same fields can be set directly, for example
// CONTENTGATE_UPSTREAM_MAX_CONCURRENT=8.
package config
