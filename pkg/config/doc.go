// Package config provides application configuration from defaults, an
// optional YAML file, and environment variable overrides.
//
// # Configuration Structure
//
// Server settings:
//
//	PORTALSYNC_HOST="0.0.0.0"
//	PORTALSYNC_PORT="8080"
//	PORTALSYNC_HEALTH_PORT="9090"
//	PORTALSYNC_READ_TIMEOUT="15s"
//	PORTALSYNC_WRITE_TIMEOUT="15s"
//
// Gateway management API settings:
//
//	PORTALSYNC_EDGE_BASE_URL="https://api.gateway.example.com/v1"
//	PORTALSYNC_EDGE_ORG="my-org"
//	PORTALSYNC_EDGE_USERNAME="admin@example.com"
//	PORTALSYNC_EDGE_PASSWORD="secret"
//
// Account database and cache settings:
//
//	PORTALSYNC_POSTGRES_URL="postgres://localhost/portalsync?sslmode=disable"
//	PORTALSYNC_REDIS_ADDR="localhost:6379"
//	PORTALSYNC_CACHE_TTL="15m"
//	PORTALSYNC_CACHE_L1_ENTRIES="1024"
//
// Reconciler settings:
//
//	PORTALSYNC_RECONCILER_ENABLED="true"
//	PORTALSYNC_RECONCILER_SCHEDULE="@every 1h"
//
// The same keys are accepted in a YAML file passed to Load; environment
// variables take precedence over file values.
package config
