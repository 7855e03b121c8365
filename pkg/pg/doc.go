// Package pg provides PostgreSQL connection pooling (pgx) and schema
// migrations (goose) for the service's persistent stores.
package pg
