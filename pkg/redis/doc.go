// Package redis connects to a redis server with retry, for the redis-backed
// usage ledger.
package redis
