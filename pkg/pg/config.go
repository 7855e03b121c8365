package pg

import "time"

type Config struct {
	ConnectionString string        `env:"PG_CONN_URL,required"`              // postgres connection URL
	MaxOpenConns     int32         `env:"PG_MAX_OPEN_CONNS" envDefault:"10"` // maximum open connections in the pool
	MaxIdleConns     int32         `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`  // minimum idle connections kept warm
	RetryAttempts    int           `env:"PG_RETRY_ATTEMPTS" envDefault:"3"`  // connection attempts before giving up
	RetryInterval    time.Duration `env:"PG_RETRY_INTERVAL" envDefault:"5s"` // base wait between attempts

	MigrationsPath  string `env:"PG_MIGRATIONS_PATH" envDefault:"internal/db/migrations"` // goose migrations directory
	MigrationsTable string `env:"PG_MIGRATIONS_TABLE" envDefault:"schema_migrations"`     // goose version table
}
