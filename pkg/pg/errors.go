package pg

import "errors"

var (
	ErrFailedToParseConfig = errors.New("failed to parse postgres config")
	ErrFailedToConnect     = errors.New("failed to connect to postgres")
	ErrFailedToMigrate     = errors.New("failed to apply migrations")
)
