// Package logger builds configured slog.Logger instances with environment
// driven defaults: JSON for production, text for development.
package logger
