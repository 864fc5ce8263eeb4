// Package context holds request scoped values shared between transport, services and logging.
package context

type contextKey string
