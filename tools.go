//go:build tools

// Package messenger pins mockgen, run by the go:generate directives, in go.mod.
package messenger

import (
	_ "go.uber.org/mock/mockgen"
)
