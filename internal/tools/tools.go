//go:build tools
// +build tools

package tools

import (
	_ "github.com/golang-migrate/migrate/v4/cmd/migrate"
	_ "github.com/golangci/golangci-lint/cmd/golangci-lint"
	_ "github.com/petergtz/pegomock/v4"

	_ "golang.org/x/tools/cmd/stringer"
)
