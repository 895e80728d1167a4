//go:build tools
// +build tools

package nedmacro

import (
	_ "golang.org/x/tools/cmd/stringer"
)
