// Command glsandbox is the repository root entry point; it behaves exactly
// like cmd/glsandbox so that `go run .` works from a checkout.
package main

import (
	"os"

	"glsandbox/internal/app"
)

func main() {
	os.Exit(app.Main(os.Args[1:], os.Stderr))
}
