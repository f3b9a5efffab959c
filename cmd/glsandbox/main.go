package main

import (
	"os"

	"glsandbox/internal/app"
)

func main() {
	os.Exit(app.Main(os.Args[1:], os.Stderr))
}
