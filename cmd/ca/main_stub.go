//go:build !ebiten

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "The GUI viewer requires the ebiten build tag.")
	fmt.Fprintln(os.Stderr, "Build with `go build -tags ebiten ./cmd/ca`, or use `diffuse -watch` in a terminal.")
	os.Exit(2)
}
