//go:build !(js && wasm)

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "site: build with GOOS=js GOARCH=wasm; see the Makefile's wasm target")
	os.Exit(2)
}
