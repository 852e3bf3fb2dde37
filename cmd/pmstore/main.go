// Package main provides the pmstore CLI.
package main

import "github.com/mesh-intelligence/pmstore/internal/cli"

func main() {
	cli.Execute()
}
