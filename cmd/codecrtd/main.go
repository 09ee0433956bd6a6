// Package main is the entry point for codecrtd, the demo host-binding
// daemon around the codecrt codec runtime.
package main

import (
	"os"

	"github.com/jmylchreest/codecrt/cmd/codecrtd/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
