// Package main is the entry point for the reposcore CLI.
package main

import (
	"fmt"
	"os"

	"github.com/huangsam/reposcore/cmd"
	"github.com/huangsam/reposcore/internal/iocache"
)

func main() {
	code := 0
	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "❌", err)
		code = 1
	}

	cmd.StopMetrics()
	iocache.CloseStores()
	if err := cmd.StopProfiling(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "⚠️ ", err)
	}
	os.Exit(code)
}
