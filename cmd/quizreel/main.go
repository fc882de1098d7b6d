package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// buildVersion is set with -ldflags "-X main.buildVersion=...".
var buildVersion = "dev"

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "[-] "+err.Error())
		}
		os.Exit(1)
	}
}
