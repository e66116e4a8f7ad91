package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/beemafrica/beem-go/internal/apierr"
	"github.com/beemafrica/beem-go/internal/cli"
	"github.com/beemafrica/beem-go/internal/cli/ui"
)

// Set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersion(version, commit, date)
	if err := cli.Execute(); err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError(err, hints(err)...))
		os.Exit(1)
	}
}

func hints(err error) []string {
	if errors.Is(err, apierr.ErrInvalidArgument) {
		return []string{"beem <command> --help"}
	}
	if apierr.StatusCode(err) == 401 {
		return []string{"check beem.api_key and beem.secret_key", "beem config get beem.api_key"}
	}
	return nil
}
