package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if errors.Is(err, context.Canceled) {
			// An interrupted run already left whole-date state behind;
			// exit with the conventional SIGINT status, nothing to print.
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, "marquee:", err)
		os.Exit(1)
	}
}
