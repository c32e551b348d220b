package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rafabd1/PIIHound/cmd"
)

func main() {
	printBanner()

	ctx := setupSignalHandling()

	cmd.Execute(ctx)
}

// setupSignalHandling cancels the scan on the first Ctrl+C and exits on the second
func setupSignalHandling() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal. Finishing files in progress...")
		cancel()
		<-c
		os.Exit(130)
	}()

	return ctx
}

func printBanner() {
	banner := `
    ____  ________  __                      __
   / __ \/  _/  _/ / / /___  __  ______  ____/ /
  / /_/ // / / /  / /_/ / __ \/ / / / __ \/ __  /
 / ____// /_/ /  / __  / /_/ / /_/ / / / / /_/ /
/_/   /___/___/ /_/ /_/\____/\__,_/_/ /_/\__,_/   v%s

PII Finder for Replication Packages

`
	fmt.Fprintf(os.Stderr, banner, cmd.Version)
}
