package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/BuzzLyutic/todo-api/internal/cli"
	"github.com/BuzzLyutic/todo-api/internal/client"
	"github.com/BuzzLyutic/todo-api/internal/theme"
)

func main() {
	defaultAPI := os.Getenv("TODO_API")
	if defaultAPI == "" {
		defaultAPI = client.DefaultBaseURL
	}
	// a missing config dir only disables saving theme changes
	defaultTheme, _ := theme.DefaultPath()

	apiURL := flag.String("api", defaultAPI, "base URL of the todo API (env TODO_API)")
	themePath := flag.String("theme", defaultTheme, "theme file, created on first change")
	flag.Usage = func() { cli.PrintHelp(os.Stderr) }
	flag.Parse()

	th, err := theme.Load(*themePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v; using %s\n", err, th.Name)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Run(ctx, flag.Args(), cli.Options{
		Client:    client.New(*apiURL),
		Theme:     th,
		ThemePath: *themePath,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
	})
	stop()
	os.Exit(code)
}
