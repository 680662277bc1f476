// Command apicall runs a single call and prints its result as JSON.
//
// Usage:
//
//	apicall [--config config.yaml] [--timeout 20s] <call> <input...>
//	apicall weather New York US
//	apicall youtubelookup dQw4w9WgXcQ
//	apicall --list
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/rhuss/apiclient/pkg/adapters"
	"github.com/rhuss/apiclient/pkg/apicall"
	"github.com/rhuss/apiclient/pkg/config"
	"github.com/rhuss/apiclient/pkg/debug"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		slog.Error("apicall failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("apicall", pflag.ContinueOnError)
	configPath := fs.StringP("config", "c", "", "path to the YAML config file")
	timeout := fs.DurationP("timeout", "t", 0, "overall deadline (default: calls.timeout plus 5s)")
	list := fs.BoolP("list", "l", false, "list the available calls and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	debug.Init(cfg.Logging.Debug, cfg.Logging.Level, cfg.Logging.Format)

	opts, err := cfg.AdapterOptions()
	if err != nil {
		return err
	}
	d := apicall.NewDispatcher(
		apicall.NewTable(adapters.Builtins(opts)),
		apicall.DefaultMiddleware(slog.Default())...,
	)

	if *list {
		_, err := fmt.Fprintln(out, strings.Join(d.Names(), "\n"))
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return errors.New("missing call name, see --list")
	}
	name, input := rest[0], strings.Join(rest[1:], " ")

	deadline := *timeout
	if deadline == 0 {
		deadline = cfg.Calls.Timeout + 5*time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	res, err := d.Call(ctx, name, input, cfg.Credentials()[name])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
