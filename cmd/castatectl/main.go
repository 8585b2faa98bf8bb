// Command castatectl reconciles certification authority settings against a
// backing registry store: inspect current state, test convergence against
// a desired configuration, converge, or serve the reconciler over HTTP.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/20100g/ActiveDirectoryCSDsc/cmd/flags"
	"github.com/20100g/ActiveDirectoryCSDsc/common"
	"github.com/20100g/ActiveDirectoryCSDsc/httpserver"
	"github.com/20100g/ActiveDirectoryCSDsc/interfaces"
	"github.com/20100g/ActiveDirectoryCSDsc/metrics"
	"github.com/20100g/ActiveDirectoryCSDsc/reconciler"
	"github.com/20100g/ActiveDirectoryCSDsc/restart"
	"github.com/20100g/ActiveDirectoryCSDsc/schema"
	"github.com/20100g/ActiveDirectoryCSDsc/store"
)

var commonFlags = []cli.Flag{
	flags.StoreURIFlag,
	flags.ServiceNameFlag,
	flags.RestartCommandFlag,
	flags.LogJsonFlag,
	flags.LogDebugFlag,
	flags.LogUidFlag,
	flags.LogServiceFlag,
}

func main() {
	app := &cli.App{
		Name:    "castatectl",
		Usage:   "reconcile certification authority settings",
		Version: common.Version,
		Commands: []*cli.Command{
			{
				Name:   "get",
				Usage:  "print the current configuration snapshot as JSON",
				Flags:  commonFlags,
				Action: runGet,
			},
			{
				Name:        "test",
				Usage:       "check convergence against a desired configuration",
				Description: "Exits 0 when converged and 1 when not.",
				Flags:       append([]cli.Flag{flags.DesiredFileFlag}, commonFlags...),
				Action:      runTest,
			},
			{
				Name:   "set",
				Usage:  "converge the configuration toward a desired configuration",
				Flags:  append([]cli.Flag{flags.DesiredFileFlag}, commonFlags...),
				Action: runSet,
			},
			{
				Name:  "serve",
				Usage: "serve the reconciler over HTTP",
				Flags: append([]cli.Flag{
					flags.ListenAddrFlag,
					flags.MetricsAddrFlag,
					flags.PprofFlag,
					flags.DrainSecondsFlag,
				}, commonFlags...),
				Action: runServe,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildResource wires a reconciler resource from the common flags.
func buildResource(cCtx *cli.Context, logger *slog.Logger) (*reconciler.Resource, error) {
	registryStore, err := store.NewFactory(logger).StoreFor(cCtx.String(flags.StoreURIFlag.Name))
	if err != nil {
		return nil, err
	}

	signaler := restart.NewExec(cCtx.StringSlice(flags.RestartCommandFlag.Name), logger)
	service := cCtx.String(flags.ServiceNameFlag.Name)

	logger.Debug("Using registry store",
		slog.String("uri", cCtx.String(flags.StoreURIFlag.Name)),
		slog.String("registry_key", schema.CertSvcConfigPath))

	return reconciler.NewResource(schema.Default(), registryStore, signaler, service, logger), nil
}

// loadDesired reads the partial desired snapshot from the YAML file named
// by the desired-file flag.
func loadDesired(cCtx *cli.Context, res *reconciler.Resource) (interfaces.Snapshot, error) {
	path := cCtx.String(flags.DesiredFileFlag.Name)
	if path == "" {
		return nil, fmt.Errorf("missing required flag: --%s", flags.DesiredFileFlag.Name)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read desired configuration: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid desired configuration: %w", err)
	}

	return reconciler.ParseDesired(res.Schema(), doc)
}

func runGet(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)
	res, err := buildResource(cCtx, logger)
	if err != nil {
		return err
	}

	current, err := res.Get(cCtx.Context)
	if err != nil {
		return err
	}

	out := make(map[string]any, len(current))
	for _, name := range current.Names() {
		v := current[name]
		switch v.Kind {
		case interfaces.StringList:
			out[name] = v.List
		case interfaces.FlagSet:
			out[name] = v.Flags
		default:
			out[name] = v.Scalar
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func runTest(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)
	res, err := buildResource(cCtx, logger)
	if err != nil {
		return err
	}

	desired, err := loadDesired(cCtx, res)
	if err != nil {
		return err
	}

	converged, err := res.Test(cCtx.Context, desired)
	if err != nil {
		return err
	}

	if !converged {
		return cli.Exit("configuration not converged", 1)
	}
	fmt.Println("configuration converged")
	return nil
}

func runSet(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)
	res, err := buildResource(cCtx, logger)
	if err != nil {
		return err
	}

	desired, err := loadDesired(cCtx, res)
	if err != nil {
		return err
	}

	applied, err := res.Set(cCtx.Context, desired)
	if err != nil {
		return err
	}

	fmt.Printf("applied %d setting(s)\n", applied)
	return nil
}

func runServe(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)
	res, err := buildResource(cCtx, logger)
	if err != nil {
		return err
	}

	m := metrics.New(common.PackageName)
	handler := httpserver.NewHandler(res, m, logger)
	srv := httpserver.New(flags.ConfigureServer(cCtx, logger), handler)
	srv.RunInBackground()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	srv.Shutdown()
	return nil
}
