package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/awmpietro/golang-bayesnet-inference/internal/app"
	"github.com/awmpietro/golang-bayesnet-inference/internal/bayes"
	"github.com/awmpietro/golang-bayesnet-inference/internal/bayes/cache"
	"github.com/awmpietro/golang-bayesnet-inference/internal/config"
)

type rootOptions struct {
	format     string
	configPath string
	logSteps   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "bnquery",
		Short:        "Answer probability queries on a Bayesian network by variable elimination",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.format, "format", "", "network format: xmlbif, dot or yaml (default: from file extension)")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file overlaying the environment")
	root.PersistentFlags().BoolVar(&opts.logSteps, "log-steps", false, "log the latency of every elimination step to stderr")

	root.AddCommand(
		newInteractiveCmd(opts, partMarginal),
		newInteractiveCmd(opts, partOrdered),
		newInteractiveCmd(opts, partEvidence),
		newQueryCmd(opts),
		newValidateCmd(opts),
	)
	return root
}

// session is one loaded network ready to be queried.
type session struct {
	svc     *app.Service
	source  string
	options app.QueryOptions
}

func (o *rootOptions) open(path string, stderr io.Writer) (*session, error) {
	cfg, err := config.LoadFile(o.configPath)
	if err != nil {
		return nil, err
	}

	format, err := o.resolveFormat(path, cfg.DefaultFormat)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("invalid file name: %w", err)
	}

	var engineOpts []bayes.EngineOption
	if o.logSteps {
		engineOpts = append(engineOpts, bayes.WithStepObserver(bayes.NewStepLogger(log.New(stderr, "", log.LstdFlags))))
	}

	svc := app.NewService(
		bayes.NewCompiler(bayes.WithTableTolerance(cfg.TableTolerance)),
		bayes.NewEngine(engineOpts...),
		cache.NewInMemory(cfg.CacheMaxItems),
	)
	return &session{svc: svc, source: string(raw), options: app.QueryOptions{Format: format}}, nil
}

// resolveFormat prefers --format, then the file extension, then the
// configured default.
func (o *rootOptions) resolveFormat(path, fallback string) (bayes.Format, error) {
	if o.format != "" {
		return bayes.ParseFormat(o.format)
	}
	if f, err := bayes.DetectFormat(path); err == nil {
		return f, nil
	}
	return bayes.ParseFormat(fallback)
}

func printProbability(w io.Writer, p float64) {
	fmt.Fprintf(w, "%.5f\n", p)
}
