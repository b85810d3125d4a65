package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wdm0006/csvinsight/pkg/config"
	"github.com/wdm0006/csvinsight/pkg/profile"
	"github.com/wdm0006/csvinsight/pkg/session"
)

var version = "0.1.0-dev"

// errLoadFailed is returned after the loader already printed its diagnostic.
var errLoadFailed = errors.New("load failed")

type flags struct {
	cfgFile  string
	debug    bool
	format   string
	showRows int
	delim    string
	cacheDir string
	relErr   float64
}

func newRootCmd() *cobra.Command {
	var fl flags
	cmd := &cobra.Command{
		Use:           "insight [csv_path]",
		Short:         "Profile a CSV file: schema, shape, nulls, duplicates and column statistics",
		Args:          cobra.MaximumNArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, &fl)
			if err != nil {
				return err
			}
			path := ""
			if len(args) > 0 {
				path = args[0]
			} else if path, err = prompt(cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
				return err
			}
			return run(cmd.Context(), cmd, cfg, path, fl.debug)
		},
	}
	f := cmd.Flags()
	f.StringVar(&fl.cfgFile, "config", "", "config file (.yaml, .yml, .toml or .json)")
	f.BoolVar(&fl.debug, "debug", false, "enable debug output")
	f.StringVar(&fl.format, "format", "text", "output format: text or json")
	f.IntVar(&fl.showRows, "show-rows", 20, "sample rows shown before the analysis")
	f.StringVar(&fl.delim, "delimiter", ",", `field delimiter, "tab", or "auto" to sniff it`)
	f.StringVar(&fl.cacheDir, "cache-dir", "", "persist loaded tables as parquet in this directory")
	f.Float64Var(&fl.relErr, "relative-error", 0.001, "relative rank error of the approximate median")
	return cmd
}

// Execute is the entry point called by main.main()
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}
	if !errors.Is(err, errLoadFailed) {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
	}
	os.Exit(1)
}

func loadConfig(cmd *cobra.Command, fl *flags) (config.Config, error) {
	cfg := config.Default()
	if fl.cfgFile != "" {
		c, err := config.Load(fl.cfgFile)
		if err != nil {
			return cfg, err
		}
		cfg = c
	}
	f := cmd.Flags()
	if f.Changed("format") {
		cfg.Output.Format = fl.format
	}
	if f.Changed("show-rows") {
		cfg.Analysis.ShowRows = fl.showRows
	}
	if f.Changed("delimiter") {
		cfg.Reader.Delimiter = fl.delim
	}
	if f.Changed("cache-dir") {
		cfg.Cache.Dir = fl.cacheDir
	}
	if f.Changed("relative-error") {
		cfg.Analysis.MedianRelativeError = fl.relErr
	}
	return cfg, cfg.Validate()
}

func prompt(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter the path to the CSV file: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	path := strings.TrimSpace(line)
	if path == "" {
		return "", errors.New("no CSV path given")
	}
	return path, nil
}

func run(ctx context.Context, cmd *cobra.Command, cfg config.Config, path string, debug bool) error {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	opt := session.Options{
		Reader:    cfg.ReaderOptions(),
		ChunkSize: cfg.Reader.ChunkSize,
		CacheDir:  cfg.Cache.Dir,
		Warn:      errOut,
	}
	if debug {
		opt.Debug = errOut
	}
	sess, err := session.New(opt)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	t := profile.Load(ctx, sess, path, errOut)
	if t == nil {
		return errLoadFailed
	}
	a := &profile.Analyzer{
		RelativeError: cfg.Analysis.MedianRelativeError,
		Parallelism:   cfg.Analysis.Parallelism,
	}
	if cfg.Output.Format == "json" {
		r, err := a.Analyze(ctx, t)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	t.Show(out, cfg.Analysis.ShowRows, cfg.Analysis.Truncate)
	a.Out = out
	_, err = a.Analyze(ctx, t)
	return err
}
