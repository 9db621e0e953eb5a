// Command convert turns CRM service appointment exports into the
// upload-ready file.
//
//	convert [flags] FILE          convert one export
//	convert -dir DIR [flags]      convert every export in DIR once
//	convert -dir DIR -watch       keep converting exports dropped into DIR
//	convert -dir DIR -schedule "0 6 * * *"
//
// Flags override the CONVERT_* and INBOX_* environment settings.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/jbec2912-cell/csv-filter-tool/internal/config"
	"github.com/jbec2912-cell/csv-filter-tool/internal/core"
	"github.com/jbec2912-cell/csv-filter-tool/internal/core/layouts"
	"github.com/jbec2912-cell/csv-filter-tool/internal/inbox"
	"github.com/jbec2912-cell/csv-filter-tool/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	layout             string
	layoutFile         string
	format             string
	policy             string
	appointmentLayout  string
	requireAppointment bool
	encoding           string
	name               string
	out                string
	dir                string
	outDir             string
	watch              bool
	schedule           string
}

func parseFlags(args []string, stderr io.Writer) (*options, *flag.FlagSet, error) {
	var o options
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.layout, "layout", "", "layout key or auto")
	fs.StringVar(&o.layoutFile, "layouts", "", "YAML file with additional layouts")
	fs.StringVar(&o.format, "format", "", "output format: csv|xlsx")
	fs.StringVar(&o.policy, "policy", "", "vehicle policy: A|B")
	fs.StringVar(&o.appointmentLayout, "appointment-layout", "", "Go time layout for the Appointment column")
	fs.BoolVar(&o.requireAppointment, "require-appointment", false, "drop rows without a parsed appointment date and time")
	fs.StringVar(&o.encoding, "encoding", "", "input encoding: utf-8|windows-1252|latin1")
	fs.StringVar(&o.name, "name", "", "output file name (default from CONVERT_OUTPUT_NAME)")
	fs.StringVar(&o.out, "out", "", "output path for a single file")
	fs.StringVar(&o.dir, "dir", "", "convert every export in this directory")
	fs.StringVar(&o.outDir, "out-dir", "", "directory for -dir output (default: next to each input)")
	fs.BoolVar(&o.watch, "watch", false, "with -dir, keep watching for new exports")
	fs.StringVar(&o.schedule, "schedule", "", "with -dir, sweep on this cron expression")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: convert [flags] FILE | convert -dir DIR [-watch | -schedule EXPR] [flags]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return &o, fs, nil
}

// apply copies explicitly set flags over the environment configuration.
func (o *options) apply(fs *flag.FlagSet, cfg *config.Config) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "layout":
			cfg.Convert.Layout = o.layout
		case "layouts":
			cfg.Convert.LayoutFile = o.layoutFile
		case "format":
			cfg.Convert.OutputFormat = o.format
		case "policy":
			cfg.Convert.VehiclePolicy = o.policy
		case "appointment-layout":
			cfg.Convert.AppointmentLayout = o.appointmentLayout
		case "require-appointment":
			cfg.Convert.RequireAppointment = o.requireAppointment
		case "encoding":
			cfg.Convert.InputEncoding = o.encoding
		case "name":
			cfg.Convert.OutputName = o.name
		case "dir":
			cfg.Inbox.Dir = o.dir
		case "out-dir":
			cfg.Inbox.OutputDir = o.outDir
		case "schedule":
			cfg.Inbox.Schedule = o.schedule
		}
	})
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, fs, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	// A .env file is optional; exported variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "convert: %v\n", err)
		return 1
	}
	opts.apply(fs, cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "convert: %v\n", err)
		return 1
	}

	slog.SetDefault(logging.New(stderr, cfg.Logging.Level, cfg.Logging.Format))

	if cfg.Convert.LayoutFile != "" {
		if _, err := layouts.LoadFile(cfg.Convert.LayoutFile); err != nil {
			fmt.Fprintf(stderr, "convert: %v\n", err)
			return 1
		}
	}

	svc := core.NewService(cfg.ServiceSettings())

	if cfg.Inbox.Dir != "" {
		return runInbox(ctx, cfg, svc, opts.watch, stdout, stderr)
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	return runFile(ctx, svc, fs.Arg(0), opts.out, stdout, stderr)
}

func runFile(ctx context.Context, svc *core.Service, in, out string, stdout, stderr io.Writer) int {
	settings := svc.Settings()
	if out == "" {
		format, err := core.ParseFormat(settings.Format)
		if err != nil {
			fmt.Fprintf(stderr, "convert: %v\n", err)
			return 1
		}
		out = filepath.Join(filepath.Dir(in), core.OutputFileName(settings.OutputName, format))
	}

	res, err := inbox.ConvertFile(ctx, svc, core.Request{Source: core.SourceCLI}, in, out)
	if err != nil {
		fmt.Fprintf(stderr, "convert: %v\n", err)
		if core.IsUserFacing(err) {
			fmt.Fprintf(stderr, "%s\n", core.FormatUserError(err))
		}
		return 1
	}

	fmt.Fprintf(stdout, "Wrote %d rows to %s\n", res.Summary.RowsWritten, out)
	for _, w := range res.Summary.Warnings {
		fmt.Fprintf(stderr, "warning: %s\n", w)
	}
	return 0
}

func runInbox(ctx context.Context, cfg *config.Config, svc *core.Service, watch bool, stdout, stderr io.Writer) int {
	sweeper := &inbox.Sweeper{
		Dir:        cfg.Inbox.Dir,
		OutputName: cfg.Convert.OutputName,
		Convert:    inbox.ServiceConverter(svc, cfg.Inbox.OutputDir),
		Debounce:   cfg.Inbox.Debounce,
		Logger:     slog.Default(),
	}

	var err error
	switch {
	case watch:
		err = sweeper.Watch(ctx)
	case cfg.Inbox.Schedule != "":
		err = sweeper.Schedule(ctx, cfg.Inbox.Schedule)
	default:
		var n int
		n, err = sweeper.Sweep(ctx)
		fmt.Fprintf(stdout, "Converted %d files in %s\n", n, cfg.Inbox.Dir)
	}
	if err != nil {
		fmt.Fprintf(stderr, "convert: %v\n", err)
		return 1
	}
	return 0
}
