package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/pdf-visual-diff/internal/config"
	"github.com/ironsheep/pdf-visual-diff/internal/pipeline"
	"github.com/ironsheep/pdf-visual-diff/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "version":
			fmt.Fprintf(stdout, "pdf-visual-diff %s\n", Version)
			fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
			return exitOK
		case "--help", "-h", "help":
			printUsage(stdout, newFlagSet(stdout, &flagValues{}))
			return exitOK
		case "mcp":
			return runServer(ctx, args[1:], stderr)
		}
	}
	return runDiff(ctx, args, stdout, stderr)
}

func runDiff(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var fv flagValues
	fs := newFlagSet(stderr, &fv)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(stderr, "expected two PDF files")
		printUsage(stderr, fs)
		return exitUsage
	}

	cfg, err := loadConfig(fs, &fv)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	logger := initLogger(stderr, cfg.LogLevel, fv.debug)
	logger.WithFields(logrus.Fields{
		"version": Version,
		"dpi":     cfg.DPI,
		"padding": cfg.Padding,
		"backend": cfg.Backend,
	}).Debug("Starting comparison")

	res, err := pipeline.New(cfg, nil, logger).Run(ctx, pipeline.Request{
		Original:  fs.Arg(0),
		Changed:   fs.Arg(1),
		OutputDir: fv.out,
	})
	if err != nil {
		logger.WithError(err).Error("Comparison failed")
		return exitFailure
	}

	s := res.Report.Summary
	fmt.Fprintf(stdout, "Compared %d pages: %d changed, %d change areas\n", s.Pages, s.ChangedPages, s.TotalClusters)
	if len(s.TextChangedPages) > 0 {
		fmt.Fprintf(stdout, "Text layer differs on pages %v\n", s.TextChangedPages)
	}
	fmt.Fprintf(stdout, "Report: %s\n", res.HTMLPath)

	if s.Failed() {
		fmt.Fprintf(stderr, "%d pages could not be compared\n", s.FailedPages)
		return exitFailure
	}
	return exitOK
}

func runServer(ctx context.Context, args []string, stderr io.Writer) int {
	var fv flagValues
	fs := newFlagSet(stderr, &fv)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	cfg, err := loadConfig(fs, &fv)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	// stdout carries the protocol, so logs always go to stderr.
	logger := initLogger(stderr, cfg.LogLevel, fv.debug)
	logger.WithField("version", Version).Debug("Starting MCP server")

	server.Version = Version
	if err := server.New(cfg, logger).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Error("Server error")
		return exitFailure
	}
	return exitOK
}

// initLogger initializes the logger with appropriate level
func initLogger(out io.Writer, level string, debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
		logger.Debug("Debug logging enabled")
		return logger
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return logger
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "pdf-visual-diff - visual comparison of PDF documents")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  pdf-visual-diff [options] original.pdf changed.pdf")
	fmt.Fprintln(w, "  pdf-visual-diff mcp [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintf(w, "  %s, %s, %s, %s\n", config.EnvDPI, config.EnvPadding, config.EnvWorkers, config.EnvLogLevel)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "The mcp command serves the comparison tools over MCP on stdin/stdout.")
}
