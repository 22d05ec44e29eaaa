// Command lookout logs model predictions and reports on the collected logs.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

// CLI is the command line grammar.
type CLI struct {
	Config   string `short:"c" help:"Configuration file path" default:"lookout.yaml"`
	LogsDir  string `help:"Directory of the local backend"`
	Backend  string `help:"Storage backend (local, s3, minio)"`
	Bucket   string `help:"Bucket of the s3 or minio backend"`
	Prefix   string `help:"Key prefix inside the bucket"`
	Endpoint string `help:"Endpoint of the s3 or minio backend"`
	Verbose  bool   `short:"v" help:"Enable verbose logging"`

	Log      LogCmd      `cmd:"" help:"Log a single prediction"`
	Insights InsightsCmd `cmd:"" help:"Summarize the logs of a model"`
	Inspect  InspectCmd  `cmd:"" help:"Show the header and schema of a log object"`
}

// LogCmd logs one prediction.
type LogCmd struct {
	Model      string    `short:"m" help:"Model name" required:""`
	ImageName  string    `help:"Name of the predicted image" required:""`
	PredClass  string    `help:"Predicted class" required:""`
	Confidence float64   `help:"Prediction confidence" required:""`
	BBox       []float64 `name:"bbox" help:"Bounding box as x1,y1,x2,y2" required:""`
	Image      string    `help:"Image file used to compute metrics" type:"existingfile"`
	Metrics    []string  `help:"Image metrics to compute, e.g. contrast,blur"`
}

// InsightsCmd prints summary statistics, outliers and correlations.
type InsightsCmd struct {
	Model string  `short:"m" help:"Model name" required:""`
	IQR   float64 `name:"iqr" help:"IQR multiplier for outlier detection" default:"1.5"`
}

// InspectCmd prints one log object.
type InspectCmd struct {
	Object string `arg:"" help:"Object name, e.g. detector/detector_logs_42.lkc"`
	Head   int    `help:"Number of rows to print" default:"0"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("lookout"),
		kong.Description("Prediction logging and data insights for vision models."),
		kong.UsageOnError(),
	)

	logLevel := slog.LevelInfo
	if cli.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cli.Config)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	cfg.applyFlags(&cli)
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	switch kctx.Command() {
	case "log":
		if err := runLog(ctx, cfg, &cli.Log, logLevel, os.Stdout); err != nil {
			slog.Error("Log failed", "error", err)
			os.Exit(1)
		}
	case "insights":
		if err := runInsights(ctx, cfg, &cli.Insights, os.Stdout); err != nil {
			slog.Error("Insights failed", "error", err)
			os.Exit(1)
		}
	case "inspect <object>":
		if err := runInspect(ctx, cfg, &cli.Inspect, os.Stdout); err != nil {
			slog.Error("Inspect failed", "error", err)
			os.Exit(1)
		}
	}
}
