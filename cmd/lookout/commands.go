package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/hupe1980/lookout"
	"github.com/hupe1980/lookout/blobstore"
	"github.com/hupe1980/lookout/imagemetric"
	"github.com/hupe1980/lookout/insights"
	"github.com/hupe1980/lookout/internal/colfile"
)

func runLog(ctx context.Context, cfg *Config, cmd *LogCmd, level slog.Level, out io.Writer) error {
	if len(cmd.BBox) != 4 {
		return fmt.Errorf("bbox needs 4 values, got %d", len(cmd.BBox))
	}

	names := cmd.Metrics
	if len(names) == 0 {
		names = cfg.Metrics
	}
	metrics, err := imagemetric.ParseIDs(names)
	if err != nil {
		return err
	}

	compression, err := lookout.ParseCompression(cfg.Compression)
	if err != nil {
		return err
	}

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}

	opts := []lookout.Option{
		lookout.WithBackend(backend),
		lookout.WithMetrics(metrics...),
		lookout.WithCompression(compression),
		lookout.WithLogLevel(level),
	}
	if cfg.WriterID != "" {
		opts = append(opts, lookout.WithWriterID(cfg.WriterID))
	}

	logger, err := lookout.New(ctx, cmd.Model, opts...)
	if err != nil {
		return err
	}
	defer logger.Close()

	p := lookout.Prediction{
		ImageName:  cmd.ImageName,
		PredClass:  cmd.PredClass,
		Confidence: cmd.Confidence,
		BBox: imagemetric.BBox{
			X1: cmd.BBox[0], Y1: cmd.BBox[1],
			X2: cmd.BBox[2], Y2: cmd.BBox[3],
		},
	}
	if cmd.Image != "" {
		p.Image = imagemetric.FromPath(cmd.Image)
	}

	if err := logger.LogPrediction(ctx, p); err != nil {
		return err
	}

	info := logger.Info()
	fmt.Fprintf(out, "logged %s to %s (%d rows)\n", cmd.ImageName, info.Name, info.Rows)
	return logger.Close()
}

func runInsights(ctx context.Context, cfg *Config, cmd *InsightsCmd, out io.Writer) error {
	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}

	ds, err := insights.Load(ctx, backend, cmd.Model)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Model %s: %d files\n\n", cmd.Model, len(ds.Files))
	return ds.Generate(cmd.IQR).Render(out)
}

func runInspect(ctx context.Context, cfg *Config, cmd *InspectCmd, out io.Writer) error {
	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}

	data, err := blobstore.ReadAll(ctx, backend, cmd.Object)
	if err != nil {
		return err
	}

	f, err := colfile.Decode(data)
	if err != nil {
		return fmt.Errorf("decode %s: %w", cmd.Object, err)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "object:\t%s\n", cmd.Object)
	fmt.Fprintf(tw, "store id:\t%s\n", f.Meta.StoreID)
	fmt.Fprintf(tw, "created:\t%s\n", f.Meta.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(tw, "model:\t%s\n", f.Meta.Model)
	fmt.Fprintf(tw, "writer:\t%s\n", f.Meta.Writer)
	fmt.Fprintf(tw, "version:\t%d\n", f.Header.Version)
	fmt.Fprintf(tw, "compression:\t%s\n", f.Header.Compression)
	fmt.Fprintf(tw, "size:\t%d bytes\n", len(data))
	fmt.Fprintf(tw, "rows:\t%d\n", f.Table.NumRows())
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nschema:")
	s := f.Table.Schema()
	for i := 0; i < s.Len(); i++ {
		field := s.FieldAt(i)
		fmt.Fprintf(tw, "  %s\t%s\n", field.Name, field.Type)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	head := min(cmd.Head, f.Table.NumRows())
	if head <= 0 {
		return nil
	}

	fmt.Fprintln(out, "\nrows:")
	for _, name := range s.Names() {
		fmt.Fprintf(tw, "%s\t", name)
	}
	fmt.Fprintln(tw)
	for i := 0; i < head; i++ {
		for c := 0; c < f.Table.NumCols(); c++ {
			fmt.Fprintf(tw, "%s\t", f.Table.Column(c).Value(i))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
