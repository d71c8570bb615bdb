// Package main exports the records of a bundle manifest to files.
//
// Usage:
//
//	go run ./cmd/assetexport -manifest bundles/ui.json -out export/ui
//	go run ./cmd/assetexport -manifest bundles/ui.json -mode table -catalogs IconCatalog
//
// Settings not given as flags come from the environment (see
// pipeline/config).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/1siamBot/asset-exporter/pipeline/asset"
	"github.com/1siamBot/asset-exporter/pipeline/batch"
	"github.com/1siamBot/asset-exporter/pipeline/config"
	"github.com/1siamBot/asset-exporter/pipeline/convert"
	"github.com/1siamBot/asset-exporter/pipeline/dispatch"
	"github.com/1siamBot/asset-exporter/pipeline/imagefmt"
	"github.com/1siamBot/asset-exporter/pipeline/logging"
	"github.com/1siamBot/asset-exporter/pipeline/manifest"
	"github.com/1siamBot/asset-exporter/pipeline/metrics"
	"github.com/1siamBot/asset-exporter/pipeline/mirror"
	"github.com/1siamBot/asset-exporter/pipeline/table"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	manifestPath := flag.String("manifest", "", "Path to the bundle manifest (JSON)")
	outDir := flag.String("out", "export", "Output directory")
	modeName := flag.String("mode", "convert", "Export mode: convert, raw, dump or table")
	formatName := flag.String("format", cfg.ImageFormat.String(), "Image format: png, jpeg, bmp, tga, tiff or gif")
	kinds := flag.String("kinds", "", "Comma-separated kinds to export (default all)")
	catalogs := flag.String("catalogs", "", "Comma-separated catalog names for table mode (default every MonoBehaviour)")
	withAnimations := flag.Bool("with-animations", false, "Export every animation clip with each animator")
	flag.BoolVar(&cfg.ConvertTexture, "convert-texture", cfg.ConvertTexture, "Decode textures instead of writing raw data")
	flag.BoolVar(&cfg.ConvertAudio, "convert-audio", cfg.ConvertAudio, "Transcode audio to WAV where possible")
	flag.BoolVar(&cfg.RestoreExtension, "restore-extension", cfg.RestoreExtension, "Keep text assets' container extension")
	flag.IntVar(&cfg.MaxImageSize, "max-image-size", cfg.MaxImageSize, "Scale images down to fit this many pixels per side (0 keeps size)")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "Concurrent exports")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: console or json")
	flag.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "Write prometheus metrics to this file after the run")
	doMirror := flag.Bool("mirror", cfg.Mirror.Enabled(), "Upload exported files to S3_BUCKET")
	flag.Parse()

	if *manifestPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: assetexport -manifest <manifest.json> -out <dir> [-mode convert|raw|dump|table]")
		os.Exit(1)
	}
	mode, err := dispatch.ParseMode(*modeName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if cfg.ImageFormat, err = imagefmt.ParseFormat(*formatName); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *doMirror && !cfg.Mirror.Enabled() {
		fmt.Fprintln(os.Stderr, "-mirror needs S3_BUCKET")
		os.Exit(1)
	}

	if err := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}); err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithRunID(ctx, uuid.NewString())
	log := logging.WithContext(ctx)

	if err := run(ctx, log, cfg, runOptions{
		manifest:       *manifestPath,
		out:            *outDir,
		mode:           mode,
		kinds:          splitList(*kinds),
		catalogs:       splitList(*catalogs),
		withAnimations: *withAnimations,
		mirror:         *doMirror,
	}); err != nil {
		log.Error("export failed", zap.Error(err))
		logging.Sync()
		os.Exit(1)
	}
}

type runOptions struct {
	manifest       string
	out            string
	mode           dispatch.Mode
	kinds          []string
	catalogs       []string
	withAnimations bool
	mirror         bool
}

func run(ctx context.Context, log *zap.Logger, cfg config.Config, opts runOptions) error {
	start := time.Now()
	all, err := manifest.Load(opts.manifest)
	if err != nil {
		return err
	}
	selected := selectRecords(all, opts)
	log.Info("starting export",
		zap.String("manifest", opts.manifest),
		zap.String("out", opts.out),
		zap.Stringer("mode", opts.mode),
		zap.Int("records", len(all)),
		zap.Int("selected", len(selected)),
		zap.Int("workers", cfg.Workers))

	if err := os.MkdirAll(opts.out, 0755); err != nil {
		return err
	}

	conv := convert.New(cfg, convert.WithLogger(log))
	exp := dispatch.New(conv, log).For(opts.mode, all, opts.withAnimations)
	results, runErr := batch.Run(ctx, exp, selected, opts.out, cfg.Workers)

	s := batch.Summarize(results)
	fields := []zap.Field{
		zap.Int("total", s.Total),
		zap.Int("succeeded", s.Succeeded),
		zap.Int("failed", s.Failed),
		zap.Duration("duration", time.Since(start)),
	}
	for reason, n := range s.ByReason {
		fields = append(fields, zap.Int("failed_"+reason.String(), n))
	}
	if opts.mode == dispatch.ModeTable {
		fields = append(fields,
			zap.Int("entries_exported", s.TableExported),
			zap.Int("entries_skipped", s.TableSkipped),
			zap.Int("entries_failed", s.TableFailed))
	}
	log.Info("export finished", fields...)

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Warn("write metrics failed", zap.String("path", cfg.MetricsFile), zap.Error(err))
		}
	}
	if runErr != nil {
		return runErr
	}

	if opts.mirror {
		up, err := mirror.New(ctx, cfg.Mirror, log)
		if err != nil {
			return err
		}
		paths := batch.Paths(results)
		n, err := up.Upload(ctx, opts.out, paths)
		if err != nil {
			return fmt.Errorf("mirror: uploaded %d of %d files: %w", n, len(paths), err)
		}
		log.Info("mirrored export", zap.String("bucket", cfg.Mirror.Bucket), zap.Int("files", n))
	}
	return nil
}

// selectRecords picks the records a run exports. Table mode takes the
// named catalogs, or every scripted object but the master index.
func selectRecords(all []*asset.Record, opts runOptions) []*asset.Record {
	var out []*asset.Record
	for _, rec := range all {
		if opts.mode == dispatch.ModeTable {
			if rec.Kind != asset.KindMonoBehaviour {
				continue
			}
			if len(opts.catalogs) > 0 && !slices.Contains(opts.catalogs, rec.Name) {
				continue
			}
			if len(opts.catalogs) == 0 && rec.Name == table.MasterIndexName {
				continue
			}
			out = append(out, rec)
			continue
		}
		if len(opts.kinds) > 0 && !slices.ContainsFunc(opts.kinds, func(k string) bool {
			return strings.EqualFold(k, rec.ClassName())
		}) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
