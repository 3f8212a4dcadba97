// Command xlsxw converts CSV files into SpreadsheetML worksheet parts, one
// worksheet per input file.
//
//	xlsxw --config layout.yaml --zip parts.zip sales.csv returns.csv
//	xlsxw --output ./parts --encoding windows-1252 legacy.csv
package main

import (
	"archive/zip"
	"context"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/TsubasaBE/go-xlsxw/internal/config"
	"github.com/TsubasaBE/go-xlsxw/workbook"
)

type flags struct {
	configPath  string
	outputDir   string
	zipPath     string
	encoding    string
	logLevel    string
	concurrency int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "xlsxw [flags] input.csv...",
		Short: "Convert CSV files to SpreadsheetML worksheet parts",
		Long: `xlsxw writes one worksheet part per CSV input, plus the shared string
table and any worksheet relationships, either as files below --output or
as entries of the --zip archive.`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), f, args)
		},
	}
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "sheet layout file (.yaml, .yml or .toml)")
	cmd.Flags().StringVarP(&f.outputDir, "output", "o", "", "write parts as files below this directory")
	cmd.Flags().StringVarP(&f.zipPath, "zip", "z", "", "write parts as entries of this zip file")
	cmd.Flags().StringVar(&f.encoding, "encoding", "", "character set of the input, e.g. windows-1252 (default utf-8)")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "log level (default info, or the config's log_level)")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", 0, "sheets assembled at once, 0 for all")
	cmd.MarkFlagsMutuallyExclusive("output", "zip")
	cmd.MarkFlagsOneRequired("output", "zip")
	return cmd
}

func run(ctx context.Context, f flags, inputs []string) error {
	cfg := &config.Config{}
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return err
		}
	}
	if f.encoding != "" {
		cfg.Encoding = f.encoding
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(cfg.Level())

	conv := &converter{
		cfg: cfg,
		log: log,
		wb: workbook.New(workbook.Options{
			ConstantMemory:  cfg.ConstantMemory,
			TmpDir:          cfg.TmpDir,
			Date1904:        cfg.Date1904,
			FutureFunctions: cfg.FutureFunctions,
			Concurrency:     f.concurrency,
			Logger:          log,
		}),
	}
	defer func() { _ = conv.wb.Close() }()

	if err := conv.addInputs(inputs); err != nil {
		return err
	}

	if f.zipPath != "" {
		return writeZip(ctx, conv.wb, f.zipPath)
	}
	dw := workbook.NewDirWriter(f.outputDir)
	if err := conv.wb.WriteParts(ctx, dw); err != nil {
		_ = dw.Close()
		return err
	}
	return dw.Close()
}

func writeZip(ctx context.Context, wb *workbook.Workbook, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "xlsxw: create zip")
	}
	zw := zip.NewWriter(out)
	if err := wb.WriteParts(ctx, zw); err != nil {
		_ = zw.Close()
		_ = out.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		_ = out.Close()
		return errors.Wrap(err, "xlsxw: finish zip")
	}
	return errors.Wrap(out.Close(), "xlsxw: close zip")
}
