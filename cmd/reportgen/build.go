package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wudi/reportkit/assets"
	"github.com/wudi/reportkit/config"
	"github.com/wudi/reportkit/observability"
	"github.com/wudi/reportkit/report"
)

var (
	inputPath string
	outPath   string
	seedPath  string
	asBase64  bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a report from a JSON or YAML input file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := readInput(inputPath)
		if err != nil {
			return err
		}
		if seedPath != "" {
			if in.Seed, err = os.ReadFile(seedPath); err != nil {
				return fmt.Errorf("read seed: %w", err)
			}
		}
		ctx := cmd.Context()
		if len(in.Seed) == 0 {
			logger.Debug("no seed given, using a blank one")
			if in.Seed, err = report.BlankSeed(ctx); err != nil {
				return err
			}
		}

		a, err := newAssembler(cfg, logger)
		if err != nil {
			return err
		}
		pdf, err := a.Assemble(ctx, in)
		if err != nil {
			return err
		}
		out := pdf
		if asBase64 {
			out = []byte(base64.StdEncoding.EncodeToString(pdf))
		}
		if err := writeOutput(outPath, out); err != nil {
			return err
		}
		logger.Info("report written", zap.String("output", outPath), zap.Int("bytes", len(out)))
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write a blank seed document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		seed, err := report.BlankSeed(cmd.Context())
		if err != nil {
			return err
		}
		if asBase64 {
			seed = []byte(base64.StdEncoding.EncodeToString(seed))
		}
		return writeOutput(outPath, seed)
	},
}

func init() {
	buildCmd.Flags().StringVarP(&inputPath, "input", "i", "-", "Input file (.json, .yaml or .yml; - for JSON on stdin)")
	buildCmd.Flags().StringVar(&seedPath, "seed", "", "Seed PDF, raw or base64 (overrides the input's seed)")
	for _, c := range []*cobra.Command{buildCmd, seedCmd} {
		c.Flags().StringVarP(&outPath, "output", "o", "-", "Output file (- for stdout)")
		c.Flags().BoolVar(&asBase64, "base64", false, "Write standard base64 instead of binary PDF")
	}
}

// newAssembler wires the configured fetchers and options.
func newAssembler(cfg *config.Config, l *zap.Logger) (*report.Assembler, error) {
	fetcher := assets.NewRouter(cfg.Assets.BaseDir,
		assets.WithClient(&http.Client{Timeout: cfg.Assets.HTTPTimeout}),
		assets.WithMaxBytes(cfg.Assets.MaxBytes))
	opts := append(report.FromConfig(cfg), report.WithLogger(observability.NewZap(l)))
	return report.New(fetcher, opts...)
}

func readInput(path string) (report.Input, error) {
	var in report.Input
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return in, fmt.Errorf("read input: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &in)
	default:
		err = json.Unmarshal(data, &in)
	}
	if err != nil {
		return in, fmt.Errorf("decode input %s: %w", path, err)
	}
	return in, nil
}

func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
