package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meshcast/meshcast/internal/artifact"
	"github.com/meshcast/meshcast/internal/forecast"
	"github.com/meshcast/meshcast/internal/payload"
	"github.com/meshcast/meshcast/internal/projectconfig"
	"github.com/meshcast/meshcast/internal/quality"
	"github.com/meshcast/meshcast/internal/reporting"
)

const configFileHint = projectconfig.FileName

// projectDir is where configuration lookup starts (--dir).
var projectDir = "."

func loadConfig() (*projectconfig.ProjectConfig, error) {
	cfg, err := projectconfig.Load(projectDir)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}

func newRater(cfg *projectconfig.ProjectConfig) (*quality.Rater, error) {
	tables, err := cfg.Tables()
	if err != nil {
		return nil, err
	}
	return quality.NewRater(tables), nil
}

// artifactSource picks the blob container when configured, otherwise the
// models directory relative to --dir.
func artifactSource(cfg projectconfig.ModelsConfig) (artifact.Source, error) {
	if cfg.BlobURL != "" {
		src, err := artifact.NewBlobSource(cfg.BlobURL, nil)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	dir := cfg.Dir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(projectDir, dir)
	}
	return artifact.DirSource{Dir: dir}, nil
}

// loadService builds the forecast service from configuration and whatever
// trained artifacts are available.
func loadService(ctx context.Context, cfg *projectconfig.ProjectConfig) (*forecast.Service, error) {
	rater, err := newRater(cfg)
	if err != nil {
		return nil, err
	}
	src, err := artifactSource(cfg.Models)
	if err != nil {
		return nil, fmt.Errorf("opening model source: %w", err)
	}

	chain := forecast.LoadChain(ctx, src, forecast.ModelFiles{
		Standard: cfg.Models.Standard,
		Advanced: cfg.Models.Advanced,
	}, cfg.Confidence)

	metrics, err := artifact.LoadMetrics(ctx, src, cfg.Models.Metrics)
	if err != nil {
		slog.Warn("Model metrics unreadable", "error", err)
	}
	slog.Debug("Forecast service ready", "strategies", chain.Names(), "source", src.Location())
	return forecast.NewService(rater, chain, metrics), nil
}

// readInput returns the payload named by args: a JSON literal, @file, or
// stdin when args is empty or "-".
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	if name, ok := strings.CutPrefix(args[0], "@"); ok {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("reading payload: %w", err)
		}
		return data, nil
	}
	return []byte(args[0]), nil
}

func readPayload(cmd *cobra.Command, args []string) (payload.Payload, error) {
	data, err := readInput(cmd, args)
	if err != nil {
		return payload.Payload{}, err
	}
	return payload.Parse(data)
}

func addFormatFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "format", "f", string(reporting.FormatJSON),
		"Output format: json, text, markdown or html")
}
