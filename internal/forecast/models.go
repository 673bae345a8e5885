package forecast

import (
	"context"
	"errors"
	"log/slog"

	"github.com/meshcast/meshcast/internal/artifact"
	"github.com/meshcast/meshcast/internal/popularity"
)

// ModelFiles names the artifacts LoadChain looks for.
type ModelFiles struct {
	Standard string
	Advanced string
}

// LoadChain builds the advanced → standard → heuristic chain from the
// artifacts available in src. Missing or unusable artifacts are logged and
// left out, so the heuristic is always present.
func LoadChain(ctx context.Context, src artifact.Source, files ModelFiles, conf popularity.Confidences) *popularity.Chain {
	var strategies []popularity.Strategy

	if m := loadModel(ctx, src, files.Advanced, popularity.ModelAdvanced); m != nil {
		strategies = append(strategies,
			popularity.NewModelStrategy(popularity.ModelAdvanced, m, popularity.CapText, conf))
	}
	if m := loadModel(ctx, src, files.Standard, popularity.ModelStandard); m != nil {
		strategies = append(strategies,
			popularity.NewModelStrategy(popularity.ModelStandard, m, 0, conf))
	}
	strategies = append(strategies, popularity.NewHeuristicEstimator(conf.Heuristic).Strategy())

	return popularity.NewChain(strategies...)
}

func loadModel(ctx context.Context, src artifact.Source, name, kind string) *artifact.LinearModel {
	if src == nil || name == "" {
		return nil
	}
	m, err := artifact.LoadLinearModel(ctx, src, name)
	switch {
	case errors.Is(err, artifact.ErrNotFound):
		slog.Info("Model not trained, skipping", "model", kind, "source", src.Location())
		return nil
	case err != nil:
		slog.Warn("Model unusable, skipping", "model", kind, "error", err)
		return nil
	}
	slog.Debug("Loaded model", "model", kind, "name", m.Name, "columns", len(m.FeatureColumns))
	return m
}
