package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const zstdSuffix = ".zst"

// readArtifact reads name from src, falling back to a zstd-compressed
// name+".zst" when the plain file is missing.
func readArtifact(ctx context.Context, src Source, name string) ([]byte, error) {
	candidates := []string{name}
	if !strings.HasSuffix(name, zstdSuffix) {
		candidates = append(candidates, name+zstdSuffix)
	}

	var lastErr error
	for _, candidate := range candidates {
		rc, err := src.Open(ctx, candidate)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				lastErr = err
				continue
			}
			return nil, err
		}
		data, err := readAll(rc, strings.HasSuffix(candidate, zstdSuffix))
		if err != nil {
			return nil, fmt.Errorf("reading %s from %s: %w", candidate, src.Location(), err)
		}
		slog.Debug("Loaded artifact", "name", candidate, "source", src.Location(), "bytes", len(data))
		return data, nil
	}
	return nil, lastErr
}

func readAll(rc io.ReadCloser, compressed bool) ([]byte, error) {
	defer rc.Close() //nolint:errcheck

	if !compressed {
		return io.ReadAll(rc)
	}
	dec, err := zstd.NewReader(rc)
	if err != nil {
		return nil, fmt.Errorf("creating zstd reader: %w", err)
	}
	defer dec.Close()
	return io.ReadAll(dec)
}

// LoadLinearModel loads and validates a linear model artifact.
func LoadLinearModel(ctx context.Context, src Source, name string) (*LinearModel, error) {
	data, err := readArtifact(ctx, src, name)
	if err != nil {
		return nil, err
	}
	var m LinearModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing model %s: %w", name, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("model %s: %w", name, err)
	}
	return &m, nil
}

// Metrics describes the most recent training run.
type Metrics struct {
	Trained         bool     `json:"trained"`
	TrainingDate    string   `json:"training_date,omitempty"`
	RMSE            float64  `json:"rmse,omitempty"`
	MAE             float64  `json:"mae,omitempty"`
	R2Score         float64  `json:"r2_score,omitempty"`
	TrainingSamples int      `json:"training_samples,omitempty"`
	Features        []string `json:"features,omitempty"`
}

// LoadMetrics reads the training metrics document. A missing document is
// not an error: it yields Metrics{Trained: false}.
func LoadMetrics(ctx context.Context, src Source, name string) (Metrics, error) {
	data, err := readArtifact(ctx, src, name)
	if errors.Is(err, ErrNotFound) {
		return Metrics{}, nil
	}
	if err != nil {
		return Metrics{}, err
	}
	var m Metrics
	if err := json.Unmarshal(data, &m); err != nil {
		return Metrics{}, fmt.Errorf("parsing metrics %s: %w", name, err)
	}
	m.Trained = true
	return m, nil
}
