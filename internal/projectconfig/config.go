// Package projectconfig provides the ProjectConfig struct and loader for
// .meshcast.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/meshcast/meshcast/internal/catalog"
	"github.com/meshcast/meshcast/internal/popularity"
)

// FileName is the project configuration file looked up by Load.
const FileName = ".meshcast.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultModelsDir     = "models/"
	DefaultStandardModel = "popularity_model.json"
	DefaultAdvancedModel = "popularity_model_advanced.json"
	DefaultMetricsFile   = "model_metrics.json"

	DefaultServerPort = 8080
	DefaultWorkers    = 4

	DefaultMarketplaceURL   = "https://api.sketchfab.com/v3"
	DefaultMarketplacePause = time.Second
	DefaultMarketplacePage  = 24
)

// Environment variables that override file values.
const (
	EnvPort             = "MESHCAST_PORT"
	EnvModelsDir        = "MESHCAST_MODELS_DIR"
	EnvMarketplaceURL   = "MESHCAST_MARKETPLACE_URL"
	EnvMarketplaceToken = "MESHCAST_MARKETPLACE_TOKEN"
)

// ModelsConfig locates the trained model artifacts.
type ModelsConfig struct {
	Dir      string `yaml:"dir,omitempty"`
	Standard string `yaml:"standard,omitempty"`
	Advanced string `yaml:"advanced,omitempty"`
	Metrics  string `yaml:"metrics,omitempty"`
	// BlobURL, when set, is an Azure Blob container URL used instead of Dir.
	BlobURL string `yaml:"blob_url,omitempty"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Port           int      `yaml:"port,omitempty"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

// CatalogConfig holds overrides for the scoring lookup tables.
type CatalogConfig struct {
	PolygonRanges   map[string][2]int `yaml:"polygon_ranges,omitempty"`
	RecommendedTags []catalog.TagSet  `yaml:"recommended_tags,omitempty"`
}

// BatchConfig holds batch scoring settings.
type BatchConfig struct {
	Workers int `yaml:"workers,omitempty"`
}

// MarketplaceConfig locates the marketplace API used by fetch. The token is
// only read from the environment.
type MarketplaceConfig struct {
	BaseURL  string        `yaml:"base_url,omitempty"`
	PageSize int           `yaml:"page_size,omitempty"`
	Pause    time.Duration `yaml:"pause,omitempty"`
	Token    string        `yaml:"-"`
}

// ProjectConfig is the top-level configuration loaded from .meshcast.yaml.
type ProjectConfig struct {
	Models      ModelsConfig           `yaml:"models,omitempty"`
	Server      ServerConfig           `yaml:"server,omitempty"`
	Confidence  popularity.Confidences `yaml:"confidence,omitempty"`
	Catalog     CatalogConfig          `yaml:"catalog,omitempty"`
	Batch       BatchConfig            `yaml:"batch,omitempty"`
	Marketplace MarketplaceConfig      `yaml:"marketplace,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Models: ModelsConfig{
			Dir:      DefaultModelsDir,
			Standard: DefaultStandardModel,
			Advanced: DefaultAdvancedModel,
			Metrics:  DefaultMetricsFile,
		},
		Server: ServerConfig{
			Port: DefaultServerPort,
		},
		Confidence: popularity.DefaultConfidences(),
		Batch: BatchConfig{
			Workers: DefaultWorkers,
		},
		Marketplace: MarketplaceConfig{
			BaseURL:  DefaultMarketplaceURL,
			PageSize: DefaultMarketplacePage,
			Pause:    DefaultMarketplacePause,
		},
	}
}

// Load finds .meshcast.yaml by walking up from startDir (max 10 levels),
// unmarshals it, fills in missing fields with defaults and applies
// environment overrides. A .env file in startDir is loaded first; variables
// already set in the environment win over it.
// If no config file is found, returns defaults with a nil error.
func Load(startDir string) (*ProjectConfig, error) {
	if err := loadDotEnv(startDir); err != nil {
		return nil, err
	}

	cfg := New()

	data, err := findConfigFile(startDir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// no file found → defaults
	case err != nil:
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	default:
		var fileCfg ProjectConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", FileName, err)
		}
		mergeConfig(cfg, &fileCfg)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if _, err := cfg.Tables(); err != nil {
		return nil, fmt.Errorf("%s catalog: %w", FileName, err)
	}
	return cfg, nil
}

func loadDotEnv(dir string) error {
	p := filepath.Join(dir, ".env")
	if err := godotenv.Load(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", p, err)
	}
	return nil
}

func applyEnv(cfg *ProjectConfig) error {
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("%s: invalid port %q", EnvPort, v)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv(EnvModelsDir); v != "" {
		cfg.Models.Dir = v
	}
	if v := os.Getenv(EnvMarketplaceURL); v != "" {
		cfg.Marketplace.BaseURL = v
	}
	cfg.Marketplace.Token = os.Getenv(EnvMarketplaceToken)
	return nil
}

// findConfigFile walks up from dir looking for .meshcast.yaml (max 10
// levels). Returns os.ErrNotExist if no config file is found.
func findConfigFile(dir string) ([]byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Models
	if src.Models.Dir != "" {
		dst.Models.Dir = src.Models.Dir
	}
	if src.Models.Standard != "" {
		dst.Models.Standard = src.Models.Standard
	}
	if src.Models.Advanced != "" {
		dst.Models.Advanced = src.Models.Advanced
	}
	if src.Models.Metrics != "" {
		dst.Models.Metrics = src.Models.Metrics
	}
	if src.Models.BlobURL != "" {
		dst.Models.BlobURL = src.Models.BlobURL
	}

	// Server
	if src.Server.Port != 0 {
		dst.Server.Port = src.Server.Port
	}
	if len(src.Server.AllowedOrigins) > 0 {
		dst.Server.AllowedOrigins = src.Server.AllowedOrigins
	}

	// Confidence
	if src.Confidence.Heuristic != 0 {
		dst.Confidence.Heuristic = src.Confidence.Heuristic
	}
	if src.Confidence.Low != 0 {
		dst.Confidence.Low = src.Confidence.Low
	}
	if src.Confidence.Medium != 0 {
		dst.Confidence.Medium = src.Confidence.Medium
	}
	if src.Confidence.High != 0 {
		dst.Confidence.High = src.Confidence.High
	}

	// Catalog
	if src.Catalog.PolygonRanges != nil {
		dst.Catalog.PolygonRanges = src.Catalog.PolygonRanges
	}
	if src.Catalog.RecommendedTags != nil {
		dst.Catalog.RecommendedTags = src.Catalog.RecommendedTags
	}

	// Batch
	if src.Batch.Workers != 0 {
		dst.Batch.Workers = src.Batch.Workers
	}

	// Marketplace
	if src.Marketplace.BaseURL != "" {
		dst.Marketplace.BaseURL = src.Marketplace.BaseURL
	}
	if src.Marketplace.PageSize != 0 {
		dst.Marketplace.PageSize = src.Marketplace.PageSize
	}
	if src.Marketplace.Pause != 0 {
		dst.Marketplace.Pause = src.Marketplace.Pause
	}
}

// Tables builds the scoring lookup tables with the configured overrides.
func (c *ProjectConfig) Tables() (*catalog.Tables, error) {
	ranges := make(map[string]catalog.PolygonRange, len(c.Catalog.PolygonRanges))
	for name, r := range c.Catalog.PolygonRanges {
		ranges[name] = catalog.PolygonRange{Min: r[0], Max: r[1]}
	}
	return catalog.New(catalog.Overrides{
		PolygonRanges:   ranges,
		RecommendedTags: c.Catalog.RecommendedTags,
	})
}
