package training

import (
	"time"

	"github.com/YuminosukeSato/houseprice/artifacts"
	"github.com/YuminosukeSato/houseprice/config"
	"github.com/YuminosukeSato/houseprice/housing"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/pkg/log"
)

// Summary describes one completed training run.
type Summary struct {
	Source       string
	RawRows      int
	CleanRows    int
	Dropped      int
	Outliers     int
	TrainSamples int
	TestSamples  int
	Metrics      Metrics
	ArtifactsDir string
	PlotPath     string
	Duration     time.Duration
}

// Run executes the whole pipeline described by cfg and writes the bundle to store.
func Run(cfg *config.Config, store artifacts.Store) (*Summary, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := log.GetLoggerWithName("training").With(
		log.SourceKey, cfg.DataPath,
		log.RandomSeedKey, cfg.Seed,
		log.TestSizeKey, cfg.TestSize,
	)
	start := time.Now()
	logger.Info("training started")

	records, err := housing.LoadCSV(cfg.DataPath)
	if err != nil {
		return nil, err
	}

	table, encoder, err := housing.Prepare(records, cfg.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "data preparation failed")
	}

	schema := housing.DefaultSchema()
	fs, err := housing.PrepareFeatures(table, schema)
	if err != nil {
		return nil, errors.Wrap(err, "feature preparation failed")
	}

	result, err := Train(fs, Options{Seed: cfg.Seed, TestSize: cfg.TestSize})
	if err != nil {
		return nil, errors.Wrap(err, "training failed")
	}

	bundle := &artifacts.Bundle{
		Model:        result.Model,
		Scaler:       result.Scaler,
		Encoder:      encoder,
		FeatureNames: fs.Names,
	}
	if err := artifacts.Save(store, bundle); err != nil {
		return nil, errors.Wrap(err, "failed to save artifacts")
	}

	summary := &Summary{
		Source:       cfg.DataPath,
		RawRows:      table.Stats.Input,
		CleanRows:    table.Stats.Kept,
		Dropped:      table.Stats.Dropped(),
		Outliers:     table.Len() - len(fs.Rows),
		TrainSamples: result.TrainSamples,
		TestSamples:  result.TestSamples,
		Metrics:      result.Metrics,
		ArtifactsDir: store.Location(),
	}

	if cfg.PlotPath != "" {
		if err := PlotPredictions(result.YTest, result.YPred, cfg.PlotPath); err != nil {
			return nil, err
		}
		summary.PlotPath = cfg.PlotPath
		logger.Info("evaluation plot written", "plot.path", cfg.PlotPath)
	}

	summary.Duration = time.Since(start)
	logger.Info("training completed",
		log.MAEKey, summary.Metrics.MAE,
		log.R2ScoreKey, summary.Metrics.R2,
		log.ArtifactDirKey, summary.ArtifactsDir,
		log.DurationMsKey, summary.Duration.Milliseconds(),
	)
	return summary, nil
}
