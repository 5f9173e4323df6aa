// Command train はデータセットから線形回帰モデルを学習し、成果物を保存する。
//
// 使い方:
//
//	train [-config houseprice.yaml] [-data Data/household.csv] [-artifacts artifacts] [-seed 42] [-plot eval.png]
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/YuminosukeSato/houseprice/artifacts"
	"github.com/YuminosukeSato/houseprice/config"
	"github.com/YuminosukeSato/houseprice/pkg/log"
	"github.com/YuminosukeSato/houseprice/training"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.GetLogger().Error("training failed", log.ErrAttr(err))
		os.Exit(1)
	}
}

// loadConfig は設定を読み込み、明示的に指定されたフラグだけで上書きする
func loadConfig(args []string) (*config.Config, error) {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML config file")
	dataPath := fs.String("data", "", "training CSV (overrides config)")
	artifactsDir := fs.String("artifacts", "", "artifacts directory (overrides config)")
	plotPath := fs.String("plot", "", "write a predicted-vs-actual plot (.png or .svg)")
	seed := fs.Int64("seed", 0, "random seed (overrides config)")
	testSize := fs.Float64("test-size", 0, "held-out fraction in (0, 1) (overrides config)")
	logLevel := fs.String("log-level", "", "debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data":
			cfg.DataPath = *dataPath
		case "artifacts":
			cfg.ArtifactsDir = *artifactsDir
		case "plot":
			cfg.PlotPath = *plotPath
		case "seed":
			cfg.Seed = *seed
		case "test-size":
			cfg.TestSize = *testSize
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(args []string, stdout io.Writer) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	log.SetupLogger(cfg.LogLevel)

	summary, err := training.Run(cfg, artifacts.NewFileStore(cfg.ArtifactsDir))
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "rows: %d read, %d dropped, %d outliers removed\n", summary.RawRows, summary.Dropped, summary.Outliers)
	fmt.Fprintf(stdout, "split: %d train / %d test (seed %d)\n", summary.TrainSamples, summary.TestSamples, cfg.Seed)
	fmt.Fprintf(stdout, "MAE:  %.4f\n", summary.Metrics.MAE)
	fmt.Fprintf(stdout, "RMSE: %.4f\n", summary.Metrics.RMSE)
	fmt.Fprintf(stdout, "R2:   %.4f\n", summary.Metrics.R2)
	fmt.Fprintf(stdout, "artifacts saved to %s\n", summary.ArtifactsDir)
	if summary.PlotPath != "" {
		fmt.Fprintf(stdout, "plot saved to %s\n", summary.PlotPath)
	}
	return nil
}
