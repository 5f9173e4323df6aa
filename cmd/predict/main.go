// Command predict は保存済みの成果物で1件の価格を予測し、JSONで出力する。
//
// 使い方:
//
//	predict -bhk 3 -sqft 1200 -bath 2 -lat 12.97 -lng 77.59
//	echo '{"bhk":3,"sqft":1200,"bath":2,"lat":12.97,"lng":77.59}' | predict -json
package main

import (
	"encoding/json"
	"flag"
	"io"
	"os"

	"github.com/YuminosukeSato/houseprice/config"
	"github.com/YuminosukeSato/houseprice/inference"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/pkg/log"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		log.GetLogger().Error("prediction failed", log.ErrAttr(err))
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML config file")
	artifactsDir := fs.String("artifacts", "", "artifacts directory (overrides config)")
	fromJSON := fs.Bool("json", false, "read the input object from stdin")
	bhk := fs.Float64("bhk", 0, "number of bedrooms")
	sqft := fs.Float64("sqft", 0, "total square feet")
	bath := fs.Float64("bath", 0, "number of bathrooms")
	lat := fs.Float64("lat", 0, "latitude")
	lng := fs.Float64("lng", 0, "longitude")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *artifactsDir != "" {
		cfg.ArtifactsDir = *artifactsDir
	}
	// stdout は予測結果のJSON専用
	log.SetupLoggerWithWriter(os.Stderr, cfg.LogLevel)

	features := map[string]float64{}
	if *fromJSON {
		if err := json.NewDecoder(stdin).Decode(&features); err != nil {
			return errors.Wrap(err, "failed to decode input JSON")
		}
	} else {
		// 指定されたフラグだけを入力に含め、欠落は予測器に報告させる
		values := map[string]*float64{
			inference.InputBHK:  bhk,
			inference.InputSqft: sqft,
			inference.InputBath: bath,
			inference.InputLat:  lat,
			inference.InputLng:  lng,
		}
		fs.Visit(func(f *flag.Flag) {
			if v, ok := values[f.Name]; ok {
				features[f.Name] = *v
			}
		})
	}

	out, err := inference.Predict(cfg.ArtifactsDir, features)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
