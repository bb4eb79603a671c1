package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"smartdiagnosis/internal/classifier"
	"smartdiagnosis/internal/config"
	"smartdiagnosis/internal/dataset"
	"smartdiagnosis/internal/logger"
)

func main() {
	corpus := flag.String("corpus", "", "training CSV with text and label columns (default MODEL_CORPUS_PATH)")
	force := flag.Bool("force", false, "retrain even when a usable saved model exists")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	if *corpus != "" {
		cfg.Model.CorpusPath = *corpus
	}

	log := logger.New(cfg.Logging)
	ctx := context.Background()

	predictor, err := classifier.NewPredictorFromConfig(ctx, cfg, logger.Component(log, "classifier"))
	if err != nil {
		log.WithError(err).Fatal("Failed to build predictor")
	}
	if err := run(ctx, predictor, cfg.Model.CorpusPath, *force, os.Stdout, log); err != nil {
		log.WithError(err).Fatal("Training failed")
	}
}

// run trains and saves a model pair, or keeps a usable saved one unless force
// is set. A pair that could not be saved is a failure.
func run(ctx context.Context, predictor *classifier.Predictor, corpusPath string, force bool, out io.Writer, log *logrus.Logger) error {
	if !force {
		exist, err := predictor.ArtifactsExist(ctx)
		if err != nil {
			return err
		}
		if exist && predictor.LoadSavedModel(ctx) {
			log.Info("Saved model is usable; pass -force to retrain")
			return nil
		}
	}

	samples, err := dataset.Load(corpusPath)
	if err != nil {
		return err
	}
	report, err := predictor.TrainModel(ctx, samples)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "samples:   %d (train %d, test %d)\n", report.Samples, report.TrainSamples, report.TestSamples)
	fmt.Fprintf(out, "classes:   %d\n", report.Classes)
	fmt.Fprintf(out, "features:  %d\n", report.Features)
	fmt.Fprintf(out, "accuracy:  %.2f%%\n", report.Accuracy*100)
	fmt.Fprintf(out, "duration:  %s\n", report.Duration)
	return nil
}
