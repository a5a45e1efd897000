package cli

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/featvec"
	"github.com/happyhackingspace/featvec/internal/config"
	"github.com/happyhackingspace/featvec/internal/corpus"
)

// trainFlags are the config overrides shared by train, evaluate and export.
type trainFlags struct {
	dataFolder  string
	cutoff      int
	normalizer  string
	c           float64
	parallelism int
	compress    bool
}

func (f *trainFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dataFolder, "data-folder", "data", "Path to annotated corpus folder")
	cmd.Flags().IntVar(&f.cutoff, "cutoff", 1, "Drop features seen fewer times than this")
	cmd.Flags().StringVar(&f.normalizer, "normalizer", "identity", "Feature normalizer: identity, l2, maxabs or idf")
	cmd.Flags().Float64Var(&f.c, "c", 5.0, "Inverse regularization strength")
	cmd.Flags().IntVar(&f.parallelism, "parallelism", 1, "Classes trained and scored concurrently")
	cmd.Flags().BoolVar(&f.compress, "compress", false, "Write zstd-compressed artifacts")
}

func (f *trainFlags) apply(cmd *cobra.Command) func(*config.Config) {
	return func(cfg *config.Config) {
		flags := cmd.Flags()
		if flags.Changed("cutoff") {
			cfg.Encoder.Cutoff = f.cutoff
		}
		if flags.Changed("normalizer") {
			cfg.Encoder.Normalizer = f.normalizer
		}
		if flags.Changed("c") {
			cfg.Training.C = f.c
		}
		if flags.Changed("parallelism") {
			cfg.Scoring.Parallelism = f.parallelism
		}
		if flags.Changed("compress") {
			cfg.Output.Compress = f.compress
		}
	}
}

func loadSentences(folder string) ([]corpus.Sentence, error) {
	start := time.Now()
	sentences, err := corpus.NewStorage(folder).Sentences()
	if err != nil {
		return nil, err
	}
	slog.Debug("Corpus read", "sentences", len(sentences), "duration", time.Since(start))
	return sentences, nil
}

func (c *CLI) newTrainCommand() *cobra.Command {
	var flags trainFlags

	cmd := &cobra.Command{
		Use:   "train <model-dir>",
		Short: "Train a chunk tagger on an annotated HTML corpus",
		Args:  cobra.ExactArgs(1),
		Example: `  featvec train model --data-folder data
  featvec train model --cutoff 2 --normalizer idf --compress -v`,
		RunE: func(cmd *cobra.Command, args []string) error {
			modelDir := args[0]
			cfg, err := c.loadConfig(cmd, flags.apply(cmd))
			if err != nil {
				return err
			}
			sentences, err := loadSentences(flags.dataFolder)
			if err != nil {
				return err
			}

			slog.Info("Training tagger", "data-folder", flags.dataFolder, "sentences", len(sentences), "output", modelDir)
			start := time.Now()
			tagger, err := featvec.Train(sentences, cfg)
			if err != nil {
				return err
			}
			slog.Debug("Training completed", "duration", time.Since(start))
			if err := tagger.Save(modelDir, cfg.Output.Compress); err != nil {
				return err
			}
			slog.Info("Model saved", "path", modelDir, "labels", len(tagger.Labels()), "features", tagger.Encoder.Vocabulary().Len())
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
