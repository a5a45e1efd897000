package cli

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/featvec"
	"github.com/happyhackingspace/featvec/internal/config"
)

func (c *CLI) newEvaluateCommand() *cobra.Command {
	var flags trainFlags
	var cvFolds int

	cmd := &cobra.Command{
		Use:     "evaluate",
		Short:   "Evaluate chunking quality via domain-grouped cross-validation",
		Example: `  featvec evaluate --data-folder data --cv 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd, func(cfg *config.Config) {
				flags.apply(cmd)(cfg)
				if cmd.Flags().Changed("cv") {
					cfg.Evaluation.Folds = cvFolds
				}
			})
			if err != nil {
				return err
			}
			sentences, err := loadSentences(flags.dataFolder)
			if err != nil {
				return err
			}

			slog.Info("Evaluating", "folds", cfg.Evaluation.Folds, "data-folder", flags.dataFolder)
			start := time.Now()
			result, err := featvec.Evaluate(context.Background(), sentences, cfg)
			if err != nil {
				return err
			}
			slog.Debug("Evaluation completed", "duration", time.Since(start))

			fmt.Printf("Token accuracy: %.1f%% (%d/%d)\n",
				result.TokenAccuracy*100, result.TokenCorrect, result.TokenTotal)
			fmt.Printf("Chunk precision: %.1f%%  recall: %.1f%%  F1: %.1f%% (%d folds)\n",
				result.Chunks.Precision*100, result.Chunks.Recall*100, result.Chunks.F1*100, result.Folds)
			printTypeReport(result.PerType)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&cvFolds, "cv", 10, "Number of cross-validation folds")
	return cmd
}

func printTypeReport(perType map[string]*featvec.ChunkScore) {
	if len(perType) == 0 {
		return
	}
	types := make([]string, 0, len(perType))
	for t := range perType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		if perType[types[i]].Gold != perType[types[j]].Gold {
			return perType[types[i]].Gold > perType[types[j]].Gold
		}
		return types[i] < types[j]
	})

	fmt.Printf("\nPer-type metrics:\n")
	fmt.Printf("%8s  %6s  %6s  %6s  %7s\n", "type", "prec", "recall", "f1", "support")
	for _, t := range types {
		s := perType[t]
		fmt.Printf("%8s  %5.1f%%  %5.1f%%  %5.1f%%  %7d\n",
			t, s.Precision*100, s.Recall*100, s.F1*100, s.Gold)
	}
}
