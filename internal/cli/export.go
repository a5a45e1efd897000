package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/featvec"
	"github.com/happyhackingspace/featvec/svmlight"
)

func (c *CLI) newExportCommand() *cobra.Command {
	var flags trainFlags

	cmd := &cobra.Command{
		Use:   "export <dir>",
		Short: "Write SVMlight training files for an external learner",
		Args:  cobra.ExactArgs(1),
		Example: `  featvec export svm --data-folder data
  for f in svm/training-data-*.dat; do svm_learn "$f" "svm/model-$(basename "$f" .dat | cut -d- -f3).svm"; done
  featvec run page.html --model svm --config exec.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			cfg, err := c.loadConfig(cmd, flags.apply(cmd))
			if err != nil {
				return err
			}
			sentences, err := loadSentences(flags.dataFolder)
			if err != nil {
				return err
			}
			if err := featvec.Export(sentences, cfg, dir); err != nil {
				return err
			}
			slog.Info("Training files written", "dir", dir, "example", svmlight.TrainingFileName(0))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
