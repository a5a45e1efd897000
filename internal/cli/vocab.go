package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/featvec/encoder"
)

func (c *CLI) newVocabCommand() *cobra.Command {
	var limit int
	var contains string

	cmd := &cobra.Command{
		Use:   "vocab <model-dir>",
		Short: "List the feature vocabulary of a model bundle",
		Args:  cobra.ExactArgs(1),
		Example: `  featvec vocab model --limit 20
  featvec vocab model --contains shape=`,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := encoder.Load(args[0], nil)
			if err != nil {
				return err
			}
			entries := enc.Vocabulary().Entries()
			shown := 0
			for _, e := range entries {
				if contains != "" && !strings.Contains(e.Key, contains) {
					continue
				}
				if limit > 0 && shown >= limit {
					break
				}
				fmt.Printf("%d\t%s\n", e.Index, e.Key)
				shown++
			}
			fmt.Printf("# %d of %d features\n", shown, len(entries))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most N features (0 shows all)")
	cmd.Flags().StringVar(&contains, "contains", "", "Only show features containing this text")
	return cmd
}
