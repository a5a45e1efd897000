package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/featvec"
	"github.com/happyhackingspace/featvec/chunking"
	"github.com/happyhackingspace/featvec/internal/config"
	"github.com/happyhackingspace/featvec/internal/corpus"
	"github.com/happyhackingspace/featvec/internal/textutil"
	"github.com/happyhackingspace/featvec/ova"
)

type sentenceResult struct {
	Tokens []string              `json:"tokens"`
	Chunks []chunking.Chunk      `json:"chunks"`
	Ranks  [][]ova.ScoredOutcome `json:"ranks,omitempty"`
}

func (c *CLI) newRunCommand() *cobra.Command {
	var modelDir string
	var asJSON bool
	var top int
	var parallelism int
	var binary string
	var timeout int

	cmd := &cobra.Command{
		Use:   "run [url-or-file]",
		Short: "Tag chunks in text or HTML from a URL, file, or stdin",
		Args:  cobra.MaximumNArgs(1),
		Example: `  # Tag a local HTML file
  featvec run page.html --model model

  # Tag plain text, one sentence per line
  echo "John Smith flew to Paris ." | featvec run --model model

  # Tag a URL and print JSON with the 3 best labels per token
  featvec run https://example.org/news --model model --json --top 3

  # Score with an external SVMlight classifier
  featvec run page.html --model svm --binary /usr/local/bin/svm_classify`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var content, target string
			var err error
			if len(args) == 0 {
				if isStdinTerminal() {
					return cmd.Help()
				}
				content, target, err = readFromStdin(cmd.Context(), time.Duration(timeout)*time.Second)
			} else {
				target = args[0]
				slog.Debug("Fetching input", "target", target)
				content, err = fetchInput(cmd.Context(), target, time.Duration(timeout)*time.Second)
			}
			if err != nil {
				return err
			}
			slog.Debug("Input read", "target", target, "bytes", len(content))

			cfg, err := c.loadConfig(cmd, func(cfg *config.Config) {
				if cmd.Flags().Changed("parallelism") {
					cfg.Scoring.Parallelism = parallelism
				}
				if cmd.Flags().Changed("binary") {
					cfg.Scoring.Backend = config.BackendExec
					cfg.Scoring.Binary = binary
				}
			})
			if err != nil {
				return err
			}

			start := time.Now()
			tagger, err := featvec.Load(modelDir, cfg)
			if err != nil {
				return err
			}
			slog.Debug("Model loaded", "duration", time.Since(start), "labels", tagger.Labels())

			sentences, err := splitSentences(content, target)
			if err != nil {
				return err
			}

			start = time.Now()
			results := make([]sentenceResult, 0, len(sentences))
			for _, tokens := range sentences {
				feats := corpus.TokenFeatures(tokens)
				chunks, err := tagger.Chunks(cmd.Context(), feats)
				if err != nil {
					return err
				}
				r := sentenceResult{Tokens: tokens, Chunks: chunks}
				if top > 0 {
					for _, f := range feats {
						ranked, err := tagger.Rank(cmd.Context(), f, top)
						if err != nil {
							return err
						}
						r.Ranks = append(r.Ranks, ranked)
					}
				}
				results = append(results, r)
			}
			slog.Debug("Tagging completed", "sentences", len(results), "duration", time.Since(start))

			if asJSON || top > 0 {
				output, err := json.MarshalIndent(results, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(output))
				return nil
			}
			for _, r := range results {
				fmt.Println(corpus.Annotate(r.Tokens, r.Chunks))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&modelDir, "model", "model", "Path to model bundle directory")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print tokens and chunks as JSON")
	cmd.Flags().IntVar(&top, "top", 0, "Include the N best labels per token (implies --json)")
	cmd.Flags().IntVar(&parallelism, "parallelism", 1, "Classes scored concurrently")
	cmd.Flags().StringVar(&binary, "binary", "", "Classify binary for bundles exported for an external learner")
	cmd.Flags().IntVar(&timeout, "timeout", 30, "HTTP timeout in seconds for URL input")
	return cmd
}

// splitSentences tokenizes HTML into block sentences, or plain text into
// one sentence per non-empty line.
func splitSentences(content, target string) ([][]string, error) {
	if strings.HasPrefix(strings.TrimSpace(content), "<") {
		doc, err := corpus.ReadString(content, target)
		if err != nil {
			return nil, err
		}
		out := make([][]string, len(doc))
		for i, s := range doc {
			out[i] = s.Tokens
		}
		return out, nil
	}
	var out [][]string
	for _, line := range strings.Split(content, "\n") {
		if tokens := textutil.Tokenize(line); len(tokens) > 0 {
			out = append(out, tokens)
		}
	}
	return out, nil
}

func isStdinTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// fetchURL opens target for reading. A zero timeout leaves the request
// bounded by ctx alone.
func fetchURL(ctx context.Context, target string, timeout time.Duration) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("fetch URL: HTTP %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func fetchInput(ctx context.Context, target string, timeout time.Duration) (string, error) {
	if isURL(target) {
		body, err := fetchURL(ctx, target, timeout)
		if err != nil {
			return "", err
		}
		defer func() { _ = body.Close() }()
		data, err := io.ReadAll(body)
		if err != nil {
			return "", fmt.Errorf("read response: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return string(data), nil
}

func readFromStdin(ctx context.Context, timeout time.Duration) (string, string, error) {
	slog.Debug("Reading from stdin")
	body, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", "", fmt.Errorf("read stdin: %w", err)
	}
	content := strings.TrimSpace(string(body))
	if content == "" {
		return "", "", fmt.Errorf("stdin is empty")
	}
	if isURL(content) && !strings.ContainsAny(content, " \n") {
		slog.Debug("Stdin contains URL", "url", content)
		page, err := fetchInput(ctx, content, timeout)
		if err != nil {
			return "", "", err
		}
		return page, content, nil
	}
	return content, "stdin", nil
}
