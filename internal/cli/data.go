package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/featvec/internal/collect"
	"github.com/happyhackingspace/featvec/internal/corpus"
)

func (c *CLI) newDataCommand() *cobra.Command {
	dataCmd := &cobra.Command{
		Use:   "data",
		Short: "Fetch pages and pack or unpack annotated corpus archives",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	packCmd := &cobra.Command{
		Use:     "pack <data-folder> <archive>",
		Short:   "Write a corpus folder to a " + corpus.ArchiveExt + " archive",
		Args:    cobra.ExactArgs(2),
		Example: `  featvec data pack data corpus` + corpus.ArchiveExt,
		RunE: func(cmd *cobra.Command, args []string) error {
			return dataPack(args[0], args[1])
		},
	}

	var dataFolder string
	var unpackTimeout int
	unpackCmd := &cobra.Command{
		Use:   "unpack <archive-or-url>",
		Short: "Extract a corpus archive from a file or URL",
		Args:  cobra.ExactArgs(1),
		Example: `  featvec data unpack corpus.tar.zst --data-folder data
  featvec data unpack https://example.org/corpus.tar.zst`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return dataUnpack(cmd.Context(), args[0], dataFolder, time.Duration(unpackTimeout)*time.Second)
		},
	}
	unpackCmd.Flags().StringVar(&dataFolder, "data-folder", "data", "Destination folder for the corpus")
	unpackCmd.Flags().IntVar(&unpackTimeout, "timeout", 600, "HTTP timeout in seconds for archive downloads")

	var (
		urlsFile    string
		fetchFolder string
		timeout     int
		delay       int
		userAgent   string
	)
	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download pages listed in a file into a corpus folder for annotation",
		Example: `  featvec data fetch --urls urls.txt --data-folder data
  featvec data fetch --urls urls.txt --delay 2000 -v`,
		RunE: func(cmd *cobra.Command, args []string) error {
			urls, err := collect.LoadURLs(urlsFile)
			if err != nil {
				return fmt.Errorf("load urls: %w", err)
			}
			slog.Info("Loaded URLs", "count", len(urls))

			col := collect.New(time.Duration(timeout) * time.Second)
			col.Delay = time.Duration(delay) * time.Millisecond
			if userAgent != "" {
				col.UserAgent = userAgent
			}
			n, err := col.Collect(cmd.Context(), fetchFolder, urls)
			if err != nil {
				return err
			}
			slog.Info("Fetch complete", "collected", n, "folder", fetchFolder)
			return nil
		},
	}
	fetchCmd.Flags().StringVar(&urlsFile, "urls", "", "File with one URL per line")
	fetchCmd.Flags().StringVar(&fetchFolder, "data-folder", "data", "Corpus folder to add pages to")
	fetchCmd.Flags().IntVar(&timeout, "timeout", 30, "HTTP timeout in seconds")
	fetchCmd.Flags().IntVar(&delay, "delay", 800, "Delay between requests in ms")
	fetchCmd.Flags().StringVar(&userAgent, "user-agent", "", "User-Agent header")
	_ = fetchCmd.MarkFlagRequired("urls")

	dataCmd.AddCommand(packCmd, unpackCmd, fetchCmd)
	return dataCmd
}

func dataPack(folder, archive string) error {
	if _, err := os.Stat(folder); err != nil {
		return err
	}
	slog.Info("Creating archive", "source", folder, "dest", archive)
	f, err := os.Create(archive)
	if err != nil {
		return fmt.Errorf("create %s: %w", archive, err)
	}
	count, err := corpus.Pack(folder, f)
	if err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	slog.Info("Archive created", "path", archive, "files", count)
	return nil
}

func dataUnpack(ctx context.Context, source, folder string, timeout time.Duration) error {
	var r io.ReadCloser
	var err error
	if isURL(source) {
		slog.Info("Downloading corpus", "url", source)
		r, err = fetchURL(ctx, source, timeout)
	} else {
		r, err = os.Open(source)
	}
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	if err := os.RemoveAll(folder); err != nil {
		return fmt.Errorf("remove existing %s: %w", folder, err)
	}
	count, err := corpus.Unpack(r, folder)
	if err != nil {
		return err
	}
	slog.Info("Corpus extracted", "files", count, "folder", folder)
	return nil
}
