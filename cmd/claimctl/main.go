package main

import (
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/claimdesk/internal/config"
	"github.com/claimdesk/internal/model"
	"github.com/claimdesk/internal/processor"
	"github.com/claimdesk/internal/upload"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// CLI flags
var (
	endpointFlag    string
	timeoutFlag     time.Duration
	contentTypeFlag string
	verboseFlag     bool
)

// errSubmission marks a failure already reported on stdout.
var errSubmission = errors.New("submission failed")

var rootCmd = &cobra.Command{
	Use:   "claimctl",
	Short: "Send insurance claim documents to the processing service",
	Long: `claimctl uploads a claim document to the document processing service
and prints the processing result, the same way the web form does.

The endpoint defaults to PROCESSOR_URL (from the environment or .env).

Examples:
  claimctl process ./claim.pdf
  claimctl process scan.png --endpoint http://processor:5001/process_document
  claimctl process notes.bin --content-type text/plain --timeout 30s`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var processCmd = &cobra.Command{
	Use:   "process <file>",
	Short: "Upload a document and print the processing result",
	Args:  cobra.ExactArgs(1),
	RunE:  runProcess,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the claimctl version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "claimctl", version)
	},
}

func init() {
	processCmd.Flags().StringVarP(&endpointFlag, "endpoint", "e", "", "Processing endpoint (default PROCESSOR_URL)")
	processCmd.Flags().DurationVar(&timeoutFlag, "timeout", 0, "Request timeout (0 = none)")
	processCmd.Flags().StringVar(&contentTypeFlag, "content-type", "", "Content type of the document (default from file extension)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Log request details to stderr")

	rootCmd.AddCommand(processCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errSubmission) {
			fmt.Fprintln(os.Stderr, "claimctl:", err)
		}
		os.Exit(1)
	}
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(nil)
	if err != nil {
		return err
	}
	endpoint := cfg.ProcessorURL
	if endpointFlag != "" {
		endpoint = endpointFlag
	}
	timeout := cfg.ProcessorTimeout
	if cmd.Flags().Changed("timeout") {
		timeout = timeoutFlag
	}

	doc, err := readDocument(args[0], contentTypeFlag)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if verboseFlag {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	logger.Debug("processing document", "file", doc.Name, "size", len(doc.Data), "endpoint", endpoint)

	form := upload.NewForm(processor.NewClient(endpoint, timeout, logger))
	form.Select(doc)
	submitErr := form.Submit(cmd.Context())

	if err := printView(cmd.OutOrStdout(), form.View()); err != nil {
		return err
	}
	if submitErr != nil {
		logger.Debug("submission failed", "outcome", processor.Outcome(submitErr), "error", submitErr)
		return errSubmission
	}
	return nil
}

func readDocument(path, contentType string) (*model.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(path))
	}
	return &model.Document{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Data:        data,
	}, nil
}
