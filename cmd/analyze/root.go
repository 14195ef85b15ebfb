package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"novel-assistant/internal/extract"
	"novel-assistant/internal/textanalysis"
)

type options struct {
	format       string
	sentences    int
	keywords     int
	language     string
	resourcesDir string
}

type report struct {
	Source              string `json:"source" yaml:"source"`
	textanalysis.Result `yaml:",inline"`
}

func newRootCmd() *cobra.Command {
	opts := options{}
	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Summarize a document and list its keywords",
		Long: "Runs the LSA summarizer and keyword extractor on a text, Markdown, PDF or DOCX file.\n" +
			"Reads standard input when no file (or \"-\") is given.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), path, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.format, "format", "f", "text", "output format: text, json or yaml")
	flags.IntVar(&opts.sentences, "sentences", textanalysis.DefaultSummarySentences, "number of summary sentences")
	flags.IntVar(&opts.keywords, "keywords", textanalysis.DefaultMaxKeywords, "maximum number of keywords")
	flags.StringVar(&opts.language, "language", textanalysis.DefaultLanguage, "stop-word and stemmer language")
	flags.StringVar(&opts.resourcesDir, "resources-dir", "", "directory holding stopwords_<language>.txt (default: embedded)")
	return cmd
}

func run(ctx context.Context, stdin io.Reader, out io.Writer, path string, opts options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	format := strings.ToLower(strings.TrimSpace(opts.format))
	switch format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unsupported --format %q (use text, json or yaml)", opts.format)
	}

	res, err := textanalysis.LoadResources(textanalysis.ResourceConfig{Language: opts.language, Dir: opts.resourcesDir})
	if err != nil {
		return err
	}
	analyzer, err := textanalysis.New(res,
		textanalysis.WithSummarySentences(opts.sentences),
		textanalysis.WithMaxKeywords(opts.keywords),
	)
	if err != nil {
		return err
	}

	raw, source, err := readInput(stdin, path)
	if err != nil {
		return err
	}
	text, err := extract.Text(ctx, raw, "", source)
	if err != nil {
		return fmt.Errorf("read %s: %w", source, err)
	}

	result, err := analyzer.Analyze(ctx, text)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", source, err)
	}
	return write(out, format, report{Source: source, Result: result})
}

func readInput(stdin io.Reader, path string) ([]byte, string, error) {
	if path == "-" {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return raw, "stdin", nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return raw, filepath.Base(path), nil
}

func write(out io.Writer, format string, rep report) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	default:
		fmt.Fprintf(out, "Source: %s\n\nSummary:\n%s\n\nKeywords:\n", rep.Source, rep.Summary)
		for _, kw := range rep.Keywords {
			fmt.Fprintf(out, "  - %s\n", kw)
		}
		return nil
	}
}
