package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgallion1/notewrap/internal/enml"
	"github.com/dgallion1/notewrap/internal/render"
	"github.com/spf13/cobra"
)

type normalizeOptions struct {
	mode   string
	media  []string
	format string
	title  string
	out    string
}

func newNormalizeCmd() *cobra.Command {
	opts := &normalizeOptions{}
	cmd := &cobra.Command{
		Use:   "normalize [file|-]",
		Short: "Normalize ENML from a file or stdin",
		Example: `  enml normalize note.enml --mode strip
  cat note.enml | enml normalize - --format markdown
  enml normalize note.enml --media abc123=https://cdn/a.png --out note.html`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := "-"
			if len(args) == 1 {
				src = args[0]
			}
			return runNormalize(cmd, src, opts)
		},
	}

	cmd.Flags().StringVar(&opts.mode, "mode", string(enml.ModeBasic), "Output mode: raw, basic or strip")
	cmd.Flags().StringArrayVar(&opts.media, "media", nil, "Media resolution as hash=url (repeatable)")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format: text, markdown or pdf")
	cmd.Flags().StringVar(&opts.title, "title", "", "Document title (pdf only)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output file (default: stdout)")
	return cmd
}

func runNormalize(cmd *cobra.Command, src string, opts *normalizeOptions) error {
	mode, err := enml.ParseMode(opts.mode)
	if err != nil {
		return err
	}
	media, err := parseMedia(opts.media)
	if err != nil {
		return err
	}

	raw, err := readSource(cmd.InOrStdin(), src)
	if err != nil {
		return err
	}

	var data []byte
	switch strings.ToLower(opts.format) {
	case "text", "":
		out, err := enml.Normalize(raw, mode, media)
		if err != nil {
			return err
		}
		data = []byte(out + "\n")
	case "markdown", "md":
		md, err := render.Markdown(enml.Basic(raw, media))
		if err != nil {
			return err
		}
		data = []byte(md + "\n")
	case "pdf":
		data, err = render.PDF(opts.title, enml.Strip(raw))
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q (want text, markdown or pdf)", opts.format)
	}

	if opts.out == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(opts.out, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", opts.out, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", opts.out, len(data))
	return nil
}

func readSource(stdin io.Reader, src string) (string, error) {
	if src == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", src, err)
	}
	return string(b), nil
}

// parseMedia turns hash=url pairs into a resolver. No pairs means every
// media reference is dropped.
func parseMedia(pairs []string) (enml.MediaResolver, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	urls := make(map[string]string, len(pairs))
	for _, p := range pairs {
		hash, url, ok := strings.Cut(p, "=")
		if !ok || hash == "" || url == "" {
			return nil, fmt.Errorf("invalid --media %q (want hash=url)", p)
		}
		urls[hash] = url
	}
	return func(hash string) (string, bool) {
		url, ok := urls[hash]
		return url, ok
	}, nil
}
