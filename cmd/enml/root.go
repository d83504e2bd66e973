package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "enml",
		Short: "enml renders note content as HTML, text, Markdown or PDF",
		Long: `enml applies the note normalizer to ENML read from a file or stdin.

Modes:
  raw    content unchanged
  basic  embeddable HTML: spacers and inline styles removed, media resolved
  strip  plain text with blank-line paragraph breaks`,
		SilenceUsage: true,
	}
	root.AddCommand(newNormalizeCmd())
	return root
}
