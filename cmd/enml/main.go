// Command enml renders note content offline, without a note store.
//
// Usage:
//
//	enml normalize note.enml --mode strip
//	enml normalize - --mode basic --media 3f2a...=https://cdn/receipt.png
//	enml normalize note.enml --format pdf --title "Receipt" --out receipt.pdf
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
