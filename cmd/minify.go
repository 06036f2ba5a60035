package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"safecss/internal/builder"
	"safecss/internal/engine"
	"safecss/internal/minifier"
	"safecss/internal/ui"
)

var (
	minifyEngine  string
	minifyOutput  string
	minifyCharset string
)

var minifyCmd = &cobra.Command{
	Use:   "minify [file]",
	Short: "Minify a single CSS file",
	Long:  "Minify a CSS file, or standard input when no file is given, and write the result to standard output or --output",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runMinify(args); err != nil {
			ui.PrintError("%v", err)
			os.Exit(1)
		}
	},
}

func init() {
	minifyCmd.Flags().StringVarP(&minifyEngine, "engine", "e", engine.Default, "Minification engine")
	minifyCmd.Flags().StringVarP(&minifyOutput, "output", "o", "", "Output file (default: standard output)")
	minifyCmd.Flags().StringVar(&minifyCharset, "charset", "utf-8", "Charset of the input and output")
	minifyCmd.RegisterFlagCompletionFunc("engine", completeEngines)
	minifyCmd.RegisterFlagCompletionFunc("charset", completeCharsets)
	rootCmd.AddCommand(minifyCmd)
}

func runMinify(args []string) (err error) {
	e, err := engine.Lookup(minifyEngine)
	if err != nil {
		return err
	}
	cs, err := builder.LookupCharset(minifyCharset)
	if err != nil {
		return err
	}

	var in io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer f.Close()
		in = f
	}

	var out io.Writer = os.Stdout
	if minifyOutput != "" {
		f, err := os.Create(minifyOutput)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", minifyOutput, err)
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				os.Remove(minifyOutput)
			}
		}()
		out = f
	}

	// The scanner works on UTF-8 bytes and needs no full buffer
	if e.Name() == engine.Default && cs.Name() == "utf-8" {
		return minifier.Copy(out, in)
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	text, err := cs.Decode(data)
	if err != nil {
		return err
	}
	minified, err := e.Minify(text)
	if err != nil {
		return err
	}
	encoded, err := cs.Encode(minified)
	if err != nil {
		return err
	}
	_, err = out.Write(encoded)
	return err
}
