package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"safecss/internal/engine"
	"safecss/internal/ui"
)

// completionMarker tags the line added to a shell rc file
const completionMarker = "# safecss completion"

// completionTarget is where install puts the script for one shell, relative
// to the home directory. An empty rc means the shell loads the directory on
// its own.
type completionTarget struct {
	file string
	rc   string
	line func(file string) string
}

var completionTargets = map[string]completionTarget{
	"bash": {
		file: filepath.Join(".local", "share", "bash-completion", "completions", "safecss"),
		rc:   ".bashrc",
		line: func(file string) string { return fmt.Sprintf("[ -f %s ] && source %s", file, file) },
	},
	"zsh": {
		file: filepath.Join(".zsh", "completions", "_safecss"),
		rc:   ".zshrc",
		line: func(file string) string {
			return fmt.Sprintf("fpath=(%s $fpath); autoload -Uz compinit && compinit", filepath.Dir(file))
		},
	},
	"fish": {
		file: filepath.Join(".config", "fish", "completions", "safecss.fish"),
	},
}

var completionShell string

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate a shell completion script for safecss. Besides commands and flags,
it completes engine names for --engine and charset labels for --charset.

  $ source <(safecss completion bash)
  $ safecss completion fish | source

Use 'safecss completion install' to set it up for your login shell.`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		if err := writeCompletion(os.Stdout, args[0]); err != nil {
			ui.PrintError("Failed to generate completion: %v", err)
			os.Exit(1)
		}
	},
}

var completionInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install shell completion for your current shell",
	Run: func(cmd *cobra.Command, args []string) {
		shell := completionShell
		if shell == "" {
			shell = detectShell(os.Getenv("SHELL"))
		}
		if shell == "" {
			ui.PrintError("Could not detect shell. Use --shell or 'safecss completion [bash|zsh|fish|powershell]'")
			os.Exit(1)
		}

		home, err := os.UserHomeDir()
		if err != nil {
			ui.PrintError("Could not find home directory: %v", err)
			os.Exit(1)
		}

		file, rc, err := installCompletion(home, shell)
		if err != nil {
			ui.PrintError("%v", err)
			os.Exit(1)
		}

		ui.PrintSuccess("Installed completion script to %s", file)
		if rc != "" {
			ui.PrintSuccess("Updated %s", rc)
		}
		ui.PrintInfo("Restart your shell to load the completions")
	},
}

func writeCompletion(w io.Writer, shell string) error {
	switch shell {
	case "bash":
		return rootCmd.GenBashCompletionV2(w, true)
	case "zsh":
		return rootCmd.GenZshCompletion(w)
	case "fish":
		return rootCmd.GenFishCompletion(w, true)
	case "powershell":
		return rootCmd.GenPowerShellCompletionWithDesc(w)
	}
	return fmt.Errorf("unsupported shell %q", shell)
}

// installCompletion writes the completion script for shell under home and
// hooks it into the shell rc file once. It returns the script path and the
// rc file it changed, if any.
func installCompletion(home, shell string) (file, rc string, err error) {
	target, ok := completionTargets[shell]
	if !ok {
		return "", "", fmt.Errorf("auto-install not supported for %s, use 'safecss completion %s'", shell, shell)
	}

	file = filepath.Join(home, target.file)
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return "", "", fmt.Errorf("failed to create completion directory: %w", err)
	}

	f, err := os.Create(file)
	if err != nil {
		return "", "", fmt.Errorf("failed to create completion file: %w", err)
	}
	if err := writeCompletion(f, shell); err != nil {
		f.Close()
		return "", "", err
	}
	if err := f.Close(); err != nil {
		return "", "", err
	}

	if target.rc == "" {
		return file, "", nil
	}

	rc = filepath.Join(home, target.rc)
	content, err := os.ReadFile(rc)
	if err != nil && !os.IsNotExist(err) {
		return file, "", err
	}
	if strings.Contains(string(content), completionMarker) {
		return file, "", nil
	}

	out, err := os.OpenFile(rc, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return file, "", fmt.Errorf("could not update %s: %w", rc, err)
	}
	defer out.Close()
	if _, err := fmt.Fprintf(out, "\n%s\n%s\n", completionMarker, target.line(file)); err != nil {
		return file, "", err
	}
	return file, rc, nil
}

func detectShell(shell string) string {
	switch name := filepath.Base(shell); name {
	case "bash", "zsh", "fish":
		return name
	}
	return ""
}

// completeEngines offers the registered engine names for --engine
func completeEngines(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return engine.Names(), cobra.ShellCompDirectiveNoFileComp
}

// completeCharsets offers common charset labels for --charset
func completeCharsets(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"utf-8", "iso-8859-1", "iso-8859-15", "windows-1252", "shift_jis", "euc-kr", "gbk"}, cobra.ShellCompDirectiveNoFileComp
}

func init() {
	completionInstallCmd.Flags().StringVar(&completionShell, "shell", "", "Shell to install for (default: $SHELL)")
	completionInstallCmd.RegisterFlagCompletionFunc("shell", cobra.FixedCompletions([]string{"bash", "zsh", "fish"}, cobra.ShellCompDirectiveNoFileComp))
	completionCmd.AddCommand(completionInstallCmd)
	rootCmd.AddCommand(completionCmd)
}
