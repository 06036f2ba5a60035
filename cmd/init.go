package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"safecss/internal/config"
	"safecss/internal/engine"
	"safecss/internal/ui"
)

var (
	initSourceDir string
	initIncludes  string
	initTargetDir string
	initFinalFile string
	initEngine    string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a minify.properties file",
	Long:  "Create a minify.properties file in the current directory, asking for values unless flags are given",
	Run: func(cmd *cobra.Command, args []string) {
		ui.PrintHeader(Version)

		dir, err := os.Getwd()
		if err != nil {
			ui.PrintError("Failed to get current directory: %v", err)
			os.Exit(1)
		}

		if config.Exists(dir) {
			ui.PrintWarning("%s already exists", config.PropertiesFile)
			os.Exit(1)
		}

		interactive := !cmd.Flags().Changed("source-dir") && !cmd.Flags().Changed("includes") &&
			!cmd.Flags().Changed("target-dir") && !cmd.Flags().Changed("final-file") && !cmd.Flags().Changed("engine")
		if interactive {
			reader := bufio.NewReader(os.Stdin)
			ui.PrintInfo("Let's set up CSS minification for %s", filepath.Base(dir))
			fmt.Println()

			initSourceDir = prompt(reader, "Source directory", initSourceDir)
			initIncludes = prompt(reader, "Include patterns", initIncludes)
			initTargetDir = prompt(reader, "Target directory", initTargetDir)
			initFinalFile = prompt(reader, "Final file", initFinalFile)
			initEngine = prompt(reader, "Engine ("+strings.Join(engine.Names(), ", ")+")", initEngine)
			fmt.Println()
		}

		content := propertiesTemplate(initSourceDir, initIncludes, initTargetDir, initFinalFile, initEngine)

		// Refuse to write a file that would not load
		props, err := config.ReadProperties(strings.NewReader(content))
		if err == nil {
			_, err = config.FromProperties(dir, props)
		}
		if err != nil {
			ui.PrintError("Invalid configuration: %v", err)
			os.Exit(1)
		}

		path := filepath.Join(dir, config.PropertiesFile)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			ui.PrintError("Failed to create %s: %v", config.PropertiesFile, err)
			os.Exit(1)
		}

		ui.PrintSuccess("Created %s", config.PropertiesFile)
		ui.PrintInfo("Run 'safecss build' to minify your CSS")
		fmt.Println()
	},
}

func init() {
	initCmd.Flags().StringVar(&initSourceDir, "source-dir", "css", "Directory holding the CSS sources")
	initCmd.Flags().StringVar(&initIncludes, "includes", "**/*.css", "Comma separated include patterns")
	initCmd.Flags().StringVar(&initTargetDir, "target-dir", "build", "Directory for the generated files")
	initCmd.Flags().StringVar(&initFinalFile, "final-file", "style.css", "Name of the merged file")
	initCmd.Flags().StringVar(&initEngine, "engine", engine.Default, "Minification engine")
	initCmd.RegisterFlagCompletionFunc("engine", completeEngines)
	rootCmd.AddCommand(initCmd)
}

func propertiesTemplate(sourceDir, includes, targetDir, finalFile, engineName string) string {
	var props []string
	props = append(props, "# CSS minification")
	props = append(props, "")
	props = append(props, "# Sources (supports * and ** wildcards)")
	props = append(props, fmt.Sprintf("source-dir=%s", sourceDir))
	props = append(props, fmt.Sprintf("includes=%s", includes))
	props = append(props, "excludes=")
	props = append(props, "")
	props = append(props, "# Output")
	props = append(props, fmt.Sprintf("target-dir=%s", targetDir))
	props = append(props, fmt.Sprintf("final-file=%s", finalFile))
	props = append(props, "suffix=.min")
	props = append(props, "")
	props = append(props, "# Minification")
	props = append(props, fmt.Sprintf("engine=%s", engineName))
	props = append(props, "charset=utf-8")
	props = append(props, "incremental=true")
	props = append(props, "")
	props = append(props, "# Precompressed copies")
	props = append(props, "gzip=false")
	props = append(props, "brotli=false")
	props = append(props, "zstd=0")
	props = append(props, "")
	return strings.Join(props, "\n")
}

func prompt(reader *bufio.Reader, label, defaultValue string) string {
	if defaultValue != "" {
		fmt.Printf("  %s [%s]: ", label, defaultValue)
	} else {
		fmt.Printf("  %s: ", label)
	}

	input, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return defaultValue
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultValue
	}
	return input
}
