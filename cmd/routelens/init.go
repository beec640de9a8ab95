package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

//go:embed templates/routelens.yaml
var credentialsTemplate embed.FS

// credentialsFileName is the default credentials file name.
const credentialsFileName = ".routelens"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new RouteLens credentials file",
		Long: `Initialize creates a new .routelens credentials file in the current directory.

The generated file lists every credential RouteLens recognizes, with
comments explaining which provider each one unlocks. All entries start
empty: a provider whose credential is left empty is skipped, never failed.

Credentials can also be supplied via ROUTELENS_* environment variables
(e.g. ROUTELENS_TOMTOM), which override the file.

Examples:
  # Create .routelens in current directory
  routelens init

  # Create the file at a specific path
  routelens init -o staging.routelens

  # Force overwrite existing file
  routelens init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", credentialsFileName,
		"Output file path for the credentials file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing credentials file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	// Check if file already exists
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("credentials file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	// Read template from embedded filesystem
	content, err := credentialsTemplate.ReadFile("templates/routelens.yaml")
	if err != nil {
		return fmt.Errorf("failed to read credentials template: %w", err)
	}

	// Create parent directories if needed
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Credentials are secrets: owner-only permissions.
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}

	fmt.Printf("Created credentials file: %s\n", outputPath)
	fmt.Println("\nEdit this file to add API keys for the providers you use:")
	fmt.Println("  - google_maps unlocks realtime, emergency, location, and map enhancement")
	fmt.Println("  - tomtom unlocks traffic analysis")
	fmt.Println("  - openweather unlocks weather risk analysis")
	fmt.Println("\nProviders without a credential are skipped; fleet analysis always runs.")

	return nil
}
