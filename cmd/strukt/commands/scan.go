package commands

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/strukt/strukt/pkg/executor"
	"github.com/strukt/strukt/pkg/structure"
)

func newScanCommand() *cobra.Command {
	var (
		outFile  string
		username string
	)

	cmd := &cobra.Command{
		Use:   "scan [base]",
		Short: "Build a structure document from an existing tree",
		Long: `Reverse-engineer a structure document from a directory tree on disk.

Dot-prefixed entries are skipped, as are names the document format cannot
express. Directories containing only files become file lists; directories
containing subdirectories become nested directory nodes. Files sitting
next to subdirectories cannot be represented and are reported as
warnings.

Without --out the generated document is printed to stdout.`,
		Example: `  # Scan the current directory
  strukt scan

  # Scan a tree and save the document
  strukt scan ./myproject --out structure.json

  # Set the github username in the generated metadata
  strukt scan --username octocat`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCLIConfig()
			if err != nil {
				return err
			}
			basePath := resolveBase(args, "", cfg)

			scanner := structure.NewScanner(cliLogger())
			doc, err := scanner.Scan(basePath, username)
			if err != nil {
				return err
			}

			log.Info().
				Str("base", basePath).
				Str("project", doc.Metadata.ProjectName).
				Msg("Tree scanned")

			data, err := doc.Encode()
			if err != nil {
				return err
			}

			if outFile != "" {
				if err := executor.WriteFileAtomic(outFile, data, 0644); err != nil {
					return fmt.Errorf("failed to write document: %w", err)
				}
				fmt.Printf("Structure document written to %s\n", outFile)
				return nil
			}

			_, err = os.Stdout.Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&outFile, "out", "o", "", "write the document to this path")
	cmd.Flags().StringVarP(&username, "username", "u", "", "github username for the generated metadata")

	return cmd
}
