package commands

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/strukt/strukt/pkg/executor"
	"github.com/strukt/strukt/pkg/structure"
)

func newMigrateCommand() *cobra.Command {
	var (
		write   bool
		outFile string
	)

	cmd := &cobra.Command{
		Use:   "migrate [document]",
		Short: "Migrate a legacy document to the current schema",
		Long: `Migrate a legacy structure document to the current schema version.

Legacy documents carry their metadata fields at the top level. Migration
hoists those fields into a metadata block and stamps the current schema
version. Documents already on the current schema pass through unchanged.

Without --write or --out the migrated document is printed to stdout.`,
		Example: `  # Preview the migrated document
  strukt migrate old-structure.json

  # Rewrite the document in place
  strukt migrate old-structure.json --write

  # Write the migrated document elsewhere
  strukt migrate old-structure.json --out structure.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCLIConfig()
			if err != nil {
				return err
			}
			docPath := resolveDocument(args, cfg)

			raw, err := structure.ReadDocument(docPath)
			if err != nil {
				return err
			}

			migrator := structure.NewMigrator()
			wasLegacy := migrator.IsLegacy(raw)
			doc, err := migrator.Migrate(raw)
			if err != nil {
				return err
			}

			log.Info().
				Str("document", docPath).
				Bool("was_legacy", wasLegacy).
				Str("schema_version", doc.Metadata.SchemaVersion).
				Msg("Document migrated")

			data, err := doc.Encode()
			if err != nil {
				return err
			}

			target := outFile
			if write {
				target = docPath
			}
			if target != "" {
				if err := executor.WriteFileAtomic(target, data, 0644); err != nil {
					return fmt.Errorf("failed to write migrated document: %w", err)
				}
				fmt.Printf("Migrated document written to %s\n", target)
				return nil
			}

			_, err = os.Stdout.Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "rewrite the document in place")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "write the migrated document to this path")
	cmd.MarkFlagsMutuallyExclusive("write", "out")

	return cmd
}
