package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/strukt/strukt/pkg/structure"
)

func newValidateCommand() *cobra.Command {
	var (
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "validate [document]",
		Short: "Validate a structure document",
		Long: `Validate a structure document against the current schema.

Legacy documents are migrated in memory before validation. All violations
are collected and reported together, not just the first one found.`,
		Example: `  # Validate the default document
  strukt validate

  # Validate a specific document
  strukt validate ./structure.json

  # Fail on warnings too
  strukt validate --strict`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCLIConfig()
			if err != nil {
				return err
			}
			docPath := resolveDocument(args, cfg)

			log.Debug().
				Str("document", docPath).
				Bool("strict", strict).
				Msg("Validating structure document")

			raw, err := structure.ReadDocument(docPath)
			if err != nil {
				return err
			}

			parser := structure.NewParser(cliLogger())
			result, err := parser.Check(raw)
			if err != nil {
				return err
			}

			if jsonOutput {
				if err := printJSON(result); err != nil {
					return err
				}
			} else {
				fmt.Println(result.Summary())
				for _, v := range result.Errors {
					fmt.Printf("  error: %s\n", v)
				}
				for _, v := range result.Warnings {
					fmt.Printf("  warning: %s\n", v)
				}
			}

			if !result.Valid {
				return fmt.Errorf("document is invalid: %d violation(s)", len(result.Errors))
			}
			if strict && len(result.Warnings) > 0 {
				return fmt.Errorf("document has %d warning(s) in strict mode", len(result.Warnings))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")

	return cmd
}
