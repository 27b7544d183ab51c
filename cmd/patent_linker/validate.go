package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mbeaulieu/patent-linker/internal/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a match results JSON artifact against its schema",
	Long:  "Check an exported match results JSON file against the match results schema. Useful before importing externally produced artifacts into a run.",
	RunE:  runValidate,
}

var (
	validateFile   string
	validateSchema string
)

func init() {
	validateCmd.Flags().StringVarP(&validateFile, "file", "f", "", "Path to match results JSON file (required)")
	validateCmd.Flags().StringVar(&validateSchema, "schema", "", "Path to schema file (default: schemas/match_results.schema.json)")

	_ = validateCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, _ []string) error {
	schemaPath := validateSchema
	if schemaPath == "" {
		schemaPath = schemas.ResolveSchemaPath(filepath.Join("schemas", "match_results.schema.json"))
	}
	if schemaPath == "" {
		return fmt.Errorf("could not locate schemas/match_results.schema.json; pass --schema")
	}

	if err := schemas.ValidateJSON(schemaPath, validateFile); err != nil {
		return err
	}

	fmt.Printf("%s is valid against %s\n", validateFile, filepath.Base(schemaPath))
	return nil
}
