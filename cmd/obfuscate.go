package cmd

import (
	"errors"
	"fmt"
	"os"

	"gdpr-obfuscator/internal/obfuscator"

	"github.com/spf13/cobra"
)

var (
	obfuscateFile  string
	obfuscatePII   []string
	obfuscateEvent string
)

var obfuscateCmd = &cobra.Command{
	Use:   "obfuscate",
	Short: "Mask PII fields of one S3 object and upload the obfuscated copy",
	Example: `  gdpr-obfuscator obfuscate --file s3://my-bucket/new_data/students.csv --pii name,email_address
  gdpr-obfuscator obfuscate --event event.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := requestFromFlags(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.pipeline()
		if err != nil {
			return err
		}

		res, err := p.Run(cmd.Context(), req)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

func requestFromFlags(cmd *cobra.Command) (obfuscator.Request, error) {
	if obfuscateEvent != "" {
		raw, err := os.ReadFile(obfuscateEvent)
		if err != nil {
			return obfuscator.Request{}, fmt.Errorf("failed to read event: %w", err)
		}
		return obfuscator.ParseEvent(raw)
	}

	if !cmd.Flags().Changed("pii") {
		return obfuscator.Request{}, errors.New("--pii is required with --file")
	}
	return obfuscator.Request{FileToObfuscate: obfuscateFile, PIIFields: obfuscatePII}, nil
}

func init() {
	RootCmd.AddCommand(obfuscateCmd)

	obfuscateCmd.Flags().StringVarP(&obfuscateFile, "file", "f", "", "S3 URI of the file to obfuscate (s3://bucket/path/name.csv)")
	obfuscateCmd.Flags().StringSliceVarP(&obfuscatePII, "pii", "p", []string{}, "Fields to mask, in order (comma-separated)")
	obfuscateCmd.Flags().StringVarP(&obfuscateEvent, "event", "e", "", "JSON invocation event file ({\"file_to_obfuscate\": ..., \"pii_fields\": [...]})")

	obfuscateCmd.MarkFlagsMutuallyExclusive("file", "event")
	obfuscateCmd.MarkFlagsOneRequired("file", "event")
}
