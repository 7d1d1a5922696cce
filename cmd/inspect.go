package cmd

import (
	"fmt"
	"io"

	"gdpr-obfuscator/internal/obfuscator"
	"gdpr-obfuscator/internal/reference"
	"gdpr-obfuscator/internal/schema"
	"gdpr-obfuscator/internal/scratch"
	"gdpr-obfuscator/internal/tabular"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var inspectFile string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the columns of an S3 object and suggest which ones hold PII",
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := reference.Parse(inspectFile)
		if err != nil {
			return err
		}
		if err := ref.Validate(); err != nil {
			return err
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		arena, err := scratch.New(a.cfg.Scratch.Dir, uuid.NewString())
		if err != nil {
			return err
		}
		defer func() {
			if err := arena.Release(); err != nil {
				Log.WithError(err).Warn("failed to remove scratch directory")
			}
		}()

		local := arena.Path(ref.ObjectName)
		if err := a.store.Download(cmd.Context(), ref.Bucket, ref.Key, local); err != nil {
			return err
		}
		ds, err := tabular.Load(local, ref.Format)
		if err != nil {
			return err
		}

		return printInspection(cmd.OutOrStdout(), ref, ds)
	},
}

func printInspection(w io.Writer, ref reference.Reference, ds *tabular.Dataset) error {
	fmt.Fprintf(w, "🔍 %s (%s, %d rows)\n", ref, ref.Format, ds.Len())
	if ds.IndexColumn != "" {
		fmt.Fprintf(w, "Index column: %s\n", ds.IndexColumn)
	}

	suggestions := schema.SuggestFields(ds.Columns())
	pii := make(map[string]schema.Suggestion, len(suggestions))
	for _, s := range suggestions {
		pii[s.Column] = s
	}

	fmt.Fprintln(w, "Columns:")
	for i, c := range ds.Columns() {
		mark := " "
		note := ""
		if s, ok := pii[c]; ok {
			mark = "!"
			note = fmt.Sprintf(" <- looks like %s", s.Category)
		}
		fmt.Fprintf(w, "[%s] [%02d] %-24s (%s)%s\n", mark, i+1, c, schema.AnalyzeMeaning(c), note)
	}

	if len(suggestions) == 0 {
		fmt.Fprintln(w, "No PII columns suggested.")
		return nil
	}
	fmt.Fprintln(w, "\nSuggested event:")
	return printJSON(w, obfuscator.Request{FileToObfuscate: ref.String(), PIIFields: schema.Columns(suggestions)})
}

func init() {
	RootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVarP(&inspectFile, "file", "f", "", "S3 URI of the file to inspect")
	inspectCmd.MarkFlagRequired("file")
}
