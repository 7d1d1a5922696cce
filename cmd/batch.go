package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"gdpr-obfuscator/internal/obfuscator"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
)

var (
	batchManifest string
	batchNoBar    bool
)

type batchResult struct {
	Request obfuscator.Request
	Result  *obfuscator.Result
	Err     error
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run every invocation event of a manifest, one after another",
	Long: `Runs a JSON manifest holding an array of invocation events:

  [
    {"file_to_obfuscate": "s3://my-bucket/new_data/a.csv", "pii_fields": ["name"]},
    {"file_to_obfuscate": "s3://my-bucket/new_data/b.json", "pii_fields": ["email"]}
  ]

A failed event does not stop the batch; the command exits non-zero when any failed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(batchManifest)
		if err != nil {
			return fmt.Errorf("failed to read manifest: %w", err)
		}
		reqs, err := obfuscator.ParseEvents(raw)
		if err != nil {
			return err
		}
		if len(reqs) == 0 {
			return fmt.Errorf("manifest %s holds no events", batchManifest)
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

		Log.WithField("events", len(reqs)).Info("starting batch")
		start := time.Now()

		var bar *uiprogress.Bar
		if !batchNoBar {
			uiprogress.Start()
			bar = uiprogress.AddBar(len(reqs)).AppendCompleted().PrependElapsed()
			bar.PrependFunc(func(b *uiprogress.Bar) string {
				return fmt.Sprintf("Obfuscating (%d/%d): ", b.Current(), len(reqs))
			})
		}

		results := make([]batchResult, 0, len(reqs))
		for _, req := range reqs {
			// An interrupt skips the remaining events.
			r := batchResult{Request: req, Err: cmd.Context().Err()}
			if r.Err == nil {
				r.Result, r.Err = p.Run(cmd.Context(), req)
			}
			results = append(results, r)
			if bar != nil {
				bar.Incr()
			}
		}

		if bar != nil {
			uiprogress.Stop()
		}

		failed := printBatchSummary(cmd.OutOrStdout(), results)
		Log.WithField("elapsed", time.Since(start).String()).Info("batch done")

		if failed > 0 {
			return fmt.Errorf("%d of %d events failed", failed, len(results))
		}
		return nil
	},
}

// printBatchSummary writes one line per event and returns how many failed.
func printBatchSummary(w io.Writer, results []batchResult) int {
	fmt.Fprintln(w, "\nSummary Report:")
	failed, masked := 0, 0
	for i, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(w, "[!] [%02d/%02d] %s\n    └ Error: %v\n", i+1, len(results), r.Request.FileToObfuscate, r.Err)
			continue
		}
		masked += r.Result.MaskedValues
		fmt.Fprintf(w, "[✓] [%02d/%02d] %s -> %s : %d rows, %d values masked (HTTP %d)\n",
			i+1, len(results), r.Request.FileToObfuscate, r.Result.DestinationURI(),
			r.Result.Rows, r.Result.MaskedValues, r.Result.Metadata.HTTPStatusCode)
	}
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Succeeded: %d  Failed: %d  Values masked: %d\n", len(results)-failed, failed, masked)
	return failed
}

func init() {
	RootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchManifest, "manifest", "m", "", "JSON file with an array of invocation events")
	batchCmd.Flags().BoolVar(&batchNoBar, "no-progress", false, "Disable the progress bar")
	batchCmd.MarkFlagRequired("manifest")
}
