package cmd

import (
	"bytes"
	"errors"
	"fmt"

	"gdpr-obfuscator/internal/engine"
	"gdpr-obfuscator/internal/reference"
	"gdpr-obfuscator/internal/tabular"

	"github.com/gosuri/uiprogress"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	seedFile    string
	seedColumns []string
	seedRandom  int64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate a fake student dataset and upload it to S3",
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := reference.Parse(seedFile)
		if err != nil {
			return err
		}
		if err := ref.Validate(); err != nil {
			return err
		}

		count := viper.GetInt("seed.count")
		if count <= 0 {
			return errors.New("--count must be positive")
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		Log.WithFields(logrus.Fields{"count": count, "file": ref.String()}).Info("generating dataset")

		uiprogress.Start()
		bar := uiprogress.AddBar(count).AppendCompleted().PrependElapsed()
		bar.PrependFunc(func(b *uiprogress.Bar) string {
			return "Generating: "
		})

		gen := engine.NewGenerator(seedRandom)
		var ds *tabular.Dataset
		if len(seedColumns) > 0 {
			ds, err = gen.Generate(ref.Format, seedColumns, count, func() { bar.Incr() })
		} else {
			ds = gen.GenerateStudents(count, func() { bar.Incr() })
			ds.Format = ref.Format
		}
		uiprogress.Stop()
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := tabular.Write(&buf, ds); err != nil {
			return fmt.Errorf("failed to encode dataset: %w", err)
		}

		md, err := a.store.Upload(cmd.Context(), buf.Bytes(), ref.Bucket, ref.Key)
		if err != nil {
			return err
		}
		Log.WithField("bytes", buf.Len()).Info("dataset uploaded")
		return printJSON(cmd.OutOrStdout(), md)
	},
}

func init() {
	RootCmd.AddCommand(seedCmd)

	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "S3 URI to upload the generated file to (.csv or .json)")
	seedCmd.Flags().Int("count", 0, "Number of rows to generate (overrides config)")
	seedCmd.Flags().StringSliceVar(&seedColumns, "columns", nil, "Columns to generate instead of the student set (comma-separated)")
	seedCmd.Flags().Int64Var(&seedRandom, "seed", 0, "Random seed for reproducible data (0 picks one)")
	seedCmd.MarkFlagRequired("file")

	viper.BindPFlag("seed.count", seedCmd.Flags().Lookup("count"))
	viper.SetDefault("seed.count", 100)
}
