package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"gdpr-obfuscator/internal/masking"
	"gdpr-obfuscator/internal/obfuscator"
	"gdpr-obfuscator/internal/reference"
	"gdpr-obfuscator/internal/storage"
	"gdpr-obfuscator/internal/tabular"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	setDefaults(v)
	if yaml != "" {
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(strings.NewReader(yaml)))
	}
	return v
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(newTestViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "eu-west-2", cfg.Storage.Region)
	assert.Equal(t, 3, cfg.Storage.MaxAttempts)
	assert.Equal(t, obfuscator.DefaultDestination(), cfg.Output)
	assert.Equal(t, "*", cfg.Masking.MaskChar)
	assert.Equal(t, "skip_field", cfg.Masking.NullPolicy)
	assert.True(t, cfg.Masking.StrictFields)
	assert.False(t, cfg.Audit.Enabled)
	assert.Equal(t, "obfuscation_audit", cfg.Audit.Table)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_File(t *testing.T) {
	v := newTestViper(t, `
storage:
  region: us-east-1
  endpoint: http://localhost:9000
  use_path_style: true
output:
  bucket: clean-bucket
  placement: alongside
masking:
  mask_char: "#"
  null_policy: stop_row
audit:
  enabled: true
  driver: mysql
  dsn: root:root@tcp(127.0.0.1:3306)/gdpr
log:
  format: json
`)
	cfg, err := LoadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "us-east-1", cfg.Storage.Region)
	assert.True(t, cfg.Storage.UsePathStyle)
	assert.Equal(t, "clean-bucket", cfg.Output.Bucket)
	assert.Equal(t, obfuscator.PlacementAlongside, cfg.Output.Placement)
	assert.Equal(t, "obfuscated_data", cfg.Output.Prefix)
	assert.Equal(t, "mysql", cfg.Audit.Driver)
	assert.Equal(t, "json", cfg.Log.Format)

	e, err := cfg.Masking.Engine()
	require.NoError(t, err)
	assert.Equal(t, "####", e.MaskValue("Jay!"))
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"no region":       "storage:\n  region: \"\"\n",
		"half keys":       "storage:\n  access_key_id: AKIA\n",
		"placement":       "output:\n  placement: sideways\n",
		"mask char":       "masking:\n  mask_char: \"**\"\n",
		"null policy":     "masking:\n  null_policy: drop\n",
		"audit no dsn":    "audit:\n  enabled: true\n",
		"audit bad table": "audit:\n  enabled: true\n  dsn: x\n  table: \"a b\"\n",
	}
	for name, yaml := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(newTestViper(t, yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("GDPR_STORAGE_REGION", "ap-south-1")
	t.Setenv("GDPR_MASKING_NULL_POLICY", "stop_row")

	v := newTestViper(t, "")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg, err := LoadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "ap-south-1", cfg.Storage.Region)
	assert.Equal(t, string(masking.NullPolicyStopRow), cfg.Masking.NullPolicy)
}

func TestPrintBatchSummary(t *testing.T) {
	results := []batchResult{
		{
			Request: obfuscator.Request{FileToObfuscate: "s3://b/d/a.csv"},
			Result: &obfuscator.Result{
				DestinationBucket: "b",
				DestinationKey:    "obfuscated_data/obfuscated_a.csv",
				Rows:              2,
				MaskedValues:      4,
				Metadata:          storage.ResponseMetadata{HTTPStatusCode: 200},
			},
		},
		{
			Request: obfuscator.Request{FileToObfuscate: "s3://b/d/missing.csv"},
			Err:     errors.New("object not found"),
		},
	}

	var buf bytes.Buffer
	failed := printBatchSummary(&buf, results)

	assert.Equal(t, 1, failed)
	out := buf.String()
	assert.Contains(t, out, "s3://b/d/a.csv -> s3://b/obfuscated_data/obfuscated_a.csv : 2 rows, 4 values masked (HTTP 200)")
	assert.Contains(t, out, "Error: object not found")
	assert.Contains(t, out, "Succeeded: 1  Failed: 1  Values masked: 4")
}

func TestPrintInspection(t *testing.T) {
	ref, err := reference.Parse("s3://test-bucket/new_data/student_data.csv")
	require.NoError(t, err)
	ds, err := tabular.Decode(strings.NewReader("id,name,email_address,course\n1,Jay,jay@example.com,Software\n"), reference.FormatCSV)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, printInspection(&buf, ref, ds))

	out := buf.String()
	assert.Contains(t, out, "s3://test-bucket/new_data/student_data.csv (csv, 1 rows)")
	assert.Contains(t, out, "Index column: id")
	assert.Contains(t, out, "looks like email")
	assert.Contains(t, out, `"pii_fields": [
    "name",
    "email_address"
  ]`)
}
