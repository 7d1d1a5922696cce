package cmd

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"gdpr-obfuscator/internal/audit"
	"gdpr-obfuscator/internal/logger"
	"gdpr-obfuscator/internal/masking"
	"gdpr-obfuscator/internal/obfuscator"
	"gdpr-obfuscator/internal/storage"

	"github.com/spf13/viper"
)

type Config struct {
	Storage storage.S3Config       `mapstructure:"storage"`
	Output  obfuscator.Destination `mapstructure:"output"`
	Masking MaskingConfig          `mapstructure:"masking"`
	Scratch ScratchConfig          `mapstructure:"scratch"`
	Audit   audit.Config           `mapstructure:"audit"`
	Log     logger.Config          `mapstructure:"log"`
}

type MaskingConfig struct {
	MaskChar     string `mapstructure:"mask_char"`
	NullPolicy   string `mapstructure:"null_policy"`
	StrictFields bool   `mapstructure:"strict_fields"`
}

type ScratchConfig struct {
	Dir string `mapstructure:"dir"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.region", "eu-west-2")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.use_path_style", false)
	v.SetDefault("storage.access_key_id", "")
	v.SetDefault("storage.secret_access_key", "")
	v.SetDefault("storage.session_token", "")
	v.SetDefault("storage.max_attempts", 3)

	v.SetDefault("output.bucket", "")
	v.SetDefault("output.prefix", obfuscator.DefaultPrefix)
	v.SetDefault("output.placement", string(obfuscator.PlacementPrefix))
	v.SetDefault("output.keep_index", false)

	v.SetDefault("masking.mask_char", string(masking.DefaultMaskChar))
	v.SetDefault("masking.null_policy", string(masking.NullPolicySkipField))
	v.SetDefault("masking.strict_fields", true)

	v.SetDefault("scratch.dir", "")

	v.SetDefault("audit.enabled", false)
	v.SetDefault("audit.driver", "postgres")
	v.SetDefault("audit.dsn", "")
	v.SetDefault("audit.table", audit.DefaultTable)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// LoadConfig decodes and validates the whole configuration held by v.
func LoadConfig(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Output.Validate(); err != nil {
		return err
	}
	if _, err := c.Masking.Engine(); err != nil {
		return err
	}
	return c.Audit.Validate()
}

// Engine builds the masking engine described by the config.
func (m MaskingConfig) Engine() (*masking.Engine, error) {
	opts := []masking.Option{masking.WithStrictFields(m.StrictFields)}

	if m.MaskChar != "" {
		if utf8.RuneCountInString(m.MaskChar) != 1 {
			return nil, errors.New("masking.mask_char must be a single character")
		}
		r, _ := utf8.DecodeRuneInString(m.MaskChar)
		opts = append(opts, masking.WithMaskChar(r))
	}

	if m.NullPolicy != "" {
		p, err := masking.ParseNullPolicy(m.NullPolicy)
		if err != nil {
			return nil, err
		}
		opts = append(opts, masking.WithNullPolicy(p))
	}

	return masking.New(opts...), nil
}
