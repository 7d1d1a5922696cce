package obfuscator

import (
	"fmt"
	"path"

	"gdpr-obfuscator/internal/reference"
)

type Placement string

const (
	// PlacementPrefix writes every output under one key prefix.
	PlacementPrefix Placement = "prefix"
	// PlacementAlongside writes the output next to its source object.
	PlacementAlongside Placement = "alongside"

	DefaultPrefix = "obfuscated_data"
	OutputPrefix  = "obfuscated_"
)

// Destination decides where an obfuscated object is uploaded.
type Destination struct {
	// Bucket defaults to the source bucket when empty.
	Bucket    string    `mapstructure:"bucket"`
	Prefix    string    `mapstructure:"prefix"`
	Placement Placement `mapstructure:"placement"`
	// KeepIndex writes a CSV source's index column back into the output.
	KeepIndex bool `mapstructure:"keep_index"`
}

func DefaultDestination() Destination {
	return Destination{Prefix: DefaultPrefix, Placement: PlacementPrefix}
}

func (d Destination) Validate() error {
	switch d.Placement {
	case PlacementPrefix, PlacementAlongside, "":
		return nil
	default:
		return fmt.Errorf("invalid output placement %q (prefix, alongside)", d.Placement)
	}
}

// OutputName is the object name of the obfuscated copy of name.
func OutputName(name string) string {
	return OutputPrefix + name
}

// Resolve returns the bucket and key the obfuscated copy of ref goes to.
func (d Destination) Resolve(ref reference.Reference) (bucket, key string) {
	bucket = d.Bucket
	if bucket == "" {
		bucket = ref.Bucket
	}

	name := OutputName(ref.ObjectName)
	if d.Placement == PlacementAlongside {
		return bucket, path.Join(ref.Dir(), name)
	}

	prefix := d.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return bucket, path.Join(prefix, name)
}
