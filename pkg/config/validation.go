package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate checks the configuration using struct tags plus custom rules that
// tags cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	return validateCustomRules(cfg)
}

func validateCustomRules(cfg *Config) error {
	switch cfg.Content.Type {
	case "filesystem":
		if path, _ := cfg.Content.Filesystem["path"].(string); path == "" {
			return fmt.Errorf("content.filesystem: path is required")
		}
	case "badger":
		path, _ := cfg.Content.Badger["path"].(string)
		inMemory, _ := cfg.Content.Badger["in_memory"].(bool)
		if path == "" && !inMemory {
			return fmt.Errorf("content.badger: path is required unless in_memory is set")
		}
	case "s3":
		if bucket, _ := cfg.Content.S3["bucket"].(string); bucket == "" {
			return fmt.Errorf("content.s3: bucket is required")
		}
		if region, _ := cfg.Content.S3["region"].(string); region == "" {
			return fmt.Errorf("content.s3: region is required")
		}
	}

	if cfg.RateLimit.ConnectionsPerSecond == 0 && cfg.RateLimit.Burst != 0 {
		return fmt.Errorf("rate_limit: burst without connections_per_second has no effect")
	}

	return nil
}

// formatValidationError converts validator errors into readable messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
