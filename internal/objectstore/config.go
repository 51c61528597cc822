package objectstore

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-mlpipeline/internal/env"
)

// Config holds the S3-compatible endpoint used for s3:// dataset sources.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

func ConfigFromEnv() (Config, error) {
	useSSL, err := env.Bool("MLPIPELINE_S3_USE_SSL", true)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Endpoint:  env.String("MLPIPELINE_S3_ENDPOINT", "s3.amazonaws.com"),
		AccessKey: env.String("MLPIPELINE_S3_ACCESS_KEY", ""),
		SecretKey: env.String("MLPIPELINE_S3_SECRET_KEY", ""),
		Region:    env.String("MLPIPELINE_S3_REGION", "us-east-1"),
		UseSSL:    useSSL,
	}

	err = cfg.Validate()
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return errors.New("endpoint is required")
	}

	if strings.Contains(c.Endpoint, "://") {
		return errors.Errorf("endpoint must not include scheme: %q", c.Endpoint)
	}

	if strings.TrimSpace(c.Region) == "" {
		return errors.New("region is required")
	}

	if (c.AccessKey == "") != (c.SecretKey == "") {
		return errors.New("access key and secret key must be set together")
	}

	return nil
}
