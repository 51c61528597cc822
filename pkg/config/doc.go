// Package config loads the pipeline YAML documents (config.yaml, params.yaml and
// schema.yaml) into typed structures and builds the immutable per-stage
// configurations from them.
package config
