package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/mitchellh/go-homedir"
	"github.com/turbot/go-kit/helpers"
	"github.com/turbot/pipe-fittings/error_helpers"
	"github.com/wirvsvirus/landingzone/connection"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Load reads the config file at path. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("error expanding config path %s: %w", path, err)
	}
	src, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}
	slog.Debug("loading config", "path", expanded)
	return Parse(src, expanded)
}

// Parse decodes and validates HCL config source
func Parse(src []byte, filename string) (*Config, error) {
	file, diags := hclsyntax.ParseConfig(src, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, error_helpers.HclDiagsToError("Failed to parse config", diags)
	}

	cfg := &Config{}
	diags = decodeConfig(file.Body, evalContext(), cfg)
	if diags.HasErrors() {
		return nil, error_helpers.HclDiagsToError("Failed to decode config", diags)
	}
	cfg.resolve()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filename, err)
	}
	return cfg, nil
}

func decodeConfig(body hcl.Body, evalCtx *hcl.EvalContext, cfg *Config) (diags hcl.Diagnostics) {
	defer func() {
		if r := recover(); r != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "unexpected error decoding config",
				Detail:   helpers.ToError(r).Error(),
			})
		}
	}()

	diags = gohcl.DecodeBody(body, evalCtx, cfg)
	if diags.HasErrors() || cfg.Store == nil {
		return diags
	}

	// the store body is decoded into the connection of its type
	var target any
	switch cfg.Store.Type {
	case StoreAwsS3:
		cfg.aws = &connection.AwsConnection{}
		target = cfg.aws
	case StoreGcpStorage:
		cfg.gcp = &connection.GcpConnection{}
		target = cfg.gcp
	case StoreFileSystem:
		cfg.fileSystem = &FileSystemStoreConfig{}
		target = cfg.fileSystem
	default:
		return append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "unsupported store type",
			Detail:   fmt.Sprintf("store type %q is not one of %s, %s, %s", cfg.Store.Type, StoreAwsS3, StoreGcpStorage, StoreFileSystem),
		})
	}
	return append(diags, gohcl.DecodeBody(cfg.Store.Body, evalCtx, target)...)
}

// evalContext exposes env("NAME") so secrets can stay out of the file
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{},
		Functions: map[string]function.Function{
			"env": function.New(&function.Spec{
				Params: []function.Parameter{{Name: "name", Type: cty.String}},
				Type:   function.StaticReturnType(cty.String),
				Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
					return cty.StringVal(os.Getenv(args[0].AsString())), nil
				},
			}),
		},
	}
}
