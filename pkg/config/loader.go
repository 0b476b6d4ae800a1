package config

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// searchNames are the settings files looked for in the working directory
// when no --config flag is given, in order of preference.
var searchNames = []string{".hopper.hcl", ".hopper.yaml", ".hopper.yml", ".hopper.json"}

// Load reads the settings file at path. The format follows the file
// extension: .json, .yaml/.yml, or .hcl. With an empty path it searches
// the working directory for the default names and falls back to Default
// when none exists.
func Load(ctx context.Context, path string) (*Settings, error) {
	logger := zerolog.Ctx(ctx)

	if path == "" {
		for _, name := range searchNames {
			if _, err := os.Stat(name); err == nil {
				path = name
				break
			}
		}
		if path == "" {
			logger.Debug().Msg("no settings file found, using defaults")
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading settings file: %w", err)
	}

	var settings *Settings
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		settings, err = loadJSON(data)
	case ".yaml", ".yml":
		settings, err = loadYAML(data)
	case ".hcl":
		settings, err = loadHCL(data, path)
	default:
		return nil, errors.Errorf("unsupported settings file extension %q", ext)
	}
	if err != nil {
		return nil, errors.Errorf("loading %s: %w", path, err)
	}

	if err := settings.Validate(); err != nil {
		return nil, errors.Errorf("validating %s: %w", path, err)
	}

	logger.Debug().Str("path", path).Msg("loaded settings")
	return settings, nil
}

func loadJSON(data []byte) (*Settings, error) {
	var settings Settings
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&settings); err != nil {
		return nil, errors.Errorf("parsing JSON: %w", err)
	}
	return &settings, nil
}

func loadYAML(data []byte) (*Settings, error) {
	var settings Settings
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&settings); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &settings, nil
}

func loadHCL(data []byte, filename string) (*Settings, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var settings Settings
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &settings)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	return &settings, nil
}
