// Package config holds the tool settings: issuing company details,
// default scan extensions, and document options. Settings load from a
// JSON, YAML, or HCL file and fall back to built-in defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"

	"github.com/filehopper/hopper/pkg/scan"
)

// Company identifies the issuing company printed on every document.
type Company struct {
	Name         string `json:"name" yaml:"name" hcl:"name,optional"`
	AddressLine1 string `json:"address_line_1,omitempty" yaml:"address_line_1,omitempty" hcl:"address_line_1,optional"`
	AddressLine2 string `json:"address_line_2,omitempty" yaml:"address_line_2,omitempty" hcl:"address_line_2,optional"`
	VATNumber    string `json:"vat_number,omitempty" yaml:"vat_number,omitempty" hcl:"vat_number,optional"`
	Phone        string `json:"phone,omitempty" yaml:"phone,omitempty" hcl:"phone,optional"`
	Email        string `json:"email,omitempty" yaml:"email,omitempty" hcl:"email,optional"`
}

// ComplianceNote is a standing note applied to documents for the listed
// productions. An empty production list applies it everywhere.
type ComplianceNote struct {
	Text        string   `json:"text" yaml:"text" hcl:"text,optional"`
	Productions []string `json:"productions,omitempty" yaml:"productions,omitempty" hcl:"productions,optional"`
}

// Settings is the complete tool configuration.
type Settings struct {
	// DataDir overrides where record stores and counters live.
	DataDir string `json:"data_dir,omitempty" yaml:"data_dir,omitempty" hcl:"data_dir,optional"`

	Company *Company `json:"company,omitempty" yaml:"company,omitempty" hcl:"company,block"`

	// DefaultExtensions is the scan filter used when --exts is not given,
	// in the same comma-separated form.
	DefaultExtensions string `json:"default_extensions,omitempty" yaml:"default_extensions,omitempty" hcl:"default_extensions,optional"`

	// ExtensionAliases lists groups of extensions treated as one, each
	// group comma-separated, e.g. "step,stp".
	ExtensionAliases []string `json:"extension_aliases,omitempty" yaml:"extension_aliases,omitempty" hcl:"extension_aliases,optional"`

	// IgnorePatterns are glob patterns for source files to skip.
	IgnorePatterns []string `json:"ignore_patterns,omitempty" yaml:"ignore_patterns,omitempty" hcl:"ignore_patterns,optional"`

	// QuotePrefix is prepended to quote numbers. Order and quote-request
	// prefixes are fixed.
	QuotePrefix string `json:"quote_prefix,omitempty" yaml:"quote_prefix,omitempty" hcl:"quote_prefix,optional"`

	// FooterNote is printed at the bottom of every document.
	FooterNote string `json:"footer_note,omitempty" yaml:"footer_note,omitempty" hcl:"footer_note,optional"`

	ComplianceNote *ComplianceNote `json:"compliance_note,omitempty" yaml:"compliance_note,omitempty" hcl:"compliance_note,block"`
}

// Default returns the settings used when no config file exists.
func Default() *Settings {
	return &Settings{
		DefaultExtensions: "pdf,dxf,dwg,step,stp",
		ExtensionAliases:  []string{"step,stp", "igs,iges"},
		IgnorePatterns:    []string{"~$*"},
	}
}

// Aliases parses the configured alias groups into the form the scanner
// takes.
func (s *Settings) Aliases() [][]string {
	var groups [][]string
	for _, raw := range s.ExtensionAliases {
		var group []string
		for _, ext := range strings.Split(raw, ",") {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext != "" {
				group = append(group, ext)
			}
		}
		if len(group) > 1 {
			groups = append(groups, group)
		}
	}
	return groups
}

// Validate checks that the settings are usable: the default extension
// filter must parse and every ignore pattern must be a valid glob.
func (s *Settings) Validate() error {
	if s.DefaultExtensions != "" {
		if _, err := scan.ParseExts(s.DefaultExtensions, s.Aliases()); err != nil {
			return errors.Errorf("default_extensions: %w", err)
		}
	}
	for _, pattern := range s.IgnorePatterns {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("ignore pattern %q is not a valid glob", pattern)
		}
	}
	return nil
}

// ResolveDataDir picks the record-store directory: the flag wins over the
// settings file, which wins over ~/.hopper.
func (s *Settings) ResolveDataDir(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if s.DataDir != "" {
		return s.DataDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".hopper"), nil
}
