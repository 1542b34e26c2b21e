package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/GTDGit/gtd_catalog/internal/models"
)

// loadProduct reads a product snapshot. YAML files are decoded generically and
// re-encoded as JSON so both formats share the API's field names.
func loadProduct(path string) (*models.Product, error) {
	if path == "" {
		return nil, errors.New(`required flag "file" not set`)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc interface{}
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse yaml snapshot: %w", err)
		}
		if raw, err = json.Marshal(doc); err != nil {
			return nil, fmt.Errorf("convert yaml snapshot: %w", err)
		}
	case ".json", "":
	default:
		return nil, fmt.Errorf("unsupported snapshot format %q", filepath.Ext(path))
	}

	// Snapshots written by hand usually leave isActive out; treat them as live.
	p := models.Product{IsActive: true}
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if p.ID == 0 {
		return nil, fmt.Errorf("decode snapshot: product id is required")
	}
	return &p, nil
}

// render writes v as indented JSON, or as YAML converted from that JSON.
func render(w io.Writer, format string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	switch format {
	case "json":
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		var doc interface{}
		if err := json.Unmarshal(data, &doc); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
