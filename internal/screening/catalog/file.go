package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"neuroease/internal/screening/models"
)

// fileDocument is the on-disk catalog layout:
//
//	rules:
//	  - id: 1
//	    code: GAD
//	    title: Generalized anxiety
//	    minimum_matches_required: 2
//	    conditions:
//	      - question_id: Q1
//	        value: "yes"
type fileDocument struct {
	Rules []models.DiagnosticRule `yaml:"rules"`
}

// File loads the catalog from a YAML file on every call. Wrap it in Cached
// to avoid re-reading per request.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) LoadRules(_ context.Context) ([]models.DiagnosticRule, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read rule catalog %s: %w", f.path, err)
	}
	rules, err := Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("rule catalog %s: %w", f.path, err)
	}
	return rules, nil
}

// Decode parses a YAML catalog. Unknown fields are rejected so typos in
// operator or threshold names surface at load time.
func Decode(r io.Reader) ([]models.DiagnosticRule, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc fileDocument
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return []models.DiagnosticRule{}, nil
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return prepare(doc.Rules)
}
