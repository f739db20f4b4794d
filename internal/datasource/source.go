// Package datasource discovers, loads and watches nereid diagram files.
package datasource

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/bnomei/nereid-sub000/internal/model"
)

const (
	defaultDir = ".nereid"
	envDiagram = "NEREID_DIAGRAM"
)

// defaultNames are tried in order inside defaultDir.
var defaultNames = []string{"diagram.json", "diagram.yaml", "diagram.yml"}

// Discover finds the diagram file path.
// Priority: NEREID_DIAGRAM env var > .nereid/diagram.{json,yaml,yml} in CWD > walk up parents.
func Discover() (string, error) {
	if env := os.Getenv(envDiagram); env != "" {
		if _, err := os.Stat(env); err == nil {
			return env, nil
		}
		return "", fmt.Errorf("%s=%q: %w", envDiagram, env, os.ErrNotExist)
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	for {
		if path, ok := findIn(dir); ok {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("no diagram found (looked for %s/{%s})", defaultDir, strings.Join(defaultNames, ","))
}

func findIn(dir string) (string, bool) {
	for _, name := range defaultNames {
		candidate := filepath.Join(dir, defaultDir, name)
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// Load reads, validates and decodes the diagram at path. A diagram without
// an id gets one derived from its absolute path.
func Load(path string) (*model.Sequence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	seq, err := Decode(data, isYAML(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if seq.DiagramID == "" {
		seq.DiagramID = DiagramID(path)
	}
	return seq, nil
}

// Decode parses a JSON or YAML diagram document. The document is checked
// against the diagram schema before it is decoded.
func Decode(data []byte, yamlDoc bool) (*model.Sequence, error) {
	raw := data
	if yamlDoc {
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		b, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("convert yaml: %w", err)
		}
		raw = b
	}
	if err := validate(raw); err != nil {
		return nil, err
	}
	var seq model.Sequence
	if err := json.Unmarshal(raw, &seq); err != nil {
		return nil, fmt.Errorf("decode diagram: %w", err)
	}
	return &seq, nil
}

// DiagramID derives a stable id from the absolute path of a diagram file.
func DiagramID(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(abs))).String()
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
