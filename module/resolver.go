package module

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minicc/minic/parser"
)

// FindProjectRoot walks up from dir until it finds minic.toml.
func FindProjectRoot(dir string) (string, error) {
	current := dir

	for {
		if _, err := os.Stat(filepath.Join(current, "minic.toml")); err == nil {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("no minic.toml found in %s or parent directories", dir)
		}

		current = parent
	}
}

// Loader discovers and parses every `.minic` file in a project directory.
// There is no import graph to resolve, so loading a project is just
// scanning a directory and parsing each file it finds.
type Loader struct {
	cache map[string]*Module // path -> Module
}

func NewLoader() *Loader {
	return &Loader{cache: make(map[string]*Module)}
}

// LoadDir parses every `.minic` file directly inside dir (non-recursive,
// matching how a single minic project lays out its sources).
func (l *Loader) LoadDir(dir string) ([]*Module, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var modules []*Module
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".minic" {
			continue
		}

		mod, err := l.Load(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		modules = append(modules, mod)
	}

	return modules, nil
}

// Load parses a single `.minic` file, caching the result by absolute path.
func (l *Loader) Load(path string) (*Module, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	if mod, ok := l.cache[absPath]; ok {
		return mod, nil
	}

	source, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", absPath, err)
	}

	p := parser.New(string(source))
	file := p.ParseFile()
	if len(p.Errors()) > 0 {
		return nil, fmt.Errorf("parse errors in %s: %v", absPath, p.Errors())
	}

	mod := &Module{
		Path:        absPath,
		Name:        moduleNameFromPath(absPath),
		File:        file,
		ContentHash: hashContent(source),
	}

	l.cache[absPath] = mod
	return mod, nil
}

func moduleNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func hashContent(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}
