package build

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/minicc/minic/checker"
	"github.com/minicc/minic/mir"
	"github.com/minicc/minic/module"
)

// Config is the decoded form of a project's minic.toml.
type Config struct {
	Package struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"package"`
}

// Builder checks and lowers every `.minic` file in a project directory on
// every build; for files whose source hasn't changed since the last build
// it skips rewriting the MIR dump.
type Builder struct {
	projectRoot string
	cache       *CacheManager
	loader      *module.Loader
}

func NewBuilder(projectRoot string) *Builder {
	return &Builder{
		projectRoot: projectRoot,
		cache:       NewCacheManager(projectRoot),
		loader:      module.NewLoader(),
	}
}

// Build type-checks and lowers every module in the project, returning the
// resulting MIR for each, keyed by module name. Modules are independent:
// one failing to check does not stop the others from being attempted, but
// the first error is what Build ultimately returns.
func (b *Builder) Build() (map[string]*mir.Mir, error) {
	if _, err := b.loadConfig(); err != nil {
		return nil, err
	}

	if err := b.setupBuildDir(); err != nil {
		return nil, err
	}

	modules, err := b.loader.LoadDir(b.projectRoot)
	if err != nil {
		return nil, err
	}

	results := make(map[string]*mir.Mir)
	var firstErr error

	for _, mod := range modules {
		m, err := b.compileModule(mod)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		results[mod.Name] = m
	}

	return results, firstErr
}

func (b *Builder) loadConfig() (*Config, error) {
	configPath := filepath.Join(b.projectRoot, "minic.toml")

	var config Config
	if _, err := toml.DecodeFile(configPath, &config); err != nil {
		return nil, fmt.Errorf("failed to load minic.toml: %w", err)
	}

	return &config, nil
}

func (b *Builder) setupBuildDir() error {
	return os.MkdirAll(filepath.Join(b.projectRoot, "build", "mir"), 0755)
}

func (b *Builder) compileModule(mod *module.Module) (*mir.Mir, error) {
	needsRebuild, err := b.cache.NeedsRebuild(mod.Path)
	if err != nil {
		return nil, err
	}

	if err := checker.NewChecker().CheckFile(mod.File); err != nil {
		return nil, fmt.Errorf("type error in %s: %w", mod.Path, err)
	}

	lowered := mir.LowerFile(mod.File)

	if !needsRebuild {
		fmt.Printf("  Using cached %s\n", mod.Name)
		return lowered, nil
	}

	fmt.Printf("  Checking %s\n", mod.Name)

	dumpPath := filepath.Join(b.projectRoot, "build", "mir", mod.Name+".mir")
	if err := os.WriteFile(dumpPath, []byte(lowered.String()), 0644); err != nil {
		return nil, err
	}

	entry := &CacheEntry{SourceHash: mod.ContentHash}
	if err := b.cache.SaveCacheEntry(mod.Path, entry); err != nil {
		return nil, err
	}

	return lowered, nil
}
