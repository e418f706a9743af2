package build

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
)

// CacheEntry stores the metadata needed to decide whether a module's MIR
// dump needs to be rewritten.
type CacheEntry struct {
	SourceHash string `json:"source_hash"`
}

// CacheManager persists one CacheEntry per module under the project's
// build directory.
type CacheManager struct {
	cacheDir string
}

func NewCacheManager(projectRoot string) *CacheManager {
	return &CacheManager{cacheDir: filepath.Join(projectRoot, "build", "mir")}
}

func (c *CacheManager) GetCacheEntry(modulePath string) (*CacheEntry, error) {
	data, err := os.ReadFile(c.hashFilePath(modulePath))
	if err != nil {
		return nil, err
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}

	return &entry, nil
}

func (c *CacheManager) SaveCacheEntry(modulePath string, entry *CacheEntry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.hashFilePath(modulePath), data, 0644)
}

func (c *CacheManager) ComputeFileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// NeedsRebuild reports whether modulePath's content differs from the hash
// recorded the last time it was built, or whether no such record exists.
func (c *CacheManager) NeedsRebuild(modulePath string) (bool, error) {
	entry, err := c.GetCacheEntry(modulePath)
	if err != nil {
		return true, nil
	}

	currentHash, err := c.ComputeFileHash(modulePath)
	if err != nil {
		return false, err
	}

	return currentHash != entry.SourceHash, nil
}

func (c *CacheManager) hashFilePath(modulePath string) string {
	base := filepath.Base(modulePath)
	name := base[:len(base)-len(filepath.Ext(base))]

	return filepath.Join(c.cacheDir, name+".hash")
}
