package playback

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/touchrec/touchrec/script"
	"github.com/touchrec/touchrec/utils"
)

// ScriptCache keeps speed-adjusted copies of one source script on disk.
// Evicted copies are deleted.
type ScriptCache struct {
	source string
	dir    string
	cache  *lru.Cache[string, string]
}

func NewScriptCache(source string, size int) (*ScriptCache, error) {
	if size < 1 {
		size = 1
	}

	dir, err := os.MkdirTemp("", "touchrec-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	cache, err := lru.NewWithEvict(size, func(speed, path string) {
		utils.Verbose("dropping %sx script %s", speed, path)
		_ = os.Remove(path)
	})
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}

	return &ScriptCache{source: source, dir: dir, cache: cache}, nil
}

func (c *ScriptCache) Source() string {
	return c.source
}

// Path returns a script to run at speed. Speed 1 is the source itself.
func (c *ScriptCache) Path(speed float64) (string, error) {
	if err := script.ValidateSpeed(speed); err != nil {
		return "", err
	}
	if speed == 1.0 {
		return c.source, nil
	}

	key := script.FormatSpeed(speed)
	if path, ok := c.cache.Get(key); ok {
		return path, nil
	}

	src, err := os.ReadFile(c.source)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", c.source, err)
	}

	out, err := script.Transform(src, speed)
	if err != nil {
		return "", err
	}

	base := strings.TrimSuffix(filepath.Base(c.source), filepath.Ext(c.source))
	path := filepath.Join(c.dir, fmt.Sprintf("%s_%sx.sh", base, key))
	if err := utils.WriteExecutable(path, out); err != nil {
		return "", err
	}

	c.cache.Add(key, path)
	utils.Verbose("created %sx script %s", key, path)
	return path, nil
}

func (c *ScriptCache) Len() int {
	return c.cache.Len()
}

// Close deletes every cached script and the temp dir.
func (c *ScriptCache) Close() error {
	c.cache.Purge()
	return os.RemoveAll(c.dir)
}
