// Package cache persists pull request lists and checkout times between runs.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	clog "github.com/charmbracelet/log"

	"github.com/jmcampanini/pullgod/internal/github"
)

const fileName = "cache.json"

// Error reports a failed cache write. The cache keeps working in memory afterwards.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("cache %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type document struct {
	PullRequests  map[string][]github.PullRequest `json:"pullRequests"`
	CheckoutTimes map[string]int64                `json:"checkoutTimes"`
}

func newDocument() document {
	return document{
		PullRequests:  make(map[string][]github.PullRequest),
		CheckoutTimes: make(map[string]int64),
	}
}

type Cache struct {
	doc        document
	log        *clog.Logger
	memoryOnly bool
	mu         sync.Mutex
	path       string
}

// ResolvePath picks the cache file location for a workspace.
// A workspace with a .git directory keeps its cache inside it; otherwise the cache lives
// under globalDir, keyed by a hash of the workspace path. An empty workspace uses a shared
// global cache.
func ResolvePath(globalDir, workspace string) string {
	if workspace == "" {
		return filepath.Join(globalDir, "global", fileName)
	}

	gitDir := filepath.Join(workspace, ".git")
	if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
		return filepath.Join(gitDir, "pullgod", fileName)
	}

	return filepath.Join(globalDir, hashString(workspace), fileName)
}

func hashString(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

// Open loads the cache at path. A missing or unreadable file yields an empty cache.
func Open(path string) *Cache {
	c := &Cache{
		doc:  newDocument(),
		log:  clog.Default().WithPrefix("cache"),
		path: path,
	}
	c.load()
	return c
}

// New loads the cache for workspace, see ResolvePath.
func New(globalDir, workspace string) *Cache {
	return Open(ResolvePath(globalDir, workspace))
}

func (c *Cache) Path() string {
	return c.path
}

func (c *Cache) load() {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.log.Warn("Failed to read cache, starting empty", "path", c.path, "error", err)
		}
		return
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		c.log.Warn("Cache file is malformed, starting empty", "path", c.path, "error", err)
		return
	}

	if doc.PullRequests != nil {
		c.doc.PullRequests = doc.PullRequests
	}
	if doc.CheckoutTimes != nil {
		c.doc.CheckoutTimes = doc.CheckoutTimes
	}
	c.log.Debug("Loaded cache", "path", c.path, "keys", len(c.doc.PullRequests), "checkouts", len(c.doc.CheckoutTimes))
}

// Get returns the cached pull requests for key, or nil when nothing is cached.
func (c *Cache) Get(key string) []github.PullRequest {
	c.mu.Lock()
	defer c.mu.Unlock()

	prs, ok := c.doc.PullRequests[key]
	if !ok {
		return nil
	}
	return append([]github.PullRequest(nil), prs...)
}

// Set replaces the pull requests stored under key and persists the cache.
func (c *Cache) Set(key string, prs []github.PullRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.doc.PullRequests[key] = append([]github.PullRequest{}, prs...)
	return c.save()
}

// GetLastCheckedOut returns the epoch milliseconds of the last checkout of a pull request,
// or 0 if it was never checked out.
func (c *Cache) GetLastCheckedOut(number int) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc.CheckoutTimes[strconv.Itoa(number)]
}

func (c *Cache) SetLastCheckedOut(number int, epochMillis int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.doc.CheckoutTimes[strconv.Itoa(number)] = epochMillis
	return c.save()
}

// save writes the whole document. Callers hold c.mu.
func (c *Cache) save() error {
	if c.memoryOnly {
		return nil
	}
	if err := c.write(); err != nil {
		c.memoryOnly = true
		c.log.Warn("Failed to write cache, keeping it in memory", "path", c.path, "error", err)
		return &Error{Path: c.path, Err: err}
	}
	return nil
}

func (c *Cache) write() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(c.doc, "", "  ")
	if err != nil {
		return err
	}
	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, payload, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpPath, c.path)
}
