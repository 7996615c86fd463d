package ignore

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
)

const defaultMaxFileSize = 1024 * 1024

// Matcher decides which paths of a project take part in indexing. It combines
// default patterns, .gitignore and .claudeignore rules, configured exclude and
// include globs, a depth limit and the generated document itself.
// Thread-safe: Reload() acquires a write lock, the checks acquire a read lock.
type Matcher struct {
	mu               sync.RWMutex
	rootDir          string
	gitIgnore        gitignore.GitIgnore
	claudeIgnore     gitignore.GitIgnore
	excludePatterns  []string
	includePatterns  []string
	configFiles      map[string]bool
	maxFileSizeBytes int64
	maxDepth         int
	outputFile       string
}

// MatcherOptions configures the ignore matcher.
type MatcherOptions struct {
	RootDir string
	// ExcludePatterns without "/" match any path component; with "/" they
	// match the relative path or one of its parent directories.
	ExcludePatterns []string
	// IncludePatterns restrict indexed files; empty means every file.
	IncludePatterns  []string
	ConfigFiles      []string
	MaxFileSizeBytes int64
	MaxDepth         int    // directory levels below the root; 0 means unlimited
	OutputFile       string // generated document, relative to the root
}

// NewMatcher creates a matcher for one project root.
func NewMatcher(options MatcherOptions) *Matcher {
	matcher := &Matcher{
		rootDir:          options.RootDir,
		excludePatterns:  options.ExcludePatterns,
		includePatterns:  options.IncludePatterns,
		configFiles:      make(map[string]bool, len(options.ConfigFiles)),
		maxFileSizeBytes: options.MaxFileSizeBytes,
		maxDepth:         options.MaxDepth,
		outputFile:       filepath.ToSlash(options.OutputFile),
	}
	if matcher.maxFileSizeBytes <= 0 {
		matcher.maxFileSizeBytes = defaultMaxFileSize
	}
	for _, name := range options.ConfigFiles {
		matcher.configFiles[name] = true
	}

	matcher.gitIgnore = loadIgnoreFile(filepath.Join(options.RootDir, ".gitignore"), options.RootDir)
	matcher.claudeIgnore = loadIgnoreFile(filepath.Join(options.RootDir, ".claudeignore"), options.RootDir)
	return matcher
}

// RootDir returns the project root.
func (m *Matcher) RootDir() string {
	return m.rootDir
}

// Relative converts an absolute path into the slash-separated path relative
// to the root. ok is false for paths outside the root.
func (m *Matcher) Relative(absolutePath string) (string, bool) {
	relativePath, err := filepath.Rel(m.rootDir, absolutePath)
	if err != nil {
		return "", false
	}
	relativePath = filepath.ToSlash(relativePath)
	if relativePath == ".." || strings.HasPrefix(relativePath, "../") {
		return "", false
	}
	return relativePath, true
}

// ShouldIgnore reports whether a file should be left out of the index.
func (m *Matcher) ShouldIgnore(absolutePath string) bool {
	relativePath, ok := m.Relative(absolutePath)
	if !ok || relativePath == "." {
		return true
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.outputFile != "" && relativePath == m.outputFile {
		return true
	}
	if m.maxDepth > 0 && strings.Count(relativePath, "/") > m.maxDepth {
		return true
	}
	if m.isExcluded(relativePath, absolutePath) {
		return true
	}
	return !m.includes(relativePath)
}

// ShouldIgnoreDir reports whether a directory should be pruned from
// traversal. Include patterns are not consulted, since they describe files.
func (m *Matcher) ShouldIgnoreDir(absolutePath string) bool {
	if prunedDirNames[filepath.Base(absolutePath)] {
		return true
	}
	relativePath, ok := m.Relative(absolutePath)
	if !ok {
		return true
	}
	if relativePath == "." {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.maxDepth > 0 && strings.Count(relativePath, "/")+1 > m.maxDepth {
		return true
	}
	return m.isExcluded(relativePath, absolutePath)
}

// Includes reports whether a relative file path matches the include globs.
func (m *Matcher) Includes(relativePath string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.includes(relativePath)
}

func (m *Matcher) includes(relativePath string) bool {
	if len(m.includePatterns) == 0 {
		return true
	}
	for _, pattern := range m.includePatterns {
		if matched, _ := doublestar.Match(pattern, relativePath); matched {
			return true
		}
	}
	return false
}

func (m *Matcher) isExcluded(relativePath, absolutePath string) bool {
	if m.matchesDefaultPatterns(relativePath) {
		return true
	}

	// Relative() on the gitignore rules does not require the path to exist.
	isDir := false
	if info, err := os.Stat(absolutePath); err == nil {
		isDir = info.IsDir()
	}
	if m.ignoredByFiles(relativePath, isDir) {
		return true
	}
	// A rule such as "gen/" only matches the directory itself, so the
	// parents are checked too.
	for i := range len(relativePath) {
		if relativePath[i] == '/' && m.ignoredByFiles(relativePath[:i], true) {
			return true
		}
	}
	return m.matchesExcludePatterns(relativePath)
}

func (m *Matcher) ignoredByFiles(relativePath string, isDir bool) bool {
	if m.gitIgnore != nil {
		if match := m.gitIgnore.Relative(relativePath, isDir); match != nil && match.Ignore() {
			return true
		}
	}
	if m.claudeIgnore != nil {
		if match := m.claudeIgnore.Relative(relativePath, isDir); match != nil && match.Ignore() {
			return true
		}
	}
	return false
}

// IsConfigFile reports whether the path names a recognized configuration file.
func (m *Matcher) IsConfigFile(relativePath string) bool {
	return m.configFiles[filepath.Base(relativePath)]
}

// IsIgnoreFile reports whether the path is one of the ignore files loaded
// by the matcher, so a change to it calls for Reload.
func (m *Matcher) IsIgnoreFile(relativePath string) bool {
	return relativePath == ".gitignore" || relativePath == ".claudeignore"
}

// IsFileTooLarge returns true if the file exceeds the max file size limit.
func (m *Matcher) IsFileTooLarge(fileSize int64) bool {
	return fileSize > m.maxFileSizeBytes
}

// MaxFileSizeBytes returns the configured maximum file size.
func (m *Matcher) MaxFileSizeBytes() int64 {
	return m.maxFileSizeBytes
}

// matchesDefaultPatterns checks the built-in patterns, case-insensitively.
func (m *Matcher) matchesDefaultPatterns(relativePath string) bool {
	lowerPath := strings.ToLower(relativePath)
	parts := strings.Split(lowerPath, "/")
	baseName := parts[len(parts)-1]

	for _, pattern := range DefaultIgnorePatterns {
		pattern = strings.ToLower(pattern)
		if !strings.ContainsAny(pattern, "*?[") {
			for _, part := range parts {
				if part == pattern {
					return true
				}
			}
			continue
		}
		if matched, _ := filepath.Match(pattern, baseName); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, lowerPath); matched {
			return true
		}
	}
	return false
}

// matchesExcludePatterns checks the configured exclude globs.
func (m *Matcher) matchesExcludePatterns(relativePath string) bool {
	parts := strings.Split(relativePath, "/")
	for _, pattern := range m.excludePatterns {
		if !strings.Contains(pattern, "/") {
			for _, part := range parts {
				if matched, _ := doublestar.Match(pattern, part); matched {
					return true
				}
			}
			continue
		}
		pattern = strings.TrimPrefix(strings.TrimSuffix(pattern, "/"), "/")
		for i := range parts {
			prefix := strings.Join(parts[:i+1], "/")
			if matched, _ := doublestar.Match(pattern, prefix); matched {
				return true
			}
		}
	}
	return false
}

// Reload re-reads .gitignore and .claudeignore files from disk.
func (m *Matcher) Reload() {
	newGitIgnore := loadIgnoreFile(filepath.Join(m.rootDir, ".gitignore"), m.rootDir)
	newClaudeIgnore := loadIgnoreFile(filepath.Join(m.rootDir, ".claudeignore"), m.rootDir)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.gitIgnore = newGitIgnore
	m.claudeIgnore = newClaudeIgnore
}

// loadIgnoreFile reads an ignore file through an io.Reader so the handle is
// closed before returning.
func loadIgnoreFile(filePath string, baseDir string) gitignore.GitIgnore {
	f, err := os.Open(filePath)
	if err != nil {
		return nil
	}
	defer f.Close()
	return gitignore.New(f, baseDir, nil)
}
