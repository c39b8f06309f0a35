package structure

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Scanner reverse-engineers a structure document from an existing
// directory tree: the inverse of planning. Dot-entries are skipped, and so
// are names the schema would reject, so the emitted document always
// validates.
type Scanner struct {
	logger zerolog.Logger
	now    func() time.Time
}

// NewScanner creates a scanner using the wall clock.
func NewScanner(logger zerolog.Logger) *Scanner {
	return &Scanner{
		logger: logger.With().Str("component", "structure-scanner").Logger(),
		now:    time.Now,
	}
}

// Scan walks basePath and builds a current-schema document describing it.
// The project name defaults to the base directory's name.
func (s *Scanner) Scan(basePath, githubUsername string) (Document, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return Document{}, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return Document{}, fmt.Errorf("scan %s: %w", basePath, err)
	}
	if !info.IsDir() {
		return Document{}, fmt.Errorf("scan %s: not a directory", basePath)
	}

	root, err := s.scanDirectory(abs)
	if err != nil {
		return Document{}, err
	}

	today := s.now().Format("2006-01-02")
	return Document{
		Metadata: Metadata{
			ProjectName:    projectNameFor(filepath.Base(abs)),
			GithubUsername: githubUsername,
			Version:        "1.0.0",
			SchemaVersion:  CurrentSchemaVersion,
			CreatedDate:    today,
			UpdatedDate:    today,
		},
		Structure: root,
	}, nil
}

// scanDirectory builds the node for one directory level. A directory whose
// visible entries are all files becomes a file list; anything else becomes
// a directory node whose file-only children are file lists.
func (s *Scanner) scanDirectory(dir string) (*Node, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	node := NewDirectory()
	var files []string
	sawSubdir := false

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		if entry.IsDir() {
			if !dirNamePattern.MatchString(name) {
				s.logger.Warn().Str("name", name).Str("dir", dir).Msg("skipping directory with unrepresentable name")
				continue
			}
			child, err := s.scanDirectory(filepath.Join(dir, name))
			if err != nil {
				return nil, err
			}
			node.AddChild(name, child)
			sawSubdir = true
			continue
		}

		if !fileNamePattern.MatchString(name) {
			s.logger.Warn().Str("name", name).Str("dir", dir).Msg("skipping file with unrepresentable name")
			continue
		}
		files = append(files, name)
	}

	if !sawSubdir {
		return NewFileList(files...), nil
	}

	// A node is either a directory map or a file list, never both, so loose
	// files next to subdirectories cannot be expressed at this level.
	if len(files) > 0 {
		s.logger.Warn().
			Str("dir", dir).
			Strs("files", files).
			Msg("directory mixes files and subdirectories; loose files not representable")
	}

	return node, nil
}

// projectNameFor coerces a directory name into a valid project name,
// falling back to a constant when nothing salvageable remains.
func projectNameFor(base string) string {
	if dirNamePattern.MatchString(base) {
		return base
	}
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, base)
	cleaned = strings.TrimLeft(cleaned, "-_0123456789")
	if cleaned == "" {
		return "scanned-project"
	}
	return cleaned
}
