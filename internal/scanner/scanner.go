// Package scanner walks directory trees recovering account candidates
// from pre-existing launch scripts. Scanning is always best-effort: depth
// and count ceilings stop collection silently, and per-entry failures are
// logged and skipped without aborting the walk.
package scanner

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/eastway/batchlaunch/internal/account"
	"github.com/eastway/batchlaunch/internal/metrics"
	"github.com/eastway/batchlaunch/internal/script"
	"github.com/eastway/batchlaunch/internal/textenc"
)

const (
	DefaultMaxDepth      = 5
	DefaultMaxCandidates = 200
)

// Scanner collects parseable launch scripts into account candidates.
type Scanner struct {
	MaxDepth      int
	MaxCandidates int
}

// New returns a Scanner with the given ceilings; non-positive values fall
// back to the defaults.
func New(maxDepth, maxCandidates int) *Scanner {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}
	return &Scanner{MaxDepth: maxDepth, MaxCandidates: maxCandidates}
}

// Scan walks root and returns every complete candidate found, bounded by
// the scanner's ceilings. It never returns an error: an unreadable root
// simply yields no candidates.
func (s *Scanner) Scan(root string) []account.Candidate {
	var out []account.Candidate
	s.walk(root, 0, &out)
	return out
}

func (s *Scanner) walk(dir string, depth int, out *[]account.Candidate) {
	if depth > s.MaxDepth || len(*out) >= s.MaxCandidates {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Warn("scan: skipping unreadable directory", "dir", dir, "error", err)
		return
	}
	for _, e := range entries {
		if len(*out) >= s.MaxCandidates {
			return
		}
		full := filepath.Join(dir, e.Name())
		if e.IsDir() {
			s.walk(full, depth+1, out)
			continue
		}
		if !strings.EqualFold(filepath.Ext(e.Name()), script.Extension) {
			continue
		}
		if c, ok := s.scanFile(full); ok {
			*out = append(*out, c)
			metrics.IncScanCandidate()
		}
	}
}

// scanFile decodes and parses one script; incomplete candidates are
// dropped silently, read failures are logged and skipped.
func (s *Scanner) scanFile(path string) (account.Candidate, bool) {
	metrics.IncScanFile()
	text, err := textenc.ReadFileAuto(path)
	if err != nil {
		slog.Warn("scan: cannot read script", "path", path, "error", err)
		return account.Candidate{}, false
	}
	c := script.Parse(text)
	if !c.Complete() {
		return account.Candidate{}, false
	}
	c.Login = textenc.Repair(c.Login)
	c.Character = textenc.Repair(c.Character)
	c.Description = textenc.Repair(c.Description)
	c.Owner = textenc.Repair(c.Owner)
	c.SourcePath = path
	return c, true
}
