// Package textenc classifies and repairs text that has been damaged by
// decoding windows-1251 (the legacy codec of pre-existing launch scripts)
// as Latin-1/UTF-8, and reads script files with an encoding-aware two-pass
// strategy. All repair is best-effort: a failed repair returns the input
// unchanged, never something worse.
package textenc

import (
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/eastway/batchlaunch/internal/metrics"
)

// Known literal garbled-sequence -> correct-sequence substitutions.
// These cover mojibake punctuation produced by double-encoded UTF-8 that
// byte-level reinterpretation cannot recover. Longer sequences first so a
// shorter prefix never eats a longer match.
var garbledSeqs = [][2]string{
	{"â€™", "'"},      // right single quote
	{"â€œ", "\""},     // left double quote
	{"â€\u009d", "\""},     // right double quote
	{"â€“", "–"}, // en dash
	{"â€”", "—"}, // em dash
	{"â€¦", "…"}, // ellipsis
	{"Â«", "«"},       // left guillemet
	{"Â»", "»"},       // right guillemet
	{"Â ", " "},            // non-breaking space artifact
}

// IsCorrupted reports whether s carries the signature of a broken decode.
// Three independent heuristics are OR'd together: double-encoding artifact
// pairs, runs of replacement markers, and runs of accented Latin that are
// the classic shape of windows-1251 Cyrillic misread as Latin-1.
func IsCorrupted(s string) bool {
	var (
		prev        rune = -1
		fffdRun     int
		accentedRun int
	)
	for _, r := range s {
		// (1) double-encoding artifacts: a UTF-8 lead byte decoded as a
		// standalone rune followed by a continuation-range rune, or two
		// lead runes in a row.
		if isArtifactLead(prev) && (isArtifactLead(r) || isContinuationRange(r)) {
			return true
		}
		// (2) consecutive replacement markers.
		if r == utf8.RuneError {
			fffdRun++
			if fffdRun >= 2 {
				return true
			}
		} else {
			fffdRun = 0
		}
		// (3) runs of the accented-Latin block (windows-1251 Cyrillic bytes
		// seen through Latin-1).
		if r >= 0x00C0 && r <= 0x00FF {
			accentedRun++
			if accentedRun >= 3 {
				return true
			}
		} else {
			accentedRun = 0
		}
		prev = r
	}
	return false
}

// isArtifactLead matches the Latin-1 view of common UTF-8 lead bytes:
// 0xC2, 0xC3 (Latin-1 block), 0xD0, 0xD1 (Cyrillic block), 0xE2
// (general punctuation).
func isArtifactLead(r rune) bool {
	return r == 0x00C2 || r == 0x00C3 || r == 0x00D0 || r == 0x00D1 || r == 0x00E2
}

// isContinuationRange matches the Latin-1 view of UTF-8 continuation bytes
// 0x80..0xBF, plus the windows-1252 punctuation those bytes become in
// mixed decodes.
func isContinuationRange(r rune) bool {
	if r >= 0x0080 && r <= 0x00BF {
		return true
	}
	switch r {
	case '€', '‚', '„', '…', '†', '‡',
		'‰', '‹', '‘', '’', '“', '”',
		'–', '—', '™', '›', 'œ', '\u009d':
		return true
	}
	return false
}

// HasCyrillic reports whether s contains at least one rune from the
// Cyrillic block.
func HasCyrillic(s string) bool {
	for _, r := range s {
		if r >= 0x0400 && r <= 0x04FF {
			return true
		}
	}
	return false
}

// Repair attempts to recover readable text from s. Clean input is returned
// unchanged, which makes Repair idempotent. The byte-level pass is only
// accepted when it yields Cyrillic and clears the corruption heuristics;
// otherwise the substitution table is tried; otherwise s comes back as-is.
func Repair(s string) string {
	if !IsCorrupted(s) {
		return s
	}
	if b, ok := singleByteView(s); ok {
		if dec, err := charmap.Windows1251.NewDecoder().Bytes(b); err == nil {
			out := string(dec)
			if HasCyrillic(out) && !IsCorrupted(out) {
				metrics.IncEncodingRepair()
				return out
			}
		}
	}
	out := s
	for _, sub := range garbledSeqs {
		out = strings.ReplaceAll(out, sub[0], sub[1])
	}
	if out != s && !IsCorrupted(out) {
		metrics.IncEncodingRepair()
		return out
	}
	return s
}

// singleByteView recovers the original byte stream of a string that was
// produced by decoding single-byte data as Latin-1: every rune below
// 0x100 maps back to one byte. Returns ok=false when any rune does not fit.
func singleByteView(s string) ([]byte, bool) {
	b := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xFF {
			return nil, false
		}
		b = append(b, byte(r))
	}
	return b, true
}

// ReadFileAuto reads a script file, decoding UTF-8 first and falling back
// to windows-1251 only when the first pass looks corrupted. The fallback
// is kept only when it strictly improves the result; the original decode
// is preferred otherwise, even if it is still imperfect.
func ReadFileAuto(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return DecodeAuto(b), nil
}

// DecodeAuto applies the two-pass decode strategy to raw bytes. Valid but
// corrupted UTF-8 goes through Repair (its original bytes are the Latin-1
// view, not the raw stream); invalid UTF-8 is re-decoded as windows-1251
// and kept only when that strictly improves the result.
func DecodeAuto(b []byte) string {
	first := string(b)
	if utf8.Valid(b) {
		if IsCorrupted(first) {
			return Repair(first)
		}
		return first
	}
	dec, err := charmap.Windows1251.NewDecoder().Bytes(b)
	if err != nil {
		return first
	}
	second := string(dec)
	if HasCyrillic(second) && !IsCorrupted(second) {
		return second
	}
	return first
}

// EncodeScript renders script text to bytes for writing to disk. ASCII-only
// text is written as-is; text carrying non-ASCII runes is encoded to
// windows-1251 when the codec can represent it, so legacy tooling reads
// the comments correctly. Falls back to UTF-8 bytes on any encode error.
func EncodeScript(s string) []byte {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return []byte(s)
	}
	if enc, err := charmap.Windows1251.NewEncoder().Bytes([]byte(s)); err == nil {
		return enc
	}
	return []byte(s)
}
