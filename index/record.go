package index

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Fingerprint is the hex-encoded SHA-256 of a file's raw bytes.
type Fingerprint string

// Compute returns the fingerprint of content.
func Compute(content []byte) Fingerprint {
	sum := sha256.Sum256(content)
	return Fingerprint(hex.EncodeToString(sum[:]))
}

// Short returns the first 12 characters, for logs.
func (f Fingerprint) Short() string {
	if len(f) > 12 {
		return string(f[:12])
	}
	return string(f)
}

// Status is the outcome of observing a file's current content.
type Status int

const (
	Unchanged Status = iota
	Changed
)

func (s Status) String() string {
	if s == Changed {
		return "changed"
	}
	return "unchanged"
}

// SymbolKind names the structural element a Symbol describes.
type SymbolKind string

const (
	KindFunction  SymbolKind = "function"
	KindMethod    SymbolKind = "method"
	KindClass     SymbolKind = "class"
	KindStruct    SymbolKind = "struct"
	KindInterface SymbolKind = "interface"
	KindEnum      SymbolKind = "enum"
	KindUnion     SymbolKind = "union"
	KindTrait     SymbolKind = "trait"
	KindModule    SymbolKind = "module"
	KindType      SymbolKind = "type"
	KindImport    SymbolKind = "import"
	KindLabel     SymbolKind = "label"
	KindHotkey    SymbolKind = "hotkey"
)

// Symbol is one structural element extracted from a source file.
// Lines are 1-based; EndLine is 0 when unknown.
type Symbol struct {
	Kind      SymbolKind `json:"kind"`
	Name      string     `json:"name"`
	StartLine int        `json:"start_line"`
	EndLine   int        `json:"end_line,omitempty"`
	Signature string     `json:"signature,omitempty"`
	Doc       string     `json:"doc,omitempty"`
}

// Category decides which document section a file is listed in.
type Category int

const (
	CategoryCode Category = iota
	CategoryConfig
	CategoryOther
)

// FileRecord is the indexed state of one file. Owned by its ProjectIndex;
// callers only ever see copies.
type FileRecord struct {
	Path        string      // relative to the project root, forward slashes
	Fingerprint Fingerprint // fingerprint the symbols were computed from
	Size        int64
	ModTime     time.Time
	Language    string
	Category    Category
	Description string // first-line comment of the file, if any
	Symbols     []Symbol
	Failed      bool
	FailReason  string
}

func (r FileRecord) clone() FileRecord {
	if r.Symbols != nil {
		r.Symbols = append([]Symbol(nil), r.Symbols...)
	}
	return r
}

// Extraction carries the result of analysing one version of a file.
type Extraction struct {
	Language    string
	Category    Category
	Description string
	Size        int64
	ModTime     time.Time
	Symbols     []Symbol
}

// Snapshot is a point-in-time copy of a project's records, ordered by path.
type Snapshot struct {
	Root       string
	Files      []FileRecord
	RenderedAt time.Time
}
