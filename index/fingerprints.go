package index

// FingerprintStore maps relative paths to the fingerprint last observed for them.
// It is plain data; ProjectIndex serializes access to it.
type FingerprintStore struct {
	byPath map[string]Fingerprint
}

// NewFingerprintStore creates an empty store.
func NewFingerprintStore() *FingerprintStore {
	return &FingerprintStore{byPath: make(map[string]Fingerprint)}
}

// Get returns the stored fingerprint for path.
func (s *FingerprintStore) Get(path string) (Fingerprint, bool) {
	fp, ok := s.byPath[path]
	return fp, ok
}

// Set records fp for path.
func (s *FingerprintStore) Set(path string, fp Fingerprint) {
	s.byPath[path] = fp
}

// Delete forgets path.
func (s *FingerprintStore) Delete(path string) {
	delete(s.byPath, path)
}

// Len returns the number of tracked paths.
func (s *FingerprintStore) Len() int {
	return len(s.byPath)
}

// Compare reports whether content differs from what is stored for path.
func (s *FingerprintStore) Compare(path string, content []byte) (Status, Fingerprint) {
	fp := Compute(content)
	if current, ok := s.byPath[path]; ok && current == fp {
		return Unchanged, fp
	}
	return Changed, fp
}
