package language

import "bytes"

// sniffSize is how many leading bytes IsBinaryContent inspects.
const sniffSize = 512

// IsBinaryContent reports whether data looks binary: a NUL byte within the
// first 512 bytes.
func IsBinaryContent(data []byte) bool {
	if len(data) > sniffSize {
		data = data[:sniffSize]
	}
	return bytes.IndexByte(data, 0) >= 0
}
