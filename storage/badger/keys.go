package badger

// Key prefixes for different data types
const (
	contentRecordPrefix = "conrec:"
)

// makeContentRecordKey generates a key for a content record by hash.
// Format: prefix:hash
func makeContentRecordKey(hash string) []byte {
	buf := make([]byte, len(contentRecordPrefix)+len(hash))
	offset := copy(buf, contentRecordPrefix)
	copy(buf[offset:], hash)
	return buf
}
