package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/newsimport/core"
)

// ContentRecordMUS is the mus-go serializer for core.ContentRecord.
// Fields are written in declaration order; times are stored as UTC
// nanoseconds behind a presence flag.
var ContentRecordMUS = contentRecordSer{}

type contentRecordSer struct{}

// MarshalContentRecord serializes a ContentRecord to bytes.
func MarshalContentRecord(record *core.ContentRecord) []byte {
	buf := make([]byte, ContentRecordMUS.Size(*record))
	ContentRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalContentRecord deserializes a ContentRecord from bytes.
func UnmarshalContentRecord(data []byte) (*core.ContentRecord, error) {
	record, n, err := ContentRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrSerializationFailed, len(data)-n)
	}
	return &record, nil
}

func (contentRecordSer) Marshal(v core.ContentRecord, bs []byte) (n int) {
	w := writer{bs: bs}
	w.str(v.ImporterID)
	w.int64(v.FeedID)
	w.int64(v.QueryID)
	w.str(v.ImporterDesc)
	w.str(v.ObjectSource)
	w.str(v.SourceName)
	w.str(v.SourceURL)
	w.str(v.Title)
	w.str(v.Description)
	w.str(v.BodyContent)
	w.str(v.CanonicalURL)
	w.str(v.ImageURL)
	w.time(&v.ImportTimestamp)
	w.str(v.ContentHash)
	w.strs(v.Authors)
	w.strs(v.Categories)
	w.time(v.PublishedAt)
	w.str(v.Username)
	return w.n
}

func (contentRecordSer) Unmarshal(bs []byte) (v core.ContentRecord, n int, err error) {
	r := reader{bs: bs}
	v.ImporterID = r.str()
	v.FeedID = r.int64()
	v.QueryID = r.int64()
	v.ImporterDesc = r.str()
	v.ObjectSource = r.str()
	v.SourceName = r.str()
	v.SourceURL = r.str()
	v.Title = r.str()
	v.Description = r.str()
	v.BodyContent = r.str()
	v.CanonicalURL = r.str()
	v.ImageURL = r.str()
	if ts := r.time(); ts != nil {
		v.ImportTimestamp = *ts
	}
	v.ContentHash = r.str()
	v.Authors = r.strs()
	v.Categories = r.strs()
	v.PublishedAt = r.time()
	v.Username = r.str()
	return v, r.n, r.err
}

func (contentRecordSer) Size(v core.ContentRecord) (size int) {
	size += ord.String.Size(v.ImporterID)
	size += varint.Int64.Size(v.FeedID)
	size += varint.Int64.Size(v.QueryID)
	for _, s := range []string{
		v.ImporterDesc, v.ObjectSource, v.SourceName, v.SourceURL, v.Title,
		v.Description, v.BodyContent, v.CanonicalURL, v.ImageURL,
	} {
		size += ord.String.Size(s)
	}
	size += timeSize(&v.ImportTimestamp)
	size += ord.String.Size(v.ContentHash)
	size += stringsSize(v.Authors)
	size += stringsSize(v.Categories)
	size += timeSize(v.PublishedAt)
	size += ord.String.Size(v.Username)
	return size
}

func timeSize(t *time.Time) int {
	if t == nil || t.IsZero() {
		return ord.Bool.Size(false)
	}
	return ord.Bool.Size(true) + varint.Int64.Size(t.UnixNano())
}

func stringsSize(ss []string) int {
	size := varint.Int.Size(len(ss))
	for _, s := range ss {
		size += ord.String.Size(s)
	}
	return size
}

type writer struct {
	bs []byte
	n  int
}

func (w *writer) str(s string) {
	w.n += ord.String.Marshal(s, w.bs[w.n:])
}

func (w *writer) int64(i int64) {
	w.n += varint.Int64.Marshal(i, w.bs[w.n:])
}

func (w *writer) strs(ss []string) {
	w.n += varint.Int.Marshal(len(ss), w.bs[w.n:])
	for _, s := range ss {
		w.str(s)
	}
}

// time writes a presence flag followed by the instant; zero counts as absent.
func (w *writer) time(t *time.Time) {
	present := t != nil && !t.IsZero()
	w.n += ord.Bool.Marshal(present, w.bs[w.n:])
	if present {
		w.int64(t.UnixNano())
	}
}

// reader decodes sequentially and stops at the first error.
type reader struct {
	bs  []byte
	n   int
	err error
}

func (r *reader) str() string {
	if r.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

func (r *reader) int64() int64 {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Int64.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

func (r *reader) strs() []string {
	if r.err != nil {
		return nil
	}
	l, n, err := varint.Int.Unmarshal(r.bs[r.n:])
	r.n += n
	if err != nil {
		r.err = err
		return nil
	}
	if l < 0 || l > len(r.bs)-r.n {
		r.err = ErrTruncatedData
		return nil
	}
	ss := make([]string, 0, l)
	for range l {
		s := r.str()
		if r.err != nil {
			return nil
		}
		ss = append(ss, s)
	}
	return ss
}

func (r *reader) time() *time.Time {
	if r.err != nil {
		return nil
	}
	present, n, err := ord.Bool.Unmarshal(r.bs[r.n:])
	r.n += n
	if err != nil {
		r.err = err
		return nil
	}
	if !present {
		return nil
	}
	nanos := r.int64()
	if r.err != nil {
		return nil
	}
	t := time.Unix(0, nanos).UTC()
	return &t
}
