package snapshot

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hupe1980/memdebug"
	"github.com/hupe1980/memdebug/codec"
	"github.com/hupe1980/memdebug/internal/conv"
	"github.com/hupe1980/memdebug/internal/fs"
	"github.com/hupe1980/memdebug/report"
)

const (
	magic   = "MDSN"
	version = 1
)

var (
	// ErrBadMagic is returned when a stream is not a snapshot.
	ErrBadMagic = errors.New("snapshot: bad magic")
	// ErrUnsupportedVersion is returned for snapshots of a newer format.
	ErrUnsupportedVersion = errors.New("snapshot: unsupported version")
	// ErrUnknownCodec is returned when the header names a codec this build
	// does not know.
	ErrUnknownCodec = errors.New("snapshot: unknown codec")
)

// Entry is the persisted form of one live allocation.
type Entry struct {
	Addr uint64            `json:"addr"`
	Size int               `json:"size"`
	Site memdebug.CallSite `json:"site"`
}

// Snapshot is a point-in-time copy of a live allocation set.
type Snapshot struct {
	Taken   time.Time `json:"taken"`
	Entries []Entry   `json:"entries"`
}

// Capture copies the live records of d.
func Capture(d *memdebug.Debugger) *Snapshot {
	recs := d.Records()
	s := &Snapshot{Taken: time.Now().UTC(), Entries: make([]Entry, len(recs))}
	for i, r := range recs {
		s.Entries[i] = Entry{Addr: uint64(r.Addr), Size: r.Size, Site: r.Site}
	}
	return s
}

// Records returns the entries as records without backing buffers.
func (s *Snapshot) Records() []memdebug.Record {
	if s == nil {
		return nil
	}
	recs := make([]memdebug.Record, len(s.Entries))
	for i, e := range s.Entries {
		recs[i] = memdebug.Record{Addr: uintptr(e.Addr), Size: e.Size, Site: e.Site}
	}
	return recs
}

// Totals returns the byte and allocation totals.
func (s *Snapshot) Totals() report.Totals {
	return report.Sum(s.Records())
}

// WriteHeap writes the sorted heap dump of s to w.
func (s *Snapshot) WriteHeap(w io.Writer, opts report.Options) error {
	return report.WriteSorted(w, s.Records(), opts)
}

type writeOptions struct {
	compression Compression
	codec       codec.Codec
}

// Option configures Write.
type Option func(*writeOptions)

// WithCompression selects the body compression. Defaults to CompressionZSTD.
func WithCompression(c Compression) Option {
	return func(o *writeOptions) {
		o.compression = c
	}
}

// WithCodec selects the body codec.
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *writeOptions) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// Write encodes s to w.
func Write(w io.Writer, s *Snapshot, optFns ...Option) error {
	o := writeOptions{compression: CompressionZSTD, codec: codec.Default}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}

	name := o.codec.Name()
	nameLen, err := conv.IntToUint8(len(name))
	if err != nil {
		return fmt.Errorf("snapshot: codec name %q: %w", name, err)
	}

	body, err := o.codec.Marshal(s)
	if err != nil {
		return fmt.Errorf("snapshot: encode: %w", err)
	}
	block, err := compressBlock(body, o.compression)
	if err != nil {
		return err
	}

	hdr := make([]byte, 0, len(magic)+4+len(name))
	hdr = append(hdr, magic...)
	hdr = binary.LittleEndian.AppendUint16(hdr, version)
	hdr = append(hdr, byte(o.compression), nameLen)
	hdr = append(hdr, name...)

	if _, err := w.Write(hdr); err != nil {
		return err
	}
	_, err = w.Write(block)
	return err
}

// Read decodes a snapshot written by Write.
func Read(r io.Reader) (*Snapshot, error) {
	br := bufio.NewReader(r)

	var fixed [len(magic) + 4]byte
	if _, err := io.ReadFull(br, fixed[:]); err != nil {
		return nil, fmt.Errorf("snapshot: read header: %w", err)
	}
	if string(fixed[:len(magic)]) != magic {
		return nil, ErrBadMagic
	}
	if v := binary.LittleEndian.Uint16(fixed[4:]); v != version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	comp := Compression(fixed[6])

	name := make([]byte, fixed[7])
	if _, err := io.ReadFull(br, name); err != nil {
		return nil, fmt.Errorf("snapshot: read codec name: %w", err)
	}
	c, ok := codec.ByName(string(name))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}

	block, err := io.ReadAll(br)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read body: %w", err)
	}
	body, err := decompressBlock(block, comp)
	if err != nil {
		return nil, err
	}

	var s Snapshot
	if err := c.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}
	return &s, nil
}

// Save writes s to the file at path. The file is written to a temporary
// sibling, synced and renamed into place, so path never holds a partial
// snapshot.
func Save(path string, s *Snapshot, optFns ...Option) error {
	return saveFS(fs.Default, path, s, optFns...)
}

// Load reads the snapshot file at path.
func Load(path string) (*Snapshot, error) {
	return loadFS(fs.Default, path)
}

func saveFS(fsys fs.FileSystem, path string, s *Snapshot, optFns ...Option) (err error) {
	tmp := path + ".tmp"
	f, err := fsys.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = fsys.Remove(tmp)
		}
	}()

	bw := bufio.NewWriter(f)
	if err = Write(bw, s, optFns...); err == nil {
		err = bw.Flush()
	}
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("snapshot: save %s: %w", path, err)
	}
	return fsys.Rename(tmp, path)
}

func loadFS(fsys fs.FileSystem, path string) (*Snapshot, error) {
	f, err := fsys.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}
