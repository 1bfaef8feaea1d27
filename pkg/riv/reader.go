package riv

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// File is a decoded container backed by its source bytes.
type File struct {
	Data      []byte
	Container *Container
	mmapped   bool
}

// Open maps a container read-only and decodes it. If mmap is unavailable it
// falls back to reading the whole file. Values in the container alias Data,
// so they must not be used after Close.
func Open(path string, opts ...Option) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size64 := stat.Size()
	if size64 > int64(int(^uint(0)>>1)) {
		return nil, errAt(ErrOverflow, 0)
	}
	size := int(size64)
	if size < len(Magic) {
		// too small to map; let the header check classify it
		data, err := readAllAt(f, size)
		if err != nil {
			return nil, err
		}
		return parseFileData(data, false, opts)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		rf, parseErr := parseFileData(data, true, opts)
		if parseErr != nil {
			_ = unix.Munmap(data)
			return nil, parseErr
		}
		return rf, nil
	}

	data, err = readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	return parseFileData(data, false, opts)
}

// OpenReaderAt loads and decodes a container from a random-access reader
// without mmap.
func OpenReaderAt(r io.ReaderAt, size int64, opts ...Option) (*File, error) {
	if size < 0 || size > int64(int(^uint(0)>>1)) {
		return nil, errAt(ErrOverflow, 0)
	}
	data, err := readAllAt(r, int(size))
	if err != nil {
		return nil, err
	}
	return parseFileData(data, false, opts)
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}

func parseFileData(data []byte, mmapped bool, opts []Option) (*File, error) {
	c, err := Decode(data, opts...)
	if err != nil {
		return nil, err
	}
	return &File{Data: data, Container: c, mmapped: mmapped}, nil
}

// Close releases any mmap backing.
func (f *File) Close() error {
	if f == nil || f.Data == nil {
		return nil
	}
	var err error
	if f.mmapped {
		err = unix.Munmap(f.Data)
	}
	f.Data = nil
	f.Container = nil
	f.mmapped = false
	return err
}

// Bytes returns a copy of the source bytes that outlives Close.
func (f *File) Bytes() []byte {
	if f == nil {
		return nil
	}
	out := make([]byte, len(f.Data))
	copy(out, f.Data)
	return out
}
