package resource

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"mime"
	"path"
	"sync"
	"time"
)

type memFile struct {
	data        []byte
	contentType string
	modTime     time.Time
}

// MemorySource holds content in memory.
type MemorySource struct {
	mu    sync.RWMutex
	files map[string]memFile
}

// NewMemorySource creates an empty source.
func NewMemorySource() *MemorySource {
	return &MemorySource{files: make(map[string]memFile)}
}

// Put stores data under name. An empty contentType is derived from the
// file extension.
func (s *MemorySource) Put(name, contentType string, data []byte) {
	if contentType == "" {
		contentType = typeByName(name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = memFile{
		data:        bytes.Clone(data),
		contentType: contentType,
		modTime:     time.Now().UTC(),
	}
}

// Delete removes name.
func (s *MemorySource) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, name)
}

// Open implements Source.
func (s *MemorySource) Open(_ context.Context, name string) (io.ReadCloser, Meta, error) {
	s.mu.RLock()
	f, ok := s.files[name]
	s.mu.RUnlock()
	if !ok {
		return nil, Meta{}, ErrNotFound
	}
	meta := Meta{ContentType: f.contentType, Size: int64(len(f.data)), ModTime: f.modTime}
	return io.NopCloser(bytes.NewReader(f.data)), meta, nil
}

// FSSource serves content from a file system, typically os.DirFS.
type FSSource struct {
	fsys fs.FS
}

// NewFSSource creates a source over fsys.
func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{fsys: fsys}
}

// Open implements Source.
func (s *FSSource) Open(_ context.Context, name string) (io.ReadCloser, Meta, error) {
	if !fs.ValidPath(name) {
		return nil, Meta{}, ErrNotFound
	}
	f, err := s.fsys.Open(name)
	if err != nil {
		return nil, Meta{}, ErrNotFound
	}
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		f.Close()
		return nil, Meta{}, ErrNotFound
	}
	return f, Meta{ContentType: typeByName(name), Size: info.Size(), ModTime: info.ModTime()}, nil
}

func typeByName(name string) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
