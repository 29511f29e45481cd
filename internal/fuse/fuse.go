//go:build linux
// +build linux

package fuse

import (
	"context"
	"io"
	"os"
	"sort"
	"time"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	"github.com/ostafen/jrecover/internal/format"
)

type FileEntry struct {
	Name   string
	Inode  uint64
	Offset int64
	Size   int64
}

// RecoverFS is a flat, read-only directory holding one file per candidate.
// Entries never change after construction.
type RecoverFS struct {
	r       io.ReaderAt
	entries map[string]FileEntry
	names   []string
	mtime   time.Time
}

func NewRecoverFS(r io.ReaderAt, candidates []format.Candidate) *RecoverFS {
	entries := make(map[string]FileEntry, len(candidates))
	for _, c := range candidates {
		entries[c.Name()] = FileEntry{
			Name:   c.Name(),
			Offset: int64(c.Start),
			Size:   int64(c.Size()),
		}
	}

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	// Inode 1 is the root.
	for i, name := range names {
		e := entries[name]
		e.Inode = uint64(i) + 2
		entries[name] = e
	}

	return &RecoverFS{
		r:       r,
		entries: entries,
		names:   names,
		mtime:   time.Now(),
	}
}

func (fs *RecoverFS) Root() (fs.Node, error) {
	return &Dir{
		fs: fs,
	}, nil
}

// Dir implements both fs.Node and fs.HandleReadDirAller
type Dir struct {
	fs *RecoverFS
}

func (*Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Inode = 1
	a.Mode = os.ModeDir | 0555
	return nil
}

func (d *Dir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	if e, ok := d.fs.entries[name]; ok {
		return &File{
			r:     io.NewSectionReader(d.fs.r, e.Offset, e.Size),
			entry: e,
			mtime: d.fs.mtime,
		}, nil
	}
	return nil, fuse.ENOENT
}

func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	dirEntries := make([]fuse.Dirent, len(d.fs.names))
	for i, name := range d.fs.names {
		dirEntries[i] = fuse.Dirent{
			Inode: d.fs.entries[name].Inode,
			Name:  name,
			Type:  fuse.DT_File,
		}
	}
	return dirEntries, nil
}

// File implements both fs.Node and fs.HandleReader
type File struct {
	r     io.ReaderAt
	entry FileEntry
	mtime time.Time
}

func (f *File) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Inode = f.entry.Inode
	a.Mode = 0444
	a.Size = uint64(f.entry.Size)
	a.Mtime = f.mtime
	return nil
}

func (f *File) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	size := int64(req.Size)
	offset := req.Offset

	if offset >= f.entry.Size {
		resp.Data = []byte{}
		return nil
	}

	// Clamp size if reading near EOF
	size = min(size, f.entry.Size-offset)

	buf := make([]byte, size)

	n, err := f.r.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return err
	}

	resp.Data = buf[:n]
	return nil
}
