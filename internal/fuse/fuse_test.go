//go:build linux

package fuse

import (
	"bytes"
	"context"
	"testing"

	"bazil.org/fuse"
	"github.com/ostafen/jrecover/internal/format"
	"github.com/stretchr/testify/require"
)

func TestRecoverFS(t *testing.T) {
	data := bytes.Repeat([]byte("abcdefghij"), 100)
	candidates := []format.Candidate{
		{Start: 500, End: 700},
		{Start: 10, End: 110},
	}

	rfs := NewRecoverFS(bytes.NewReader(data), candidates)
	root, err := rfs.Root()
	require.NoError(t, err)

	dir := root.(*Dir)
	ctx := context.Background()

	dirents, err := dir.ReadDirAll(ctx)
	require.NoError(t, err)
	require.Len(t, dirents, 2)
	require.Equal(t, "recover-10-110.jpeg", dirents[0].Name)
	require.Equal(t, "recover-500-700.jpeg", dirents[1].Name)

	_, err = dir.Lookup(ctx, "missing.jpeg")
	require.ErrorIs(t, err, fuse.ENOENT)

	node, err := dir.Lookup(ctx, "recover-500-700.jpeg")
	require.NoError(t, err)
	f := node.(*File)

	var attr fuse.Attr
	require.NoError(t, f.Attr(ctx, &attr))
	require.EqualValues(t, 200, attr.Size)
	require.Equal(t, dirents[1].Inode, attr.Inode)

	var resp fuse.ReadResponse
	require.NoError(t, f.Read(ctx, &fuse.ReadRequest{Offset: 150, Size: 100}, &resp))
	require.Equal(t, data[650:700], resp.Data)

	require.NoError(t, f.Read(ctx, &fuse.ReadRequest{Offset: 200, Size: 10}, &resp))
	require.Empty(t, resp.Data)
}
