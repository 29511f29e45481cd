package mmap_test

import (
	"crypto/rand"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ostafen/jrecover/internal/mmap"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, data []byte) string {
	path := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func randomBytes(t *testing.T, n int) []byte {
	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}

func TestOpen_MatchesFileContent(t *testing.T) {
	data := randomBytes(t, 3*4096+123)
	path := writeTempFile(t, data)

	mf, err := mmap.Open(path, 0)
	require.NoError(t, err)
	defer mf.Close()

	require.Equal(t, len(data), mf.Len())
	require.Equal(t, data, mf.Bytes())
}

func TestOpen_SizeOverride(t *testing.T) {
	data := randomBytes(t, 10000)
	path := writeTempFile(t, data)

	mf, err := mmap.Open(path, 4096)
	require.NoError(t, err)
	defer mf.Close()

	require.Equal(t, data[:4096], mf.Bytes())

	_, err = mmap.Open(path, int64(len(data))+1)
	require.Error(t, err)

	_, err = mmap.Open(path, -1)
	require.Error(t, err)
}

func TestOpen_EmptyFile(t *testing.T) {
	path := writeTempFile(t, nil)

	mf, err := mmap.Open(path, 0)
	require.NoError(t, err)
	require.Zero(t, mf.Len())
	require.NoError(t, mf.Close())
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := mmap.Open(filepath.Join(t.TempDir(), "missing.img"), 0)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestFile_ReadAt(t *testing.T) {
	data := randomBytes(t, 1000)
	path := writeTempFile(t, data)

	mf, err := mmap.Open(path, 0)
	require.NoError(t, err)
	defer mf.Close()

	buf := make([]byte, 100)
	n, err := mf.ReadAt(buf, 450)
	require.NoError(t, err)
	require.Equal(t, 100, n)
	require.Equal(t, data[450:550], buf)

	n, err = mf.ReadAt(buf, 950)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, 50, n)
	require.Equal(t, data[950:], buf[:n])

	_, err = mf.ReadAt(buf, 1000)
	require.ErrorIs(t, err, io.EOF)
}
