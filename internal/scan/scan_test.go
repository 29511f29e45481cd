package scan

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ostafen/jrecover/internal/format"
	"github.com/ostafen/jrecover/pkg/dfxml"
	"github.com/stretchr/testify/require"
)

var testBounds = format.Bounds{MinSize: 256, MaxSize: 64 * 1024}

func testJPEG(tag string, payloadSize int, fill byte) []byte {
	b := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10}
	b = append(b, tag...)
	b = append(b, bytes.Repeat([]byte{fill}, payloadSize)...)
	return append(b, 0xff, 0xd9)
}

// writeImage lays out the given files separated by zero gaps and returns the
// image path along with the expected candidates.
func writeImage(t *testing.T, files ...[]byte) (string, []format.Candidate) {
	var (
		img      []byte
		expected []format.Candidate
	)
	for i, f := range files {
		img = append(img, make([]byte, 1000*(i+1))...)
		expected = append(expected, format.Candidate{Start: len(img), End: len(img) + len(f)})
		img = append(img, f...)
	}
	img = append(img, make([]byte, 777)...)

	path := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, os.WriteFile(path, img, 0644))
	return path, expected
}

func TestScan(t *testing.T) {
	files := [][]byte{
		testJPEG("JFIF", 1000, 0x11),
		testJPEG("Exif", 5000, 0x22),
		testJPEG("JFIF", 10, 0x33), // too small
		testJPEG("Exif", 3000, 0x44),
	}
	path, expected := writeImage(t, files...)
	expected = append(expected[:2], expected[3])

	outDir := filepath.Join(t.TempDir(), "out")

	summary, err := Scan(path, Options{
		OutputDir:  outDir,
		Bounds:     testBounds,
		DisableLog: true,
	})
	require.NoError(t, err)
	require.Equal(t, expected, summary.Recovered)

	for i, c := range summary.Recovered {
		data, err := os.ReadFile(filepath.Join(outDir, c.Name()))
		require.NoError(t, err)

		idx := i
		if i == 2 {
			idx = 3
		}
		require.Equal(t, files[idx], data)
	}

	reportFile, err := os.Open(summary.ReportFile)
	require.NoError(t, err)
	defer reportFile.Close()

	objs, err := dfxml.ReadFileObjects(reportFile)
	require.NoError(t, err)
	require.Len(t, objs, len(expected))
	for i, o := range objs {
		require.Equal(t, expected[i].Name(), o.Filename)
		require.EqualValues(t, expected[i].Start, o.ByteRuns.Runs[0].ImgOffset)
		require.EqualValues(t, expected[i].Size(), o.FileSize)
	}
}

func TestScan_Idempotent(t *testing.T) {
	path, _ := writeImage(t,
		testJPEG("JFIF", 2000, 0x10),
		testJPEG("Exif", 2000, 0x20),
	)

	run := func() map[string][]byte {
		outDir := t.TempDir()
		summary, err := Scan(path, Options{
			OutputDir:  outDir,
			ReportFile: filepath.Join(t.TempDir(), "report.xml"),
			Bounds:     testBounds,
			DisableLog: true,
		})
		require.NoError(t, err)
		require.Len(t, summary.Recovered, 2)

		entries, err := os.ReadDir(outDir)
		require.NoError(t, err)

		files := make(map[string][]byte, len(entries))
		for _, e := range entries {
			data, err := os.ReadFile(filepath.Join(outDir, e.Name()))
			require.NoError(t, err)
			files[e.Name()] = data
		}
		return files
	}

	first := run()
	require.Len(t, first, 2)
	require.Equal(t, first, run())
}

func TestScan_SizeOverride(t *testing.T) {
	path, expected := writeImage(t,
		testJPEG("JFIF", 2000, 0x10),
		testJPEG("Exif", 2000, 0x20),
	)

	summary, err := Scan(path, Options{
		OutputDir:    t.TempDir(),
		SizeOverride: int64(expected[1].Start),
		Bounds:       testBounds,
		NoDump:       true,
		DisableLog:   true,
	})
	require.NoError(t, err)
	require.Equal(t, expected[:1], summary.Recovered)
}

func TestScan_WritesLog(t *testing.T) {
	path, _ := writeImage(t, testJPEG("JFIF", 2000, 0x10))
	outDir := t.TempDir()

	summary, err := Scan(path, Options{
		OutputDir: outDir,
		Bounds:    testBounds,
	})
	require.NoError(t, err)
	require.NotEmpty(t, summary.LogFile)

	data, err := os.ReadFile(summary.LogFile)
	require.NoError(t, err)
	require.Contains(t, string(data), "jpeg recovered")
}

func TestScan_FatalErrors(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "missing.img"), Options{
		OutputDir: t.TempDir(),
		Bounds:    testBounds,
	})
	require.Error(t, err)
	require.True(t, IsFatal(err))
	require.ErrorIs(t, err, os.ErrNotExist)

	path, _ := writeImage(t, testJPEG("JFIF", 2000, 0x10))

	notADir := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(notADir, nil, 0644))

	_, err = Scan(path, Options{
		OutputDir:  notADir,
		Bounds:     testBounds,
		DisableLog: true,
	})

	var fe *FatalError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, "mkdir", fe.Op)
	require.Equal(t, notADir, fe.Path)
}

func TestScan_InvalidBounds(t *testing.T) {
	path, _ := writeImage(t, testJPEG("JFIF", 2000, 0x10))

	_, err := Scan(path, Options{
		OutputDir:  t.TempDir(),
		Bounds:     format.Bounds{MinSize: 10, MaxSize: 1},
		DisableLog: true,
	})
	require.Error(t, err)
	require.False(t, IsFatal(err))
}

func TestDumpFile(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789"), 100)
	dir := t.TempDir()

	c := format.Candidate{Start: 15, End: 515}
	path, err := DumpFile(bytes.NewReader(data), dir, c)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "recover-15-515.jpeg"), path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, data[15:515], got)

	_, err = DumpFile(bytes.NewReader(data), filepath.Join(dir, "missing"), c)
	require.True(t, IsFatal(err))

	_, err = DumpFile(bytes.NewReader(data[:100]), dir, c)
	require.True(t, IsFatal(err))
}

func TestFormatDurationHMS(t *testing.T) {
	require.Equal(t, "0.50s", FormatDurationHMS(500*time.Millisecond))
	require.Equal(t, "01:01:01", FormatDurationHMS(time.Hour+time.Minute+time.Second))
}
