package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/ostafen/jrecover/internal/config"
	"github.com/ostafen/jrecover/internal/format"
	"github.com/ostafen/jrecover/internal/mmap"
	"github.com/stretchr/testify/require"
)

func writeJPEG(t *testing.T, dir, name string, payloadSize int) []byte {
	b := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10}
	b = append(b, "JFIF"...)
	b = append(b, bytes.Repeat([]byte{0x77}, payloadSize)...)
	b = append(b, 0xff, 0xd9)

	require.NoError(t, os.WriteFile(filepath.Join(dir, name), b, 0644))
	return b
}

func TestMergeScanRecover(t *testing.T) {
	srcDir := t.TempDir()
	first := writeJPEG(t, srcDir, "a.jpg", 3000)
	second := writeJPEG(t, srcDir, "b.jpg", 5000)

	image := filepath.Join(t.TempDir(), "disk.img")

	merge := DefineMergeCommand()
	merge.SetArgs([]string{
		srcDir,
		"--output", image,
		"--min-gap", "1024",
		"--max-gap", "4096",
		"--zero-fill",
	})
	require.NoError(t, merge.Execute())

	src, err := mmap.Open(image, 0)
	require.NoError(t, err)
	defer src.Close()

	data := src.Bytes()
	firstOff := bytes.Index(data, first)
	secondOff := bytes.Index(data, second)
	require.Positive(t, firstOff)
	require.Greater(t, secondOff, firstOff+len(first))
	require.Zero(t, firstOff%512)
	require.Zero(t, secondOff%512)

	cfg, err := config.Load()
	require.NoError(t, err)

	outDir := t.TempDir()
	report := filepath.Join(t.TempDir(), "disk.xml")

	scanCmd := DefineScanCommand(cfg)
	scanCmd.SetArgs([]string{
		image,
		"--output", outDir,
		"--min-size", "1KB",
		"--max-size", "1MB",
		"--report", report,
		"--no-log",
	})
	require.NoError(t, scanCmd.Execute())

	expected := []format.Candidate{
		{Start: firstOff, End: firstOff + len(first)},
		{Start: secondOff, End: secondOff + len(second)},
	}

	candidates, err := readReport(report)
	require.NoError(t, err)
	require.Equal(t, expected, candidates)

	recoverDir := filepath.Join(t.TempDir(), "recovered")
	recoverCmd := DefineRecoverCommand()
	recoverCmd.SetArgs([]string{image, report, "--output-dir", recoverDir})
	require.NoError(t, recoverCmd.Execute())

	for _, c := range expected {
		scanned, err := os.ReadFile(filepath.Join(outDir, c.Name()))
		require.NoError(t, err)

		recovered, err := os.ReadFile(filepath.Join(recoverDir, c.Name()))
		require.NoError(t, err)
		require.Equal(t, scanned, recovered)
		require.True(t, slices.Equal(data[c.Start:c.End], recovered))
	}
}

func TestScanCommand_InvalidFlags(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	image := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, os.WriteFile(image, make([]byte, 1024), 0644))

	for _, args := range [][]string{
		{image, "--min-size", "2MB", "--max-size", "1MB"},
		{image, "--size", "lots"},
		{image, "--max-size", "0"},
	} {
		scanCmd := DefineScanCommand(cfg)
		scanCmd.SetArgs(append(args, "--output", t.TempDir(), "--no-log"))
		scanCmd.SetOut(&bytes.Buffer{})
		scanCmd.SetErr(&bytes.Buffer{})
		require.Error(t, scanCmd.Execute(), args)
	}
}

func TestGetMountpoint(t *testing.T) {
	require.Equal(t, "report", getMountpoint("/tmp/report.xml"))
	require.Equal(t, "report_mnt", getMountpoint("report"))
}
