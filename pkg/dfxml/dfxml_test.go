package dfxml

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriterReader(t *testing.T) {
	var buf bytes.Buffer

	w := NewDFXMLWriter(&buf)
	err := w.WriteHeader(DFXMLHeader{
		XmlOutput: XmlOutputVersion,
		Metadata:  DefaultMetadata,
		Creator: Creator{
			Package:              "jrecover",
			Version:              "test",
			ExecutionEnvironment: GetExecEnv(),
		},
		Source: Source{
			ImageFilename: "disk.img",
			SectorSize:    1,
			ImageSize:     1 << 20,
		},
	})
	require.NoError(t, err)

	objs := []FileObject{
		NewFileObject("recover-100-612.jpeg", 100, 512),
		NewFileObject("recover-4096-8192.jpeg", 4096, 4096),
	}
	for _, o := range objs {
		require.NoError(t, w.WriteFileObject(o))
	}
	require.NoError(t, w.Close())

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "<?xml"))
	require.Equal(t, 1, strings.Count(out, "<dfxml "))
	require.True(t, strings.HasSuffix(strings.TrimSpace(out), "</dfxml>"))

	read, err := ReadFileObjects(&buf)
	require.NoError(t, err)
	require.Len(t, read, 2)

	for i, o := range read {
		require.Equal(t, objs[i].Filename, o.Filename)
		require.Equal(t, objs[i].FileSize, o.FileSize)
		require.Equal(t, objs[i].ByteRuns, o.ByteRuns)
	}
}
