package recorder

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritesReadableHeaderAndData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")

	r, err := New(path, 48000)
	require.NoError(t, err)

	r.AppendFrame([]float32{0.5, -0.5, 0.25, -0.25})
	r.AppendFrame([]float32{1, -1})
	require.NoError(t, r.Close())

	assert.Equal(t, 3, r.Frames())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var riff riffHeader
	require.NoError(t, binary.Read(f, binary.LittleEndian, &riff))
	assert.Equal(t, [4]byte{'R', 'I', 'F', 'F'}, riff.ChunkID)
	assert.Equal(t, [4]byte{'W', 'A', 'V', 'E'}, riff.Format)

	var fc fmtChunk
	require.NoError(t, binary.Read(f, binary.LittleEndian, &fc))
	assert.Equal(t, uint16(formatIEEEFloat), fc.AudioFormat)
	assert.Equal(t, uint16(2), fc.NumChannels)
	assert.Equal(t, uint32(48000), fc.SampleRate)
	assert.Equal(t, uint16(32), fc.BitsPerSample)

	var dc dataChunkHeader
	require.NoError(t, binary.Read(f, binary.LittleEndian, &dc))
	assert.Equal(t, [4]byte{'d', 'a', 't', 'a'}, dc.SubchunkID)
	assert.Equal(t, uint32(6*4), dc.SubchunkSize)

	assert.Equal(t, riff.ChunkSize, uint32(4+24+8+6*4))
}

func TestAppendAfterCloseIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	r, err := New(path, 44100)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	assert.NotPanics(t, func() { r.AppendFrame([]float32{1, 1}) })
	assert.Equal(t, 0, r.Frames())
}
