// Package recorder writes interleaved stereo float32 frames to a
// 32-bit IEEE-float WAV file. It is fed exclusively through the
// engine's async caller: the realtime callback copies its output
// buffer and posts the copy, so the recorder itself only ever runs on
// the control thread and is free to allocate and touch the
// filesystem.
package recorder

import (
	"encoding/binary"
	"fmt"
	"os"
)

const (
	bitsPerSample   = 32
	channels        = 2
	formatIEEEFloat = 3
)

type riffHeader struct {
	ChunkID   [4]byte
	ChunkSize uint32
	Format    [4]byte
}

type fmtChunk struct {
	SubchunkID    [4]byte
	SubchunkSize  uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

type dataChunkHeader struct {
	SubchunkID   [4]byte
	SubchunkSize uint32
}

// Recorder accumulates frames and flushes a complete WAV file on
// Close. It is not safe for concurrent use; every call must come from
// the control thread.
type Recorder struct {
	file       *os.File
	sampleRate uint32
	frames     int
	dataBytes  uint32
	closed     bool
}

// New creates path and writes a placeholder header, to be patched with
// final sizes on Close.
func New(path string, sampleRate uint32) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("recorder: create %s: %w", path, err)
	}
	r := &Recorder{file: f, sampleRate: sampleRate}
	if err := r.writeHeader(); err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

func (r *Recorder) writeHeader() error {
	if err := binary.Write(r.file, binary.LittleEndian, riffHeader{
		ChunkID: [4]byte{'R', 'I', 'F', 'F'},
		Format:  [4]byte{'W', 'A', 'V', 'E'},
	}); err != nil {
		return err
	}
	blockAlign := uint16(channels * bitsPerSample / 8)
	if err := binary.Write(r.file, binary.LittleEndian, fmtChunk{
		SubchunkID:    [4]byte{'f', 'm', 't', ' '},
		SubchunkSize:  16,
		AudioFormat:   formatIEEEFloat,
		NumChannels:   channels,
		SampleRate:    r.sampleRate,
		ByteRate:      r.sampleRate * uint32(blockAlign),
		BlockAlign:    blockAlign,
		BitsPerSample: bitsPerSample,
	}); err != nil {
		return err
	}
	return binary.Write(r.file, binary.LittleEndian, dataChunkHeader{
		SubchunkID: [4]byte{'d', 'a', 't', 'a'},
	})
}

// AppendFrame is the sink handed to engine.SetRecorderSink: interleaved is
// a caller-owned copy of one render's output, left/right/left/right.
func (r *Recorder) AppendFrame(interleaved []float32) {
	if r.closed {
		return
	}
	if err := binary.Write(r.file, binary.LittleEndian, interleaved); err != nil {
		return
	}
	r.dataBytes += uint32(len(interleaved) * 4)
	r.frames += len(interleaved) / channels
}

// Close patches the RIFF and data chunk sizes and closes the file.
func (r *Recorder) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	riffSize := 4 + (8 + 16) + (8 + r.dataBytes)
	if _, err := r.file.Seek(4, 0); err != nil {
		return err
	}
	if err := binary.Write(r.file, binary.LittleEndian, riffSize); err != nil {
		return err
	}
	if _, err := r.file.Seek(12+24+4, 0); err != nil {
		return err
	}
	if err := binary.Write(r.file, binary.LittleEndian, r.dataBytes); err != nil {
		return err
	}
	return r.file.Close()
}

// Frames reports how many stereo frames have been appended so far.
func (r *Recorder) Frames() int {
	return r.frames
}
