package assemble

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/olandir/abogen/engine"
)

// WAVEncoder writes outputs as RIFF/WAVE files in Dir. It handles raw PCM
// only; compressed containers with embedded tags and chapter atoms are left
// to external encoders behind the same interface. Tags and chapter marks
// are logged so downstream tooling can pick them up.
type WAVEncoder struct {
	Dir string
}

// Encode writes one output to <Dir>/<Name>.wav.
func (e WAVEncoder) Encode(_ context.Context, out Output, meta Metadata) error {
	if out.Audio == nil || len(out.Audio.Data) == 0 {
		return fmt.Errorf("output %q has no audio", out.Name)
	}
	if out.Audio.Format != engine.FormatPCM16 {
		return fmt.Errorf("wav encoder supports PCM16 only")
	}

	path := filepath.Join(e.Dir, out.Name+".wav")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := writeWAVHeader(f, len(out.Audio.Data), out.Audio.SampleRate, out.Audio.Channels); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if _, err := f.Write(out.Audio.Data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	for k, v := range meta.Tags {
		log.Debug("metadata tag not embeddable in wav", "file", path, "key", k, "value", v)
	}
	for _, c := range out.Chapters {
		log.Debug("chapter mark", "file", path, "title", c.Title, "start", c.Start)
	}
	return nil
}

func writeWAVHeader(f *os.File, dataLen, sampleRate, channels int) error {
	const bitsPerSample = 16
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	var header [44]byte
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataLen))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataLen))

	_, err := f.Write(header[:])
	return err
}
