package playback

import (
	"encoding/binary"
	"io"
	"math"
	"os"
)

// probeDuration returns the length in seconds of a PCM WAV file, or NaN for
// anything it cannot measure.
func probeDuration(path string) float64 {
	f, err := os.Open(path)
	if err != nil {
		return math.NaN()
	}
	defer f.Close()

	var riff [12]byte
	if _, err := io.ReadFull(f, riff[:]); err != nil {
		return math.NaN()
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return math.NaN()
	}

	var byteRate uint32
	for {
		var header [8]byte
		if _, err := io.ReadFull(f, header[:]); err != nil {
			return math.NaN()
		}
		id := string(header[0:4])
		size := binary.LittleEndian.Uint32(header[4:8])
		switch id {
		case "fmt ":
			var fmtChunk [16]byte
			if size < 16 {
				return math.NaN()
			}
			if _, err := io.ReadFull(f, fmtChunk[:]); err != nil {
				return math.NaN()
			}
			byteRate = binary.LittleEndian.Uint32(fmtChunk[8:12])
			if _, err := f.Seek(int64(size-16+size%2), io.SeekCurrent); err != nil {
				return math.NaN()
			}
		case "data":
			if byteRate == 0 {
				return math.NaN()
			}
			return float64(size) / float64(byteRate)
		default:
			if _, err := f.Seek(int64(size+size%2), io.SeekCurrent); err != nil {
				return math.NaN()
			}
		}
	}
}
