package transfer

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// NewFileEmoji marks sounds that came from a file import.
const NewFileEmoji = "🆕"

// File is an audio file handed over by a drop or the file picker.
type File struct {
	Name     string
	MIMEType string
	Data     []byte
}

// IsAudio reports whether the file has an audio/* type.
func IsAudio(f File) bool {
	return strings.HasPrefix(strings.ToLower(f.MIMEType), "audio/")
}

// DataURL embeds data as a base64 data: URL.
func DataURL(mimeType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// FilePayload converts an imported file into an add payload.
func FilePayload(f File) Payload {
	return Payload{
		AudioRef:   DataURL(f.MIMEType, f.Data),
		Title:      f.Name,
		Emoji:      NewFileEmoji,
		Repeatable: false,
	}
}

// AudioPayloads converts files to payloads, skipping non-audio files.
func AudioPayloads(files []File) []Payload {
	out := make([]Payload, 0, len(files))
	for _, f := range files {
		if !IsAudio(f) {
			continue
		}
		out = append(out, FilePayload(f))
	}
	return out
}

// ReadFile loads path from disk. The MIME type comes from the extension,
// falling back to content sniffing.
func ReadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read audio file: %w", err)
	}
	return File{
		Name:     filepath.Base(path),
		MIMEType: detectMIMEType(path, data),
		Data:     data,
	}, nil
}

var audioExtensions = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".opus": "audio/opus",
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".webm": "audio/webm",
}

func detectMIMEType(path string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := audioExtensions[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if media, _, err := mime.ParseMediaType(t); err == nil {
			return media
		}
		return t
	}
	t := http.DetectContentType(data)
	if media, _, err := mime.ParseMediaType(t); err == nil {
		return media
	}
	return t
}
