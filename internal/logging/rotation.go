package logging

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// rotate removes the oldest log files in dir when the number of files exceeds maxFiles.
// Only files matching "soundboard_*.log" are considered.
func rotate(dir string, maxFiles int) error {
	if maxFiles <= 0 {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	type logFile struct {
		path    string
		modUnix int64
	}
	var logFiles []logFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, logFilePrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}
		var mod int64
		if info, err := entry.Info(); err == nil {
			mod = info.ModTime().UnixNano()
		}
		logFiles = append(logFiles, logFile{path: filepath.Join(dir, name), modUnix: mod})
	}
	if len(logFiles) <= maxFiles {
		return nil
	}
	// Oldest first; names embed a timestamp so they break ties
	sort.Slice(logFiles, func(i, j int) bool {
		if logFiles[i].modUnix == logFiles[j].modUnix {
			return logFiles[i].path < logFiles[j].path
		}
		return logFiles[i].modUnix < logFiles[j].modUnix
	})
	for i := 0; i < len(logFiles)-maxFiles; i++ {
		os.Remove(logFiles[i].path) // ignore errors
	}
	return nil
}
