package playback

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"mime"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/cristianoliveira/soundboard/internal/config"
	"github.com/cristianoliveira/soundboard/internal/logging"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// ErrNoPlayer is returned when no audio player command can be found.
var ErrNoPlayer = errors.New("playback: no audio player found (set player_command)")

const (
	defaultTick         = 100 * time.Millisecond
	tempFileTTL         = 30 * time.Minute
	tempFilePrefix      = "soundboard-"
	dataURLPrefix       = "data:"
	fileURLPrefix       = "file://"
	defaultTempFileMode = 0o600
)

// players are tried in order. The audio path is appended to each argv.
var players = [][]string{
	{"afplay"},
	{"paplay"},
	{"aplay", "-q"},
	{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
	{"mpv", "--no-video", "--really-quiet"},
}

// CommandBackend plays audio by running an OS-native player process per play.
// data: URLs are written to temporary files that are cached by URL. Expired
// files are swept on the next materialize and everything is removed on Close.
// The cache runs no janitor goroutine.
type CommandBackend struct {
	argv    []string
	tick    time.Duration
	tempDir string
	ttl     time.Duration
	files   *cache.Cache
	log     logging.Logger
	mu      sync.Mutex
}

// CommandOption configures a CommandBackend.
type CommandOption func(*CommandBackend)

// WithCommand sets the player argv. The audio path is appended on each play.
func WithCommand(argv ...string) CommandOption {
	return func(b *CommandBackend) {
		if len(argv) > 0 {
			b.argv = argv
		}
	}
}

// WithTick sets how often time updates are reported while playing.
func WithTick(d time.Duration) CommandOption {
	return func(b *CommandBackend) {
		if d > 0 {
			b.tick = d
		}
	}
}

// WithTempDir sets where data: URLs are materialized.
func WithTempDir(dir string) CommandOption {
	return func(b *CommandBackend) { b.tempDir = dir }
}

// WithTempFileTTL sets how long a materialized data: URL is reused.
func WithTempFileTTL(d time.Duration) CommandOption {
	return func(b *CommandBackend) {
		if d > 0 {
			b.ttl = d
		}
	}
}

// NewCommandBackend creates a backend using the configured player_command,
// or the first player found on PATH.
func NewCommandBackend(opts ...CommandOption) (*CommandBackend, error) {
	b := &CommandBackend{
		tick:    defaultTick,
		tempDir: os.TempDir(),
		ttl:     tempFileTTL,
		log:     logging.GetGlobal().With("component", "player"),
	}
	if cmd := strings.Fields(config.Get("player_command", "")); len(cmd) > 0 {
		b.argv = cmd
	}
	for _, opt := range opts {
		opt(b)
	}
	b.files = cache.New(b.ttl, cache.NoExpiration)
	b.files.OnEvicted(func(_ string, v interface{}) {
		if path, ok := v.(string); ok {
			_ = os.Remove(path)
		}
	})
	if len(b.argv) == 0 {
		argv, err := findPlayer()
		if err != nil {
			return nil, err
		}
		b.argv = argv
	}
	if _, err := exec.LookPath(b.argv[0]); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNoPlayer, b.argv[0], err)
	}
	b.log.Debug("using audio player", "command", strings.Join(b.argv, " "))
	return b, nil
}

func findPlayer() ([]string, error) {
	for _, argv := range players {
		if _, err := exec.LookPath(argv[0]); err == nil {
			return argv, nil
		}
	}
	return nil, ErrNoPlayer
}

// Open materializes audioRef and returns a handle for it.
func (b *CommandBackend) Open(audioRef string, obs Observer) (Handle, error) {
	path, err := b.resolve(audioRef)
	if err != nil {
		return nil, err
	}
	return &commandHandle{
		id:       uuid.NewString(),
		backend:  b,
		path:     path,
		obs:      obs,
		duration: probeDuration(path),
	}, nil
}

// resolve turns an audio reference into something the player can open.
func (b *CommandBackend) resolve(ref string) (string, error) {
	switch {
	case strings.HasPrefix(ref, dataURLPrefix):
		return b.materialize(ref)
	case strings.HasPrefix(ref, fileURLPrefix):
		u, err := url.Parse(ref)
		if err != nil {
			return "", fmt.Errorf("parse file url: %w", err)
		}
		return u.Path, nil
	default:
		return ref, nil
	}
}

func (b *CommandBackend) materialize(ref string) (string, error) {
	sum := sha256.Sum256([]byte(ref))
	key := hex.EncodeToString(sum[:])

	b.mu.Lock()
	defer b.mu.Unlock()
	b.files.DeleteExpired()
	if v, ok := b.files.Get(key); ok {
		path := v.(string)
		if _, err := os.Stat(path); err == nil {
			b.files.SetDefault(key, path)
			return path, nil
		}
	}

	mediaType, data, err := decodeDataURL(ref)
	if err != nil {
		return "", err
	}
	ext := ""
	if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
		ext = exts[0]
	}
	f, err := os.CreateTemp(b.tempDir, tempFilePrefix+"*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp audio file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write temp audio file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close temp audio file: %w", err)
	}
	_ = os.Chmod(f.Name(), defaultTempFileMode)
	b.files.SetDefault(key, f.Name())
	return f.Name(), nil
}

// decodeDataURL parses data:[<mediatype>][;base64],<data>.
func decodeDataURL(ref string) (string, []byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, dataURLPrefix), ",")
	if !ok {
		return "", nil, errors.New("malformed data url")
	}
	isBase64 := strings.HasSuffix(meta, ";base64")
	mediaType := strings.TrimSuffix(meta, ";base64")
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	if !isBase64 {
		decoded, err := url.PathUnescape(payload)
		if err != nil {
			return "", nil, fmt.Errorf("decode data url: %w", err)
		}
		return mediaType, []byte(decoded), nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data url: %w", err)
	}
	return mediaType, data, nil
}

// Close removes every materialized temp file.
func (b *CommandBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.files.DeleteExpired()
	for key := range b.files.Items() {
		b.files.Delete(key)
	}
	return nil
}

// commandHandle runs one player process per Play.
type commandHandle struct {
	id       string
	backend  *CommandBackend
	path     string
	obs      Observer
	duration float64

	mu      sync.Mutex
	cmd     *exec.Cmd
	run     uint64
	started time.Time
	closed  bool
}

func (h *commandHandle) ID() string { return h.id }

// Play starts a player process. A process already running is stopped first.
func (h *commandHandle) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return errors.New("playback: handle closed")
	}
	h.killLocked()

	argv := append(append([]string{}, h.backend.argv...), h.path)
	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", argv[0], err)
	}
	h.run++
	h.cmd = cmd
	h.started = time.Now()

	done := make(chan struct{})
	go h.wait(cmd, h.run, done)
	go h.report(h.run, done)
	return nil
}

func (h *commandHandle) wait(cmd *exec.Cmd, run uint64, done chan struct{}) {
	err := cmd.Wait()
	close(done)

	h.mu.Lock()
	natural := h.run == run && h.cmd == cmd
	if natural {
		h.cmd = nil
	}
	h.mu.Unlock()

	if !natural {
		return
	}
	if err != nil {
		h.backend.log.Warn("audio player exited with error", "path", h.path, "error", err)
	}
	h.obs.TimeUpdate(h.duration, h.duration)
	h.obs.Ended()
}

func (h *commandHandle) report(run uint64, done chan struct{}) {
	ticker := time.NewTicker(h.backend.tick)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			h.mu.Lock()
			if h.run != run || h.cmd == nil {
				h.mu.Unlock()
				return
			}
			elapsed := time.Since(h.started).Seconds()
			h.mu.Unlock()
			h.obs.TimeUpdate(elapsed, h.duration)
		}
	}
}

// Stop kills the running process. The next Play starts from the beginning.
func (h *commandHandle) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.killLocked()
	return nil
}

func (h *commandHandle) killLocked() {
	h.run++
	if h.cmd == nil {
		return
	}
	if h.cmd.Process != nil {
		_ = h.cmd.Process.Kill()
	}
	h.cmd = nil
}

func (h *commandHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.killLocked()
	h.closed = true
	return nil
}

// Position is the time since the process started, or 0 when stopped.
func (h *commandHandle) Position() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cmd == nil {
		return 0
	}
	elapsed := time.Since(h.started).Seconds()
	if !math.IsNaN(h.duration) && elapsed > h.duration {
		return h.duration
	}
	return elapsed
}
