package playback

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// Audio is one playback resource for one file.
type Audio interface {
	Play() error
	Pause() error
	// Rewind moves the resource back to its start position.
	Rewind() error
}

// AudioBackend creates audio resources from timeline file references.
type AudioBackend interface {
	Load(file string) Audio
}

// NopBackend returns resources that play nothing.
type NopBackend struct{}

// Load implements AudioBackend.
func (NopBackend) Load(string) Audio { return nopAudio{} }

type nopAudio struct{}

func (nopAudio) Play() error   { return nil }
func (nopAudio) Pause() error  { return nil }
func (nopAudio) Rewind() error { return nil }

// ExecBackend plays files by running an external player command with the
// resolved file reference as its last argument.
type ExecBackend struct {
	argv    []string
	baseURL string
}

// NewExecBackend parses command into arguments. Relative file references are
// resolved against baseURL. An empty command yields a backend that plays
// nothing.
func NewExecBackend(command, baseURL string) *ExecBackend {
	return &ExecBackend{
		argv:    strings.Fields(command),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// Load implements AudioBackend.
func (b *ExecBackend) Load(file string) Audio {
	if len(b.argv) == 0 {
		return nopAudio{}
	}
	argv := make([]string, 0, len(b.argv)+1)
	argv = append(argv, b.argv...)
	argv = append(argv, b.Resolve(file))
	return &execAudio{argv: argv}
}

// Resolve returns the reference handed to the player for file.
func (b *ExecBackend) Resolve(file string) string {
	if b.baseURL == "" {
		return file
	}
	if u, err := url.Parse(file); err == nil && u.Scheme != "" {
		return file
	}
	return b.baseURL + "/" + strings.TrimPrefix(file, "/")
}

type execAudio struct {
	mu   sync.Mutex
	argv []string
	cmd  *exec.Cmd
}

func (a *execAudio) Play() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cmd != nil {
		return nil
	}

	cmd := exec.Command(a.argv[0], a.argv[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start player: %w", err)
	}
	a.cmd = cmd

	go func() {
		_ = cmd.Wait()
		a.mu.Lock()
		if a.cmd == cmd {
			a.cmd = nil
		}
		a.mu.Unlock()
	}()
	return nil
}

func (a *execAudio) Pause() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cmd == nil {
		return nil
	}
	err := a.cmd.Process.Kill()
	a.cmd = nil
	if err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("stop player: %w", err)
	}
	return nil
}

// Rewind is a no-op: a player process always starts from the beginning.
func (a *execAudio) Rewind() error { return nil }
