// Package opener hands files to the desktop: open with the default
// application, or show in the file manager.
package opener

import (
	_ "embed"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/pders01/mifind/internal/config"
	"github.com/pders01/mifind/internal/debuglog"
)

//go:embed commands.toml
var commandsTOML []byte

// ErrNoCommand is returned when no candidate program is installed.
var ErrNoCommand = errors.New("no command available")

type platformCommands struct {
	Open   [][]string `toml:"open"`
	Reveal [][]string `toml:"reveal"`
}

type commandsConfig struct {
	Platforms map[string]platformCommands `toml:"platforms"`
}

// Opener starts detached desktop commands.
type Opener struct {
	open   []string
	reveal []string

	lookPath func(string) (string, error)
	start    func(*exec.Cmd) error
}

// New picks the commands for the running platform. Non-empty entries in cfg
// replace the built-in choice.
func New(cfg config.OpenerConfig) (*Opener, error) {
	return newFor(runtime.GOOS, cfg, exec.LookPath)
}

func newFor(goos string, cfg config.OpenerConfig, lookPath func(string) (string, error)) (*Opener, error) {
	var builtin commandsConfig
	if err := toml.Unmarshal(commandsTOML, &builtin); err != nil {
		return nil, fmt.Errorf("parsing commands.toml: %w", err)
	}
	platform, ok := builtin.Platforms[goos]
	if !ok {
		platform = builtin.Platforms["fallback"]
	}

	o := &Opener{lookPath: lookPath, start: startDetached}
	o.open = cfg.Open
	if len(o.open) == 0 {
		o.open = o.firstAvailable(platform.Open)
	}
	o.reveal = cfg.Reveal
	if len(o.reveal) == 0 {
		o.reveal = o.firstAvailable(platform.Reveal)
	}
	return o, nil
}

func (o *Opener) firstAvailable(candidates [][]string) []string {
	for _, c := range candidates {
		if len(c) == 0 {
			continue
		}
		if _, err := o.lookPath(c[0]); err == nil {
			return c
		}
	}
	return nil
}

// Open opens path with the default application.
func (o *Opener) Open(path string) error {
	return o.run(o.open, path)
}

// Reveal shows path in the file manager.
func (o *Opener) Reveal(path string) error {
	return o.run(o.reveal, path)
}

// Command builds the command for template without starting it.
func Command(template []string, path string) (*exec.Cmd, error) {
	if len(template) == 0 {
		return nil, ErrNoCommand
	}
	r := strings.NewReplacer("{path}", path, "{dir}", filepath.Dir(path))
	args := make([]string, len(template))
	for i, a := range template {
		args[i] = r.Replace(a)
	}
	return exec.Command(args[0], args[1:]...), nil
}

func (o *Opener) run(template []string, path string) error {
	cmd, err := Command(template, path)
	if err != nil {
		return err
	}
	debuglog.Debugf("opener: %s", strings.Join(cmd.Args, " "))
	if err := o.start(cmd); err != nil {
		return fmt.Errorf("failed to start %s: %w", template[0], err)
	}
	return nil
}

// startDetached starts GUI programs without waiting on them.
func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
