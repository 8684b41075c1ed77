// Copyright (c) 2026 Sitekey Authors
// Sitekey - deterministic per-site password generator
// This source code is licensed under the MIT license found in the LICENSE file.

package session

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"time"

	"github.com/sitekey/sitekey/internal/clip"
	"github.com/sitekey/sitekey/internal/derive"
	"github.com/sitekey/sitekey/internal/i18n"
	"github.com/sitekey/sitekey/internal/logging"
	"github.com/sitekey/sitekey/internal/security"
	"github.com/sitekey/sitekey/internal/ui"
)

// Request is a validated (site, class, counter) triple. It is transient:
// rebuilt and revalidated every loop iteration, never persisted.
type Request struct {
	Site    string
	Class   string
	Counter int
}

// LoopConfig carries the delivery and termination settings of a session.
type LoopConfig struct {
	Copy        bool
	Hide        bool // implies Copy; the password is never printed
	Quiet       bool
	ClipTime    time.Duration
	IdleTimeout time.Duration
	LockCommand string // shell command run once when the watchdog fires
}

// Loop orchestrates the interactive session: ParameterReader, validation,
// derivation, delivery and teardown. It is the sole owner of the master key
// and of the pending clipboard clear.
type Loop struct {
	key      security.Secret
	reader   *Reader
	watchdog *Watchdog
	clear    *clip.ClearTimer
	out      io.Writer
	styles   *ui.Styles
	cfg      LoopConfig

	// seams for tests; default to the real collaborators
	derive  func(key []byte, site, class string, counter uint32) (string, error)
	copyFn  func(string) error
	lockRun func(string) error
}

// NewLoop wires a session loop from its collaborators. The watchdog may be
// nil (timeout mode disabled).
func NewLoop(key security.Secret, rd *Reader, wd *Watchdog, ct *clip.ClearTimer, out io.Writer, styles *ui.Styles, cfg LoopConfig) *Loop {
	return &Loop{
		key:      key,
		reader:   rd,
		watchdog: wd,
		clear:    ct,
		out:      out,
		styles:   styles,
		cfg:      cfg,
		derive:   derive.Password,
		copyFn:   clip.Copy,
		lockRun:  RunLockCommand,
	}
}

// Run drives the session until quit, EOF, interrupt or idle timeout. It
// always returns nil on those graceful ends; teardown cancels any pending
// clipboard clear regardless of the termination cause.
func (l *Loop) Run() error {
	defer l.clear.Cancel()
	l.watchdog.Start()
	defer l.watchdog.Stop()

	for {
		raw, err := l.reader.read()
		switch {
		case errors.Is(err, errHelp):
			continue
		case errors.Is(err, ErrTimeout):
			l.info(i18n.T("session.timeout", int(l.cfg.IdleTimeout/time.Second)))
			if l.cfg.LockCommand != "" {
				if lerr := l.lockRun(l.cfg.LockCommand); lerr != nil {
					logging.Warnf("%s", i18n.T("session.lock_command_failed", lerr))
				}
			}
			return nil
		case errors.Is(err, ErrQuit):
			l.info(i18n.T("session.goodbye"))
			return nil
		case err != nil:
			return err
		}

		req, ok := l.validate(raw)
		if !ok {
			continue
		}

		var password string
		derr := l.key.Use(func(kb []byte) error {
			var err error
			password, err = l.derive(kb, req.Site, req.Class, uint32(req.Counter))
			return err
		})
		if derr != nil {
			// Inputs were validated, so this only fires on a broken key.
			l.errorf("%v", derr)
			continue
		}

		l.deliver(req, password)
	}
}

// validate applies the per-iteration checks: non-empty site, integer counter
// >= 1, known template class. Failures are reported and send the loop back to
// the prompt.
func (l *Loop) validate(raw rawRequest) (Request, bool) {
	if raw.site == "" {
		l.errorf("%s", i18n.T("session.error_empty_site"))
		return Request{}, false
	}
	counter, err := strconv.Atoi(raw.counter)
	if err != nil || counter < 1 {
		l.errorf("%s", i18n.T("session.error_bad_counter", raw.counter))
		return Request{}, false
	}
	if !derive.ValidClass(raw.class) {
		l.errorf("%s", i18n.T("session.error_unknown_type", raw.class, derive.ClassList()))
		return Request{}, false
	}
	return Request{Site: raw.site, Class: raw.class, Counter: counter}, true
}

// deliver hands the derived password to the clipboard path or the output
// surface. Scheduling a clear supersedes any pending one; a copy failure is
// non-fatal and falls back to display unless hide mode forbids it.
func (l *Loop) deliver(req Request, password string) {
	if l.cfg.Copy {
		if err := l.copyFn(password); err != nil {
			l.errorf("%s", i18n.T("clip.error_copy", err))
			if l.cfg.Hide {
				return // the user is left with only the error
			}
		} else {
			l.clear.Schedule(l.cfg.ClipTime)
			if !l.cfg.Quiet {
				l.info(i18n.T("clip.copied", req.Site, int(l.cfg.ClipTime/time.Second)))
			}
			return
		}
	}
	if !l.cfg.Hide {
		fmt.Fprintln(l.out, l.styles.Secret.Render(password))
	}
}

func (l *Loop) info(msg string) {
	if l.cfg.Quiet {
		return
	}
	fmt.Fprintln(l.out, l.styles.Info.Render(msg))
}

func (l *Loop) errorf(format string, args ...any) {
	fmt.Fprintln(l.out, l.styles.Error.Render(fmt.Sprintf(format, args...)))
}

// RunLockCommand executes the configured recovery command once, through the
// platform shell, synchronously.
func RunLockCommand(command string) error {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command("cmd", "/C", command)
	} else {
		cmd = exec.Command("sh", "-c", command)
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
