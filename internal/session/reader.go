// Copyright (c) 2026 Sitekey Authors
// Sitekey - deterministic per-site password generator
// This source code is licensed under the MIT license found in the LICENSE file.

package session

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sitekey/sitekey/internal/i18n"
	"github.com/sitekey/sitekey/internal/ui"
)

// ErrQuit ends the session: explicit quit directive, end of input, or an
// interrupt while the loop is running. All of these exit with status zero.
var ErrQuit = errors.New("session ended")

// ErrTimeout ends the session because the idle watchdog fired.
var ErrTimeout = errors.New("session idle timeout")

// errHelp means nothing was read this round; the caller re-prompts silently.
var errHelp = errors.New("help shown")

// rawRequest carries the unvalidated triple exactly as the user typed it
// (with defaults substituted for omitted fields).
type rawRequest struct {
	site    string
	class   string
	counter string
}

// lineSource feeds stdin lines into a channel so a prompt read can be
// interrupted by the watchdog or a signal. The channel closes on EOF. The
// reading goroutine lives for the process; it blocks harmlessly once the
// session ends.
type lineSource struct {
	lines chan string
}

func newLineSource(r io.Reader) *lineSource {
	ls := &lineSource{lines: make(chan string)}
	go func() {
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			ls.lines <- sc.Text()
		}
		close(ls.lines)
	}()
	return ls
}

// Reader acquires (site, class, counter) from the user. With a delimiter
// configured it reads all three from one split line; otherwise it issues
// three sequential prompts. Every successful read counts as user activity
// when keepalive is enabled.
type Reader struct {
	lines      *lineSource
	out        io.Writer
	styles     *ui.Styles
	delimiter  string
	defClass   string
	defCounter int
	watchdog   *Watchdog
	keepalive  bool
	interrupt  <-chan struct{}
}

// ReaderConfig bundles the construction parameters for a Reader.
type ReaderConfig struct {
	Delimiter      string // empty selects sequential mode
	DefaultClass   string
	DefaultCounter int
	Keepalive      bool
	Interrupt      <-chan struct{} // closed/signaled on SIGINT; may be nil
}

// NewReader builds a Reader over the given input stream. The watchdog may be
// nil (disabled).
func NewReader(in io.Reader, out io.Writer, styles *ui.Styles, wd *Watchdog, cfg ReaderConfig) *Reader {
	return &Reader{
		lines:      newLineSource(in),
		out:        out,
		styles:     styles,
		delimiter:  cfg.Delimiter,
		defClass:   cfg.DefaultClass,
		defCounter: cfg.DefaultCounter,
		watchdog:   wd,
		keepalive:  cfg.Keepalive,
		interrupt:  cfg.Interrupt,
	}
}

// read acquires one raw triple. It returns ErrQuit on a quit directive, EOF
// or interrupt, ErrTimeout when the watchdog fires mid-read, and errHelp
// after displaying usage.
func (r *Reader) read() (rawRequest, error) {
	if r.delimiter != "" {
		return r.readSplit()
	}
	return r.readSequential()
}

// readLine prints the prompt and waits for a line, the watchdog, or an
// interrupt, whichever comes first.
func (r *Reader) readLine(prompt string) (string, error) {
	fmt.Fprint(r.out, r.styles.Prompt.Render(prompt))
	select {
	case line, ok := <-r.lines.lines:
		if !ok {
			return "", ErrQuit // EOF
		}
		if r.keepalive {
			r.watchdog.NotifyActivity()
		}
		return strings.TrimSpace(line), nil
	case <-r.watchdog.Timeout():
		return "", ErrTimeout
	case <-r.interrupt:
		return "", ErrQuit
	}
}

// readSplit reads "site<delim>class<delim>counter" from one prompt. Missing
// trailing fields fall back to the defaults; an empty line quits.
func (r *Reader) readSplit() (rawRequest, error) {
	raw := rawRequest{class: r.defClass, counter: strconv.Itoa(r.defCounter)}

	line, err := r.readLine(i18n.T("session.prompt_combined", r.delimiter, r.delimiter))
	if err != nil {
		return raw, err
	}
	if line == "" || isQuit(line) {
		return raw, ErrQuit
	}
	if isHelp(line) {
		fmt.Fprintln(r.out, r.styles.Info.Render(i18n.T("session.help_split", r.delimiter, r.delimiter)))
		return raw, errHelp
	}

	fields := strings.SplitN(line, r.delimiter, 3)
	raw.site = strings.TrimSpace(fields[0])
	if len(fields) > 1 && strings.TrimSpace(fields[1]) != "" {
		raw.class = strings.TrimSpace(fields[1])
	}
	if len(fields) > 2 && strings.TrimSpace(fields[2]) != "" {
		raw.counter = strings.TrimSpace(fields[2])
	}
	return raw, nil
}

// readSequential issues the three prompts in order. Empty input keeps the
// default for class and counter; an empty site is passed through for the
// validation step to reject.
func (r *Reader) readSequential() (rawRequest, error) {
	var raw rawRequest

	site, err := r.readLine(i18n.T("session.prompt_site"))
	if err != nil {
		return raw, err
	}
	if isQuit(site) {
		return raw, ErrQuit
	}
	if isHelp(site) {
		fmt.Fprintln(r.out, r.styles.Info.Render(i18n.T("session.help_sequential")))
		return raw, errHelp
	}
	raw.site = site

	class, err := r.readLine(i18n.T("session.prompt_type", r.defClass))
	if err != nil {
		return raw, err
	}
	if isQuit(class) {
		return raw, ErrQuit
	}
	if isHelp(class) {
		fmt.Fprintln(r.out, r.styles.Info.Render(i18n.T("session.help_sequential")))
		return raw, errHelp
	}
	if class == "" {
		class = r.defClass
	}
	raw.class = class

	counter, err := r.readLine(i18n.T("session.prompt_counter", r.defCounter))
	if err != nil {
		return raw, err
	}
	if isQuit(counter) {
		return raw, ErrQuit
	}
	if isHelp(counter) {
		fmt.Fprintln(r.out, r.styles.Info.Render(i18n.T("session.help_sequential")))
		return raw, errHelp
	}
	if counter == "" {
		counter = strconv.Itoa(r.defCounter)
	}
	raw.counter = counter

	return raw, nil
}

// isQuit recognizes the quit directives.
func isQuit(s string) bool {
	switch strings.ToLower(s) {
	case "q", "quit", "exit":
		return true
	}
	return false
}

// isHelp recognizes the help directives.
func isHelp(s string) bool {
	switch strings.ToLower(s) {
	case "?", "help":
		return true
	}
	return false
}
