// Copyright (c) 2026 Sitekey Authors
// Sitekey - deterministic per-site password generator
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the command-line interface (CLI) for the Sitekey
// application using the Cobra library. It defines the root command, its
// flags, credential entry, and the dispatch between single-shot derivation
// and the interactive session loop.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sitekey/sitekey/internal/clip"
	"github.com/sitekey/sitekey/internal/config"
	"github.com/sitekey/sitekey/internal/derive"
	"github.com/sitekey/sitekey/internal/i18n"
	"github.com/sitekey/sitekey/internal/logging"
	"github.com/sitekey/sitekey/internal/security"
	"github.com/sitekey/sitekey/internal/session"
	"github.com/sitekey/sitekey/internal/ui"
)

var version = "dev" // this will be set by the linker
var cfgFile string

// Test seams for the delivery collaborators.
var derivePassword = derive.Password
var clipCopy = clip.Copy
var clipWipe = clip.Wipe

// Execute runs the CLI entrypoint. The root main package should call this
// function and handle process exit.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd creates and configures a new root cobra command. This function
// is used for the main application command as well as fresh instances for
// isolated testing.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitekey [site]",
		Short: "Sitekey derives per-site passwords from a single master passphrase.",
		Long: `Sitekey is a deterministic password generator. One full name and one
master passphrase produce a distinct password for every site, template
class and counter, with nothing ever written to disk.

With a site argument, Sitekey derives that one password and exits.
Without one, it starts an interactive session that keeps the stretched
master key in memory and answers repeated requests until you quit, the
input ends, or the idle watchdog locks the session.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE:         run,
	}

	cmd.Version = version

	// Define flags
	cmd.Flags().StringP("name", "n", "", "identity full name (prompted when empty)")
	cmd.Flags().StringP("type", "t", "long", "template class ("+derive.ClassList()+")")
	cmd.Flags().IntP("counter", "c", 1, "site counter, starting at 1")
	cmd.Flags().BoolP("copy", "p", false, "copy the password to the clipboard instead of printing it")
	cmd.Flags().Int("clip-time", 45, "seconds before the clipboard is wiped")
	cmd.Flags().BoolP("hide", "H", false, "never print the password (forces --copy)")
	cmd.Flags().StringP("delimiter", "d", "", "read site, type and counter from one delimiter-split prompt")
	cmd.Flags().BoolP("keepalive", "k", false, "prompt reads reset the idle clock")
	cmd.Flags().Int("idle-timeout", 0, "idle seconds before the session locks (0 disables)")
	cmd.Flags().String("lock-command", "", "shell command run once on idle timeout")
	cmd.Flags().BoolP("quiet", "q", false, "suppress informational output")
	cmd.Flags().BoolP("verbose", "v", false, "enable debug logging")
	cmd.Flags().Bool("no-color", false, "disable colored output")
	cmd.Flags().String("language", "en", `message language ("en", "de")`)
	cmd.Flags().StringVar(&cfgFile, "config", "", "config file (default is sitekey.yaml in the user config dir)")

	return cmd
}

// defaults are registered into viper so environment variables resolve even
// when the matching flag is untouched.
func defaults() map[string]any {
	return map[string]any{
		"name":         "",
		"type":         "long",
		"counter":      1,
		"copy":         false,
		"clip-time":    45,
		"hide":         false,
		"delimiter":    "",
		"keepalive":    false,
		"idle-timeout": 0,
		"lock-command": "",
		"quiet":        false,
		"verbose":      false,
		"no-color":     false,
		"language":     "en",
	}
}

// run is the single entrypoint behind the root command: load config, obtain
// credentials, then dispatch to single-shot or the session loop.
func run(cmd *cobra.Command, args []string) error {
	optionalConfigPath, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}

	appConfig, err := config.LoadConfig[config.Config](cmd, defaults(), optionalConfigPath)
	if err != nil {
		return errors.New(i18n.T("config.error_load", err))
	}
	appConfig.Normalize()

	i18n.Init(appConfig.Language)
	logging.SetDebug(appConfig.Verbose)
	styles := ui.NewStyles(appConfig.NoColor)

	// The class and counter are validated up front against the published
	// class list so a bad command line fails before any credential entry.
	if !derive.ValidClass(appConfig.Type) {
		return errors.New(i18n.T("cli.error_unknown_type", appConfig.Type, derive.ClassList()))
	}
	if appConfig.Counter < 1 {
		return errors.New(i18n.T("cli.error_bad_counter", appConfig.Counter))
	}

	if appConfig.Copy && !clip.Available() {
		logging.Warnf("%s", i18n.T("cli.warn_no_clipboard"))
	}

	// One buffered reader is shared between credential entry and the session
	// loop so no typed-ahead line is lost between the two.
	stdin := bufio.NewReader(os.Stdin)

	key, err := obtainCredentials(stdin, appConfig, styles)
	if err != nil {
		return err
	}
	defer key.Zero()

	if len(args) == 1 {
		return runSingleShot(args[0], key, appConfig, styles, os.Stdout)
	}
	return runSession(stdin, key, appConfig, styles)
}

// obtainCredentials reads the identity name and master passphrase and
// stretches them into the master key. The passphrase bytes are zeroed before
// this function returns; only the derived key leaves it. Any failure here is
// fatal and exits nonzero, before a single derivation has happened.
func obtainCredentials(stdin *bufio.Reader, appConfig config.Config, styles *ui.Styles) (security.Secret, error) {
	name := appConfig.Name
	if name == "" {
		fmt.Fprint(os.Stderr, styles.Prompt.Render(i18n.T("cli.prompt_name")))
		line, err := stdin.ReadString('\n')
		if err != nil && line == "" {
			return nil, errors.New(i18n.T("cli.error_read_name", err))
		}
		name = strings.TrimSpace(line)
	}
	if name == "" {
		return nil, errors.New(i18n.T("cli.error_empty_name"))
	}

	var passphrase security.Secret
	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprint(os.Stderr, styles.Prompt.Render(i18n.T("cli.prompt_passphrase")))
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, errors.New(i18n.T("cli.error_read_passphrase", err))
		}
		passphrase = security.Secret(raw)
	} else {
		line, err := stdin.ReadString('\n')
		if err != nil && line == "" {
			return nil, errors.New(i18n.T("cli.error_read_passphrase", err))
		}
		passphrase = security.FromString(strings.TrimRight(line, "\r\n"))
	}
	defer passphrase.Zero()

	if len(passphrase) == 0 {
		return nil, errors.New(i18n.T("cli.error_empty_passphrase"))
	}

	var key []byte
	derr := passphrase.Use(func(pb []byte) error {
		var err error
		key, err = derive.MasterKey(name, pb)
		return err
	})
	if derr != nil {
		return nil, errors.New(i18n.T("cli.error_derive", derr))
	}
	logging.Debugf("master key derived for identity")
	return security.Secret(key), nil
}

// runSingleShot performs exactly one derive-and-deliver cycle: no prompts, no
// watchdog, no validation loop.
func runSingleShot(site string, key security.Secret, appConfig config.Config, styles *ui.Styles, out io.Writer) error {
	var password string
	derr := key.Use(func(kb []byte) error {
		var err error
		password, err = derivePassword(kb, site, appConfig.Type, uint32(appConfig.Counter))
		return err
	})
	if derr != nil {
		return derr
	}

	if appConfig.Copy {
		if err := clipCopy(password); err != nil {
			// Non-fatal: report, and fall through to display unless hidden.
			if appConfig.Hide {
				fmt.Fprintln(os.Stderr, styles.Error.Render(i18n.T("cli.error_hide_requires_clipboard", err)))
				return nil
			}
			fmt.Fprintln(os.Stderr, styles.Error.Render(i18n.T("clip.error_copy", err)))
		} else {
			if !appConfig.Quiet {
				fmt.Fprintln(os.Stderr, styles.Info.Render(i18n.T("clip.copied", site, appConfig.ClipTime)))
			}
			waitAndWipe(appConfig.ClipTime)
			return nil
		}
	}
	if !appConfig.Hide {
		fmt.Fprintln(out, styles.Secret.Render(password))
	}
	return nil
}

// waitAndWipe holds the process open until the clipboard wipe is due, then
// wipes. An interrupt wipes early instead of leaving the secret behind.
func waitAndWipe(seconds int) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)

	select {
	case <-time.After(time.Duration(seconds) * time.Second):
	case <-sig:
	}
	_ = clipWipe()
}

// runSession wires the watchdog, parameter reader, clear timer and loop, and
// runs until a graceful end. Quit, EOF, interrupt and timeout all exit zero.
func runSession(stdin io.Reader, key security.Secret, appConfig config.Config, styles *ui.Styles) error {
	watchdog := session.NewWatchdog(time.Duration(appConfig.IdleTimeout) * time.Second)

	interrupt := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)
	go func() {
		<-sig
		close(interrupt)
	}()

	reader := session.NewReader(stdin, os.Stdout, styles, watchdog, session.ReaderConfig{
		Delimiter:      appConfig.Delimiter,
		DefaultClass:   appConfig.Type,
		DefaultCounter: appConfig.Counter,
		Keepalive:      appConfig.Keepalive,
		Interrupt:      interrupt,
	})

	loop := session.NewLoop(key, reader, watchdog, clip.NewClearTimer(nil), os.Stdout, styles, session.LoopConfig{
		Copy:        appConfig.Copy,
		Hide:        appConfig.Hide,
		Quiet:       appConfig.Quiet,
		ClipTime:    time.Duration(appConfig.ClipTime) * time.Second,
		IdleTimeout: time.Duration(appConfig.IdleTimeout) * time.Second,
		LockCommand: appConfig.LockCommand,
	})

	logging.Debugf("session start: split=%v keepalive=%v idle-timeout=%ds",
		appConfig.SplitMode(), appConfig.Keepalive, appConfig.IdleTimeout)
	return loop.Run()
}

// getConfigPathFromCli returns the config file path when the user explicitly
// set the --config flag, after checking the file exists.
func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	if !cmd.Flags().Changed("config") {
		return nil, nil
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not read --config flag: %w", err)
	}
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	return &path, nil
}
