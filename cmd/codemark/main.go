// Command codemark converts annotated code samples between commented
// source text, documents and markup.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/codemark/core/config"
	cerrors "github.com/FocuswithJustin/codemark/core/errors"
	"github.com/FocuswithJustin/codemark/core/ir"
	"github.com/FocuswithJustin/codemark/core/registry"
	"github.com/FocuswithJustin/codemark/internal/archive"
	"github.com/FocuswithJustin/codemark/internal/logging"
)

var version = "0.1.0"

// CLI defines the command-line interface for codemark.
type CLI struct {
	// Global flags
	Config    string `name:"config" short:"c" help:"YAML configuration file" type:"path" env:"CODEMARK_CONFIG"`
	LogLevel  string `name:"log-level" help:"Override logging.level (debug, info, warn, error)"`
	LogFormat string `name:"log-format" help:"Override logging.format (text, json)"`
	Strict    bool   `help:"Fail when a conversion loses markup or annotations (L2 and above)"`

	Build       BuildCmd       `cmd:"" help:"Build a document from commented source text"`
	Serialize   SerializeCmd   `cmd:"" help:"Write a document back as commented source text"`
	Encode      EncodeCmd      `cmd:"" help:"Encode a document as markup XML"`
	Decode      DecodeCmd      `cmd:"" help:"Decode markup XML into a document"`
	Check       CheckCmd       `cmd:"" help:"Check that source text survives the text and markup round trips"`
	Extract     ExtractCmd     `cmd:"" help:"Build documents from the fenced code blocks of Markdown pages"`
	Annotations AnnotationsCmd `cmd:"" help:"List registered annotations"`
	DumpConfig  DumpConfigCmd  `cmd:"" name:"dump-config" help:"Print the effective configuration as YAML"`
	Serve       ServeCmd       `cmd:"" help:"Start the HTTP and WebSocket conversion service"`
	Version     VersionCmd     `cmd:"" help:"Print version information"`
}

// app is the state shared by every command.
type app struct {
	cli      *CLI
	loader   *config.Loader
	cfg      *config.Config
	registry *registry.Registry
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
}

func newApp(cli *CLI, stdin io.Reader, stdout, stderr io.Writer) (*app, error) {
	loader := config.NewLoader(config.EnvPrefix)
	if err := loader.LoadWithDefaults(config.Defaults(), cli.Config); err != nil {
		return nil, err
	}
	if cli.LogLevel != "" {
		if err := loader.Set("logging.level", cli.LogLevel); err != nil {
			return nil, err
		}
	}
	if cli.LogFormat != "" {
		if err := loader.Set("logging.format", cli.LogFormat); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Unmarshal(loader)
	if err != nil {
		return nil, err
	}
	logging.InitLoggerTo(stderr, logging.ParseLevel(cfg.Logging.Level), logging.ParseFormat(cfg.Logging.Format))

	reg, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	if cli.Config != "" {
		logging.Debug("configuration loaded", "path", cli.Config, "annotations", reg.Len())
	}

	return &app{
		cli:      cli,
		loader:   loader,
		cfg:      cfg,
		registry: reg,
		stdin:    stdin,
		stdout:   stdout,
		stderr:   stderr,
	}, nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("codemark"),
		kong.Description("codemark - reversible code-annotation engine"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Writers(stdout, stderr),
	)
	if err != nil {
		return err
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	a, err := newApp(&cli, stdin, stdout, stderr)
	if err != nil {
		return err
	}
	return ctx.Run(a)
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "codemark: %v\n", err)
		os.Exit(1)
	}
}

// Helper functions

func isStdio(path string) bool {
	return path == "" || path == "-"
}

// read returns the content of path, or of stdin for "-". gzip and xz
// content is decompressed.
func (a *app) read(path string) ([]byte, error) {
	if isStdio(path) {
		return archive.ReadAll(a.stdin)
	}
	data, err := archive.ReadFile(path)
	if err != nil {
		return nil, cerrors.NewIO("read", path, err)
	}
	return data, nil
}

// write writes data to path, or to stdout for "-". Paths ending in .gz or
// .xz are compressed.
func (a *app) write(path string, data []byte) error {
	if isStdio(path) {
		_, err := a.stdout.Write(data)
		return err
	}
	if err := archive.WriteFile(path, data); err != nil {
		return cerrors.NewIO("write", path, err)
	}
	return nil
}

func (a *app) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return a.write(path, append(data, '\n'))
}

// readDocument reads and validates a JSON document.
func (a *app) readDocument(path string) (*ir.Document, error) {
	data, err := a.read(path)
	if err != nil {
		return nil, err
	}
	var doc ir.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		perr := cerrors.NewParse("JSON", path, err.Error())
		perr.Err = err
		return nil, perr
	}
	if errs := ir.ValidateDocument(&doc); len(errs) > 0 {
		return nil, cerrors.Wrapf(errors.Join(errs...), "invalid document %s", path)
	}
	return &doc, nil
}

// finish logs a conversion and, with --strict, turns an L2 or worse loss
// into an error.
func (a *app) finish(op, input string, report *ir.LossReport, start time.Time) error {
	for _, w := range report.Warnings {
		logging.DirectiveSkipped(w, "input", input)
	}
	logging.Conversion(context.Background(), op, report, time.Since(start), "input", input)
	if a.cli.Strict && !report.LossClass.IsSemanticallyLossless() {
		return fmt.Errorf("%s %s: lossy conversion (%s, %d elements lost)", op, input, report.LossClass, len(report.LostElements))
	}
	return nil
}

// langFromPath returns the language named by a file extension, ignoring
// compression extensions.
func langFromPath(path string) string {
	if isStdio(path) {
		return ""
	}
	base := filepath.Base(path)
	base = strings.TrimSuffix(strings.TrimSuffix(base, ".xz"), ".gz")
	return strings.TrimPrefix(filepath.Ext(base), ".")
}

func (a *app) lang(flag, path string) string {
	if flag != "" {
		return flag
	}
	if l := langFromPath(path); l != "" {
		return l
	}
	return a.cfg.Source.Lang
}
