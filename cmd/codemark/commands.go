package main

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/FocuswithJustin/codemark/core/directive"
	cerrors "github.com/FocuswithJustin/codemark/core/errors"
	"github.com/FocuswithJustin/codemark/core/ir"
	"github.com/FocuswithJustin/codemark/core/markdown"
	"github.com/FocuswithJustin/codemark/core/markup"
	"github.com/FocuswithJustin/codemark/core/source"
	"github.com/FocuswithJustin/codemark/internal/api"
	"github.com/FocuswithJustin/codemark/internal/archive"
	"github.com/FocuswithJustin/codemark/internal/logging"
	"github.com/FocuswithJustin/codemark/internal/server"
)

// BuildCmd builds a document from commented source text.
type BuildCmd struct {
	Input  string `arg:"" optional:"" default:"-" help:"Source file, or - for stdin"`
	Lang   string `help:"Block language (default: file extension, then source.lang)"`
	Meta   string `help:"Block metadata, e.g. 'title=\"a.ts\" showLineNumbers'"`
	Output string `short:"o" default:"-" help:"Output file for the document JSON"`
}

func (c *BuildCmd) Run(a *app) error {
	start := time.Now()
	data, err := a.read(c.Input)
	if err != nil {
		return err
	}
	doc, report := source.BuildWithReport(string(data), a.sourceOptions(a.lang(c.Lang, c.Input), directive.ParseMeta(c.Meta)))
	if err := a.finish("build", c.Input, report, start); err != nil {
		return err
	}
	return a.writeJSON(c.Output, doc)
}

// SerializeCmd writes a document back as commented source text.
type SerializeCmd struct {
	Input  string `arg:"" optional:"" default:"-" help:"Document JSON file, or - for stdin"`
	Lang   string `help:"Comment syntax language (default: the document's)"`
	Output string `short:"o" default:"-" help:"Output file for the source text"`
}

func (c *SerializeCmd) Run(a *app) error {
	start := time.Now()
	doc, err := a.readDocument(c.Input)
	if err != nil {
		return err
	}
	text, report := source.SerializeWithReport(doc, a.sourceOptions(c.Lang, nil))
	if err := a.finish("serialize", c.Input, report, start); err != nil {
		return err
	}
	return a.write(c.Output, []byte(text))
}

// EncodeCmd encodes a document as markup.
type EncodeCmd struct {
	Input  string `arg:"" optional:"" default:"-" help:"Document JSON file, or - for stdin"`
	Tree   bool   `help:"Write the markup tree as JSON instead of XML"`
	Output string `short:"o" default:"-" help:"Output file"`
}

func (c *EncodeCmd) Run(a *app) error {
	start := time.Now()
	doc, err := a.readDocument(c.Input)
	if err != nil {
		return err
	}
	root, report := markup.Encode(doc, a.registry)
	if err := a.finish("encode", c.Input, report, start); err != nil {
		return err
	}
	if c.Tree {
		return a.writeJSON(c.Output, root)
	}
	data, xmlReport := markup.MarshalXML(root)
	if err := a.finish("encode_xml", c.Input, xmlReport, start); err != nil {
		return err
	}
	return a.write(c.Output, append(data, '\n'))
}

// DecodeCmd decodes markup XML into a document.
type DecodeCmd struct {
	Input  string `arg:"" optional:"" default:"-" help:"Markup XML file, or - for stdin"`
	Text   bool   `xor:"form" help:"Write commented source text instead of document JSON"`
	All    bool   `xor:"form" help:"Decode every codeblock element of a larger XML page into a JSON list"`
	Output string `short:"o" default:"-" help:"Output file"`
}

func (c *DecodeCmd) Run(a *app) error {
	start := time.Now()
	data, err := a.read(c.Input)
	if err != nil {
		return err
	}
	if c.All {
		return c.runAll(a, data, start)
	}

	root, err := markup.UnmarshalXML(data)
	if err != nil {
		return cerrors.Wrapf(err, "decoding %s", c.Input)
	}
	doc, report := markup.Decode(root, a.registry)
	if err := a.finish("decode", c.Input, report, start); err != nil {
		return err
	}
	if c.Text {
		text, sreport := source.SerializeWithReport(doc, a.sourceOptions("", nil))
		if err := a.finish("serialize", c.Input, sreport, start); err != nil {
			return err
		}
		return a.write(c.Output, []byte(text))
	}
	return a.writeJSON(c.Output, doc)
}

func (c *DecodeCmd) runAll(a *app, data []byte, start time.Time) error {
	roots, err := markup.UnmarshalXMLAll(data)
	if err != nil {
		return cerrors.Wrapf(err, "decoding %s", c.Input)
	}
	docs := make([]*ir.Document, len(roots))
	for i, root := range roots {
		doc, report := markup.Decode(root, a.registry)
		if err := a.finish("decode", fmt.Sprintf("%s#%d", c.Input, i), report, start); err != nil {
			return err
		}
		docs[i] = doc
	}
	return a.writeJSON(c.Output, docs)
}

// CheckResult is the outcome of checking one input.
type CheckResult struct {
	Input       string       `json:"input"`
	Lang        string       `json:"lang"`
	Fingerprint string       `json:"fingerprint"`
	Annotations int          `json:"annotations"`
	Text        bool         `json:"text"`
	Markup      bool         `json:"markup"`
	LossClass   ir.LossClass `json:"loss_class"`
	Lossless    bool         `json:"lossless"`
	Warnings    []string     `json:"warnings,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// OK reports whether both round trips reproduced the document.
func (r CheckResult) OK() bool {
	return r.Error == "" && r.Text && r.Markup
}

// CheckCmd checks that source text survives both round trips:
// build, serialize and build again; and build, encode to XML and decode.
type CheckCmd struct {
	Inputs []string `arg:"" optional:"" help:"Source files (default: stdin)"`
	Lang   string   `help:"Block language (default: file extension, then source.lang)"`
	Output string   `short:"o" default:"-" help:"Output file for the results JSON"`
}

func (c *CheckCmd) Run(a *app) error {
	inputs := c.Inputs
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}

	results := make([]CheckResult, 0, len(inputs))
	failed := 0
	for _, input := range inputs {
		res := a.check(input, a.lang(c.Lang, input))
		if !res.OK() {
			failed++
			logging.Warn("round trip failed", "input", input, "text", res.Text, "markup", res.Markup, "error", res.Error)
		}
		results = append(results, res)
	}
	if err := a.writeJSON(c.Output, results); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed the round trip", failed, len(inputs))
	}
	return nil
}

func (a *app) check(input, lang string) CheckResult {
	res := CheckResult{Input: input, Lang: lang}
	data, err := a.read(input)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	opts := a.sourceOptions(lang, nil)
	doc, report := source.BuildWithReport(string(data), opts)
	res.Warnings = report.Warnings
	res.Annotations = len(doc.Annotations) + doc.InlineCount()
	want, err := ir.Fingerprint(doc)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Fingerprint = want

	text, sreport := source.SerializeWithReport(doc, opts)
	res.LossClass = worst(res.LossClass, sreport.LossClass)
	res.Text = fingerprintIs(source.Build(text, opts), want)

	root, ereport := markup.Encode(doc, a.registry)
	xmlData, xreport := markup.MarshalXML(root)
	res.LossClass = worst(res.LossClass, ereport.LossClass, xreport.LossClass)
	decodedRoot, err := markup.UnmarshalXML(xmlData)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	decoded, dreport := markup.Decode(decodedRoot, a.registry)
	res.LossClass = worst(res.LossClass, dreport.LossClass)
	res.Markup = fingerprintIs(decoded, want)
	res.Lossless = res.LossClass.IsLossless()
	return res
}

func fingerprintIs(doc *ir.Document, want string) bool {
	got, err := ir.Fingerprint(doc)
	return err == nil && got == want
}

func worst(classes ...ir.LossClass) ir.LossClass {
	out := ir.LossL0
	for _, c := range classes {
		if c.Level() > out.Level() {
			out = c
		}
	}
	return out
}

// Page is the build result of one Markdown page.
type Page struct {
	Path   string            `json:"path"`
	Blocks []markdown.Result `json:"blocks"`
}

// ExtractCmd builds every fenced code block of Markdown pages. Inputs may
// be Markdown files or tar bundles (.tar, .tar.gz, .tar.xz) of pages.
type ExtractCmd struct {
	Inputs []string `arg:"" optional:"" help:"Markdown files or tar bundles (default: stdin)"`
	Output string   `short:"o" default:"-" help:"Output file for the pages JSON"`
}

func (c *ExtractCmd) Run(a *app) error {
	inputs := c.Inputs
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}

	pages := []Page{}
	for _, input := range inputs {
		if !isStdio(input) && archive.IsTar(input) {
			err := archive.Iterate(input, func(h *tar.Header, r io.Reader) (bool, error) {
				if !isMarkdown(h.Name) {
					return false, nil
				}
				data, err := io.ReadAll(r)
				if err != nil {
					return true, err
				}
				pages = append(pages, a.page(input+"/"+h.Name, data))
				return false, nil
			})
			if err != nil {
				return cerrors.NewIO("read", input, err)
			}
			continue
		}

		data, err := a.read(input)
		if err != nil {
			return err
		}
		pages = append(pages, a.page(input, data))
	}
	return a.writeJSON(c.Output, pages)
}

func (a *app) page(path string, data []byte) Page {
	start := time.Now()
	results := markdown.Build(data, a.sourceOptions(a.cfg.Source.Lang, nil))
	for i, r := range results {
		// The report is only logged; lossy blocks still appear in the output.
		_ = a.finish("build", fmt.Sprintf("%s#%d", path, i), r.Report, start)
	}
	logging.Info("page extracted", "path", path, "blocks", len(results))
	return Page{Path: path, Blocks: results}
}

func isMarkdown(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown", ".mdx":
		return true
	}
	return false
}

// AnnotationsCmd lists the registered annotations.
type AnnotationsCmd struct {
	Names []string `arg:"" optional:"" help:"Only show these annotations"`
	JSON  bool     `help:"Write JSON instead of a table"`
}

func (c *AnnotationsCmd) Run(a *app) error {
	items := a.registry.Items()
	if len(c.Names) > 0 {
		items = items[:0]
		for _, name := range c.Names {
			it, ok := a.registry.Lookup(name)
			if !ok {
				return cerrors.NewNotFound("annotation", name)
			}
			items = append(items, it)
		}
	}
	if c.JSON {
		return a.writeJSON("-", items)
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tTARGET\tSCOPES")
	for _, it := range items {
		scopes := make([]string, len(it.Scopes))
		for i, s := range it.Scopes {
			scopes[i] = string(s)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.Name, it.Kind, it.Target(), strings.Join(scopes, ","))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "\n%d annotations, registry %s\n", a.registry.Len(), a.registry.Fingerprint())
	return nil
}

// DumpConfigCmd prints the effective configuration.
type DumpConfigCmd struct{}

func (c *DumpConfigCmd) Run(a *app) error {
	return a.loader.DumpYAML(a.stdout)
}

// ServeCmd starts the conversion service.
type ServeCmd struct {
	Addr string `help:"Listen address (overrides server.addr)"`
}

func (c *ServeCmd) Run(a *app) error {
	if c.Addr != "" {
		a.cfg.Server.Addr = c.Addr
	}
	if a.cli.Config != "" {
		logging.Info("using configuration", "path", server.AbsPath(a.cli.Config))
	}

	s, err := api.New(a.cfg, version)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.ListenAndServe(ctx)
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(a *app) error {
	fmt.Fprintf(a.stdout, "codemark version %s\n", version)
	return nil
}

func (a *app) sourceOptions(lang string, meta ir.Meta) source.Options {
	return source.Options{Registry: a.registry, Lang: lang, Meta: meta}
}
