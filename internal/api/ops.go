package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/FocuswithJustin/codemark/core/directive"
	cerrors "github.com/FocuswithJustin/codemark/core/errors"
	"github.com/FocuswithJustin/codemark/core/ir"
	"github.com/FocuswithJustin/codemark/core/markup"
	"github.com/FocuswithJustin/codemark/core/source"
	"github.com/FocuswithJustin/codemark/internal/logging"
)

// Conversion operations, shared by the HTTP routes and WebSocket messages.
const (
	OpBuild     = "build"
	OpSerialize = "serialize"
	OpEncode    = "encode"
	OpDecode    = "decode"
)

// BuildRequest is the body of a build.
type BuildRequest struct {
	Text string `json:"text"`
	Lang string `json:"lang,omitempty"`
	Meta string `json:"meta,omitempty"`
}

// DocumentRequest carries a document for serialize and encode.
type DocumentRequest struct {
	Document *ir.Document `json:"document"`
}

// DecodeRequest carries the XML form of a markup tree.
type DecodeRequest struct {
	XML string `json:"xml"`
}

// DocumentResult is the result of build and decode.
type DocumentResult struct {
	Document    *ir.Document   `json:"document"`
	Report      *ir.LossReport `json:"report"`
	Fingerprint string         `json:"fingerprint"`
}

// SerializeResult is the result of serialize.
type SerializeResult struct {
	Text   string         `json:"text"`
	Report *ir.LossReport `json:"report"`
}

// EncodeResult is the result of encode. Report covers the tree encoding and
// XMLReport the XML writing.
type EncodeResult struct {
	XML       string         `json:"xml"`
	Report    *ir.LossReport `json:"report"`
	XMLReport *ir.LossReport `json:"xml_report"`
}

// execute runs op on a JSON body and logs the conversion.
func (s *Server) execute(ctx context.Context, op string, body []byte) (any, error) {
	start := time.Now()
	var (
		result any
		report *ir.LossReport
		err    error
	)

	switch op {
	case OpBuild:
		var req BuildRequest
		if err = decodeJSON(body, &req); err == nil {
			var res *DocumentResult
			res, err = s.build(req)
			result, report = res, reportOf(res)
		}
	case OpSerialize:
		var req DocumentRequest
		if err = decodeJSON(body, &req); err == nil {
			var res *SerializeResult
			res, err = s.serialize(req)
			if res != nil {
				result, report = res, res.Report
			}
		}
	case OpEncode:
		var req DocumentRequest
		if err = decodeJSON(body, &req); err == nil {
			var res *EncodeResult
			res, err = s.encode(req)
			if res != nil {
				result, report = res, res.Report
			}
		}
	case OpDecode:
		var req DecodeRequest
		if err = decodeJSON(body, &req); err == nil {
			var res *DocumentResult
			res, err = s.decode(req)
			result, report = res, reportOf(res)
		}
	default:
		return nil, cerrors.NewUnsupported("operation", fmt.Sprintf("%q is not one of build, serialize, encode, decode", op))
	}

	if err != nil {
		return nil, err
	}
	logging.Conversion(ctx, op, report, time.Since(start))
	return result, nil
}

func reportOf(res *DocumentResult) *ir.LossReport {
	if res == nil {
		return nil
	}
	return res.Report
}

func (s *Server) build(req BuildRequest) (*DocumentResult, error) {
	lang := req.Lang
	if lang == "" {
		lang = s.lang
	}
	doc, report := source.BuildWithReport(req.Text, source.Options{
		Registry: s.registry,
		Lang:     lang,
		Meta:     directive.ParseMeta(req.Meta),
	})
	for _, w := range report.Warnings {
		logging.DirectiveSkipped(w)
	}
	return documentResult(doc, report)
}

func (s *Server) serialize(req DocumentRequest) (*SerializeResult, error) {
	if err := checkDocument(req.Document); err != nil {
		return nil, err
	}
	text, report := source.SerializeWithReport(req.Document, source.Options{Registry: s.registry})
	return &SerializeResult{Text: text, Report: report}, nil
}

func (s *Server) encode(req DocumentRequest) (*EncodeResult, error) {
	if err := checkDocument(req.Document); err != nil {
		return nil, err
	}
	root, report := markup.Encode(req.Document, s.registry)
	data, xmlReport := markup.MarshalXML(root)
	return &EncodeResult{XML: string(data), Report: report, XMLReport: xmlReport}, nil
}

func (s *Server) decode(req DecodeRequest) (*DocumentResult, error) {
	root, err := markup.UnmarshalXML([]byte(req.XML))
	if err != nil {
		return nil, err
	}
	doc, report := markup.Decode(root, s.registry)
	return documentResult(doc, report)
}

func documentResult(doc *ir.Document, report *ir.LossReport) (*DocumentResult, error) {
	fp, err := ir.Fingerprint(doc)
	if err != nil {
		return nil, cerrors.Wrap(err, "fingerprinting document")
	}
	return &DocumentResult{Document: doc, Report: report, Fingerprint: fp}, nil
}

func checkDocument(doc *ir.Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is required", cerrors.ErrInvalidInput)
	}
	if errs := ir.ValidateDocument(doc); len(errs) > 0 {
		return fmt.Errorf("%w: %w", cerrors.ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}

func decodeJSON(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		perr := cerrors.NewParse("JSON", "", err.Error())
		perr.Err = fmt.Errorf("%w: %w", cerrors.ErrInvalidInput, err)
		return perr
	}
	return nil
}
