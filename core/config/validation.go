package config

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/FocuswithJustin/codemark/core/directive"
	"github.com/FocuswithJustin/codemark/core/registry"
)

// Path is a dotted path to a config field, used in error messages.
type Path struct {
	segments []string
}

// NewPath creates a path with a root segment.
func NewPath(root string) *Path {
	return &Path{segments: []string{root}}
}

// Child returns a new path with name appended.
func (p *Path) Child(name string) *Path {
	segments := make([]string, len(p.segments)+1)
	copy(segments, p.segments)
	segments[len(p.segments)] = name
	return &Path{segments: segments}
}

// Index returns a new path with an index on the last segment.
func (p *Path) Index(i int) *Path {
	segments := slices.Clone(p.segments)
	segments[len(segments)-1] = fmt.Sprintf("%s[%d]", segments[len(segments)-1], i)
	return &Path{segments: segments}
}

func (p *Path) String() string {
	return strings.Join(p.segments, ".")
}

// FieldError is a validation error for one field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects field errors.
type ValidationErrors []*FieldError

func (ve ValidationErrors) Error() string {
	var b strings.Builder
	b.WriteString("invalid configuration:")
	for _, e := range ve {
		b.WriteString("\n- ")
		b.WriteString(e.Error())
	}
	return b.String()
}

// OrNil returns nil when there are no errors.
func (ve ValidationErrors) OrNil() error {
	if len(ve) == 0 {
		return nil
	}
	return ve
}

func (ve *ValidationErrors) add(err *FieldError) {
	if err != nil {
		*ve = append(*ve, err)
	}
}

func invalid(path *Path, msg string) *FieldError {
	return &FieldError{Field: path.String(), Message: msg}
}

func mustBeOneOf(path *Path, value string, allowed []string) *FieldError {
	if slices.Contains(allowed, value) {
		return nil
	}
	return invalid(path, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
}

func mustBeGreaterThan[T cmp.Ordered](path *Path, value, min T) *FieldError {
	if value <= min {
		return invalid(path, fmt.Sprintf("must be greater than %v", min))
	}
	return nil
}

func mustBeNonNegative[T cmp.Ordered](path *Path, value T) *FieldError {
	var zero T
	if value < zero {
		return invalid(path, "must be non-negative")
	}
	return nil
}

// Validate checks the configuration and reports every problem found.
// Annotation definitions are checked again, fully, when the registry is
// built.
func (c *Config) Validate() error {
	var errs ValidationErrors

	seen := map[string]bool{}
	if c.NativeAnnotations {
		for _, item := range registry.DefaultConfig() {
			seen[item.Name] = true
		}
	}
	annotations := NewPath("annotations")
	for i, item := range c.Annotations {
		p := annotations.Index(i).Child("name")
		switch {
		case !directive.ValidName(item.Name):
			errs.add(invalid(p, fmt.Sprintf("%q is not a valid annotation name", item.Name)))
		case seen[item.Name]:
			errs.add(invalid(p, fmt.Sprintf("%q is already defined", item.Name)))
		}
		seen[item.Name] = true
	}

	logging := NewPath("logging")
	errs.add(mustBeOneOf(logging.Child("level"), strings.ToLower(c.Logging.Level), []string{"debug", "info", "warn", "error"}))
	errs.add(mustBeOneOf(logging.Child("format"), strings.ToLower(c.Logging.Format), []string{"text", "json"}))

	server := NewPath("server")
	if c.Server.Addr == "" {
		errs.add(invalid(server.Child("addr"), "is required"))
	}
	errs.add(mustBeGreaterThan(server.Child("read_timeout"), c.Server.ReadTimeout, 0))
	errs.add(mustBeGreaterThan(server.Child("write_timeout"), c.Server.WriteTimeout, 0))
	errs.add(mustBeNonNegative(server.Child("shutdown_timeout"), c.Server.ShutdownTimeout))
	errs.add(mustBeGreaterThan(server.Child("max_body_bytes"), c.Server.MaxBodyBytes, 0))
	errs.add(mustBeNonNegative(server.Child("cache_bytes"), c.Server.CacheBytes))
	for i, origin := range c.Server.AllowedOrigins {
		if origin == "" {
			errs.add(invalid(server.Child("allowed_origins").Index(i), "must not be empty"))
		}
	}

	return errs.OrNil()
}
