// Package validation checks listing payloads and raw marketplace exports
// against embedded JSON Schemas.
package validation

import (
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var printer = message.NewPrinter(language.English)

var (
	// Listing describes a single listing payload.
	Listing = mustLoad("listing.schema.json")
	// RawModels describes a raw marketplace export.
	RawModels = mustLoad("raw_models.schema.json")
)

// Violation is one schema failure at a JSON pointer.
type Violation struct {
	Pointer string
	Message string
}

func (v Violation) String() string {
	return v.Pointer + ": " + v.Message
}

// Schema is a compiled embedded schema.
type Schema struct {
	name     string
	compiled *jsonschema.Schema
}

// Name returns the embedded file name.
func (s *Schema) Name() string { return s.name }

func mustLoad(name string) *Schema {
	f, err := schemaFS.Open(path.Join("schemas", name))
	if err != nil {
		panic(fmt.Sprintf("opening %s: %v", name, err))
	}
	defer f.Close() //nolint:errcheck

	doc, err := jsonschema.UnmarshalJSON(f)
	if err != nil {
		panic(fmt.Sprintf("parsing %s: %v", name, err))
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, doc); err != nil {
		panic(fmt.Sprintf("adding %s: %v", name, err))
	}
	compiled, err := c.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("compiling %s: %v", name, err))
	}
	return &Schema{name: name, compiled: compiled}
}

// Validate checks a document decoded with jsonschema.UnmarshalJSON and
// returns every leaf violation ordered by pointer.
func (s *Schema) Validate(instance any) []Violation {
	err := s.compiled.Validate(instance)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []Violation{{Pointer: "/", Message: err.Error()}}
	}
	var out []Violation
	walk(ve, &out)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Pointer < out[j].Pointer })
	return out
}

func walk(ve *jsonschema.ValidationError, out *[]Violation) {
	for _, c := range ve.Causes {
		walk(c, out)
	}
	if len(ve.Causes) > 0 {
		return
	}
	*out = append(*out, Violation{
		Pointer: "/" + strings.Join(ve.InstanceLocation, "/"),
		Message: ve.ErrorKind.LocalizedString(printer),
	})
}

// Strings renders violations as "pointer: message".
func Strings(vs []Violation) []string {
	if len(vs) == 0 {
		return nil
	}
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return out
}

// ValidateListing validates a decoded listing payload.
func ValidateListing(instance any) []string {
	return Strings(Listing.Validate(instance))
}
