// Package validation checks request payloads against embedded JSON Schemas
// before they reach the services.
package validation

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/isdelr/cabinet-be/internal/apperr"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Schema names, one per mutating endpoint.
const (
	Register     = "register"
	Login        = "login"
	Recipe       = "recipe"
	RecipeUpdate = "recipe_update"
	Favorite     = "favorite"
	Author       = "author"
	Book         = "book"
)

// Validator holds the compiled schemas.
type Validator struct {
	schemas map[string]*jsonschema.Schema
	printer *message.Printer
}

// New compiles every embedded schema.
func New() (*Validator, error) {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("failed to read schemas: %w", err)
	}

	c := jsonschema.NewCompiler()
	c.DefaultDraft(jsonschema.Draft2020)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		data, err := schemaFS.ReadFile(path.Join("schemas", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", e.Name(), err)
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse schema %s: %w", e.Name(), err)
		}
		if err := c.AddResource(e.Name(), doc); err != nil {
			return nil, fmt.Errorf("failed to add schema resource %s: %w", e.Name(), err)
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}

	v := &Validator{
		schemas: make(map[string]*jsonschema.Schema, len(names)),
		printer: message.NewPrinter(language.English),
	}
	for _, name := range names {
		sch, err := c.Compile(name + ".json")
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
		}
		v.schemas[name] = sch
	}
	return v, nil
}

// Decode validates body against the named schema and, on success, decodes it
// into dst. An empty body is treated as an empty object. Failures are returned
// as *apperr.ValidationError.
func (v *Validator) Decode(name string, body []byte, dst any) error {
	sch, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		body = []byte("{}")
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return apperr.NewValidationError("Request body must be valid JSON.")
	}

	if err := sch.Validate(inst); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return apperr.NewValidationError(v.messages(ve)...)
		}
		return err
	}

	if dst == nil {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperr.NewValidationError("Request body must be valid JSON.")
	}
	return nil
}

// messages flattens the error tree into sorted `"field": message` lines.
func (v *Validator) messages(ve *jsonschema.ValidationError) []string {
	var out []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, c := range e.Causes {
				walk(c)
			}
			return
		}
		out = append(out, v.leafMessages(e)...)
	}
	walk(ve)
	sort.Strings(out)
	return out
}

func (v *Validator) leafMessages(e *jsonschema.ValidationError) []string {
	switch k := e.ErrorKind.(type) {
	case *kind.Required:
		lines := make([]string, 0, len(k.Missing))
		for _, field := range k.Missing {
			lines = append(lines, fieldLine(append(append([]string{}, e.InstanceLocation...), field), "Required"))
		}
		return lines
	case *kind.MinLength:
		if k.Want == 1 {
			return []string{fieldLine(e.InstanceLocation, "must not be empty")}
		}
	case *kind.Pattern:
		return []string{fieldLine(e.InstanceLocation, v.printer.Sprintf("%q does not match %s", k.Got, k.Want))}
	}
	return []string{fieldLine(e.InstanceLocation, e.ErrorKind.LocalizedString(v.printer))}
}

func fieldLine(loc []string, msg string) string {
	if len(loc) == 0 {
		return msg
	}
	return fmt.Sprintf("%q: %s", strings.Join(loc, "."), msg)
}
