package main

import (
	"fmt"
	"go/token"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"unicode"

	"github.com/ftcan-dash/ftcan-go/pkg/catalog"
)

// funcMap provides helper functions available to the template.
var funcMap = template.FuncMap{
	"hex4":  func(v uint16) string { return fmt.Sprintf("0x%04X", v) },
	"quote": func(s string) string { return strconv.Quote(s) },
	"float": func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) },
}

const catalogTmpl = `// Code generated by ftcan-catgen from {{.Source}}. DO NOT EDIT.

package {{.Package}}

// DataID codes.
const (
{{- range .Entries}}
	Code{{.Const}} uint16 = {{hex4 .Code}}
{{- end}}
)

var defaultDescriptors = []Descriptor{
{{- range .Entries}}
	{Code: Code{{.Const}}, Name: {{quote .Name}}, Unit: {{quote .Unit}}, Scale: {{float .Scale}}, Signed: {{.Signed}}, Field: Field{{.Field}}},
{{- end}}
}
`

var catalogTemplate = template.Must(template.New("catalog").Funcs(funcMap).Parse(catalogTmpl))

type catalogData struct {
	Package string
	Source  string
	Entries []entryData
}

type entryData struct {
	Code   uint16
	Const  string
	Name   string
	Unit   string
	Scale  float64
	Signed bool
	Field  string
}

// Generate renders the DataID table for entries, sorted by code. Constant
// names come from the entry's const key, or from its name when unset.
func Generate(pkg, source string, entries []catalog.Entry) (string, error) {
	data := catalogData{Package: pkg, Source: source}
	consts := make(map[string]uint16, len(entries))

	for _, e := range entries {
		desc, err := e.Descriptor()
		if err != nil {
			return "", err
		}

		name := e.Const
		if name == "" {
			name = goTitleCase(e.Name)
		}
		if !token.IsIdentifier("Code"+name) {
			return "", fmt.Errorf("0x%04X: invalid constant name %q", e.Code, name)
		}
		if prev, dup := consts[name]; dup {
			return "", fmt.Errorf("0x%04X: constant Code%s already used by 0x%04X", e.Code, name, prev)
		}
		consts[name] = e.Code

		data.Entries = append(data.Entries, entryData{
			Code:   desc.Code,
			Const:  name,
			Name:   desc.Name,
			Unit:   desc.Unit,
			Scale:  desc.Scale,
			Signed: desc.Signed,
			Field:  desc.Field.String(),
		})
	}
	sort.Slice(data.Entries, func(i, j int) bool {
		return data.Entries[i].Code < data.Entries[j].Code
	})

	var b strings.Builder
	if err := catalogTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("template: %w", err)
	}
	return b.String(), nil
}

// goTitleCase converts a display name to a Go identifier suffix.
// "Air temperature" becomes "AirTemperature"; all-caps words such as "RPM"
// or "O2" are kept as they are.
func goTitleCase(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var b strings.Builder
	for _, w := range words {
		if w == strings.ToUpper(w) {
			b.WriteString(w)
			continue
		}
		runes := []rune(w)
		b.WriteRune(unicode.ToUpper(runes[0]))
		b.WriteString(strings.ToLower(string(runes[1:])))
	}
	return b.String()
}
