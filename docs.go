package exprun

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/jcormont/expression-runner/builtins"
	"github.com/jcormont/expression-runner/object"
)

// Version is the current version of the expression language and its IR.
const Version = "1.0.0"

// DocsOption configures documentation retrieval.
type DocsOption func(*docsOptions)

type docsOptions struct {
	category string
	topic    string
	all      bool
}

// DocsCategory filters documentation to a specific category.
// Valid categories: "builtins", "types", "syntax", "errors"
func DocsCategory(cat string) DocsOption {
	return func(o *docsOptions) {
		o.category = cat
	}
}

// DocsTopic retrieves documentation for a specific topic, such as a
// function name ("sortBy"), a type ("string") or a method ("string.split").
func DocsTopic(topic string) DocsOption {
	return func(o *docsOptions) {
		o.topic = topic
	}
}

// DocsAll returns complete documentation.
func DocsAll() DocsOption {
	return func(o *docsOptions) {
		o.all = true
	}
}

// Documentation provides structured access to the language documentation.
type Documentation struct {
	data any
}

// JSON returns the documentation as a JSON string.
func (d *Documentation) JSON() string {
	b, _ := json.MarshalIndent(d.data, "", "  ")
	return string(b)
}

// Data returns the raw documentation data.
func (d *Documentation) Data() any {
	return d.data
}

type docsInfo struct {
	Version        string `json:"version"`
	Description    string `json:"description"`
	ExecutionModel string `json:"execution_model"`
}

type docsTypeInfo struct {
	Name    string            `json:"name"`
	Doc     string            `json:"doc"`
	Methods []object.AttrSpec `json:"methods,omitempty"`
}

type docsSyntaxItem struct {
	Syntax string `json:"syntax"`
	Notes  string `json:"notes"`
}

type docsSyntaxSection struct {
	Name  string           `json:"name"`
	Items []docsSyntaxItem `json:"items"`
}

type docsErrorPattern struct {
	Code           string `json:"code"`
	MessagePattern string `json:"message_pattern"`
	Cause          string `json:"cause"`
	Example        string `json:"example"`
}

type docsFullDocumentation struct {
	Info     docsInfo            `json:"info"`
	Builtins []object.FuncSpec   `json:"builtins"`
	Types    []docsTypeInfo      `json:"types"`
	Syntax   []docsSyntaxSection `json:"syntax"`
	Errors   []docsErrorPattern  `json:"errors"`
}

// Docs returns structured documentation about the expression language,
// for tooling and the command line.
//
//	docs := exprun.Docs(exprun.DocsCategory("builtins"))
//	fmt.Println(docs.JSON())
func Docs(opts ...DocsOption) *Documentation {
	o := &docsOptions{}
	for _, opt := range opts {
		opt(o)
	}
	switch {
	case o.topic != "":
		return &Documentation{data: buildTopicDocs(o.topic)}
	case o.category != "" && !o.all:
		return &Documentation{data: buildCategoryDocs(o.category)}
	}
	return &Documentation{data: buildFullDocumentation()}
}

var info = docsInfo{
	Version:        Version,
	Description:    "Sandboxed JavaScript-like expressions for Go",
	ExecutionModel: "source → lexer → parser → compiler → IR → vm",
}

var typeDocs = map[string]string{
	"string": "Text; indexes give UTF-16 code units",
	"array":  "Mutable ordered list",
	"number": "64-bit floating point number",
	"regexp": "Regular expression created with regexp()",
	"date":   "Point in time created with date() or dateUTC()",
	"object": "Plain object; only own properties can be read",
}

func buildTypes() []docsTypeInfo {
	attrs := object.TypeAttrs()
	names := make([]string, 0, len(typeDocs))
	for name := range typeDocs {
		names = append(names, name)
	}
	sort.Strings(names)
	types := make([]docsTypeInfo, 0, len(names))
	for _, name := range names {
		types = append(types, docsTypeInfo{Name: name, Doc: typeDocs[name], Methods: attrs[name]})
	}
	return types
}

func buildFullDocumentation() docsFullDocumentation {
	return docsFullDocumentation{
		Info:     info,
		Builtins: builtins.Docs(),
		Types:    buildTypes(),
		Syntax:   docsSyntaxSections,
		Errors:   docsErrorPatterns,
	}
}

func buildCategoryDocs(category string) any {
	switch category {
	case "builtins":
		return map[string]any{
			"category":    "builtins",
			"description": "Functions available to every expression",
			"count":       len(builtins.Docs()),
			"functions":   builtins.Docs(),
		}
	case "types":
		return map[string]any{
			"category":    "types",
			"description": "Value types and the properties expressions may read",
			"types":       buildTypes(),
		}
	case "syntax":
		return map[string]any{
			"category":    "syntax",
			"description": "Syntax reference",
			"sections":    docsSyntaxSections,
		}
	case "errors":
		return map[string]any{
			"category":    "errors",
			"description": "Error messages and their causes",
			"patterns":    docsErrorPatterns,
		}
	}
	return map[string]any{
		"error":      "unknown category: " + category,
		"categories": []string{"builtins", "types", "syntax", "errors"},
	}
}

func buildTopicDocs(topic string) any {
	if spec, ok := builtins.Doc(topic); ok {
		return spec
	}
	typeName, method, hasMethod := strings.Cut(topic, ".")
	for _, t := range buildTypes() {
		if t.Name != typeName {
			continue
		}
		if !hasMethod {
			return t
		}
		if attr, ok := object.FindAttr(t.Methods, method); ok {
			return attr
		}
	}
	return map[string]any{"error": "unknown topic: " + topic}
}

var docsSyntaxSections = []docsSyntaxSection{
	{
		Name: "literals",
		Items: []docsSyntaxItem{
			{Syntax: "42, 1.5e3, 0xff, .5", Notes: "Numbers"},
			{Syntax: `"text", 'text'`, Notes: "Strings with JavaScript escapes"},
			{Syntax: "true, false, null, undefined", Notes: "Constants"},
			{Syntax: "[1, ...rest]", Notes: "Arrays, with spread"},
			{Syntax: "{a: 1, \"b c\": 2, d, ...other}", Notes: "Objects, with shorthand properties and spread"},
		},
	},
	{
		Name: "operators",
		Items: []docsSyntaxItem{
			{Syntax: "+ - * / %", Notes: "Arithmetic; + concatenates if either side is a string"},
			{Syntax: "== != === !== < <= > >= in", Notes: "Comparison"},
			{Syntax: "&& || ??", Notes: "Logical and nullish coalescing; the right side is only evaluated if needed"},
			{Syntax: "& | ^ << >> >>> ~", Notes: "Bitwise on 32-bit integers"},
			{Syntax: "! - + typeof", Notes: "Unary"},
			{Syntax: "cond ? a : b", Notes: "Conditional"},
		},
	},
	{
		Name: "access",
		Items: []docsSyntaxItem{
			{Syntax: "a.b, a[expr]", Notes: "Property and index access; reading through undefined or null is an error"},
			{Syntax: "a?.b, a?.[expr], f?.()", Notes: "Optional chaining stops at undefined or null"},
			{Syntax: "f(x, ...args)", Notes: "Calls of registered functions and arrow functions"},
			{Syntax: "x => expr, (a, b) => expr", Notes: "Arrow functions with a single expression body"},
		},
	},
	{
		Name: "statements",
		Items: []docsSyntaxItem{
			{Syntax: "a = 1, a += 1", Notes: "Assignment, when allowed"},
			{Syntax: "a = 1; b = 2", Notes: "Statements separated by semicolons or newlines, when allowed"},
			{Syntax: "if (cond) { a; b } else c", Notes: "Conditional statements, when statements are allowed"},
			{Syntax: "$_", Notes: "Value of the last top level statement"},
		},
	},
}

var docsErrorPatterns = []docsErrorPattern{
	{Code: "E1002", MessagePattern: "Unexpected <token> at line <n>: <text>", Cause: "Syntax error", Example: "1 +"},
	{Code: "E1005", MessagePattern: "Assignment not allowed in this expression", Cause: "Assignment used without WithAssignment, or below the top level", Example: "a = 1"},
	{Code: "E3001", MessagePattern: "Variable is not defined: <name>", Cause: "Name is neither a variable nor a registered function", Example: "undefinedName + 1"},
	{Code: "E3002", MessagePattern: "Cannot read property <path> of undefined value <value>", Cause: "Property read through undefined or null; use ?. to allow it", Example: "a.b.c"},
	{Code: "E3003", MessagePattern: "Cannot assign to <path>", Cause: "Write to a property that is not a plain object key or array index", Example: "s.length = 1"},
	{Code: "E3004", MessagePattern: "Not a function", Cause: "Call of a value that is not a function", Example: "(1)()"},
	{Code: "E3005", MessagePattern: "Cannot overwrite native function <path>", Cause: "Write over a function stored in an object", Example: "o.f = 1"},
	{Code: "E3007", MessagePattern: "Maximum call depth exceeded (<n>)", Cause: "Arrow functions nested or recursive too deeply", Example: "f = x => f(x); f(1)"},
}
