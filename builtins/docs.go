package builtins

import "github.com/jcormont/expression-runner/object"

// Docs returns documentation for all builtin functions.
func Docs() []object.FuncSpec {
	return builtinDocs
}

// Doc returns the documentation of the named function.
func Doc(name string) (object.FuncSpec, bool) {
	for _, spec := range builtinDocs {
		if spec.Name == name {
			return spec, true
		}
	}
	return object.FuncSpec{}, false
}

var builtinDocs = []object.FuncSpec{
	{Name: "abs", Doc: "Absolute value of a number", Args: []string{"x"}, Returns: "number", Example: "abs(-3)"},
	{Name: "floor", Doc: "Largest integer less than or equal to a number", Args: []string{"x"}, Returns: "number", Example: "floor(1.7)"},
	{Name: "ceil", Doc: "Smallest integer greater than or equal to a number", Args: []string{"x"}, Returns: "number", Example: "ceil(1.2)"},
	{Name: "round", Doc: "Round to the nearest integer", Args: []string{"x"}, Returns: "number", Example: "round(2.5)"},
	{Name: "min", Doc: "Smallest of the arguments", Args: []string{"...values"}, Returns: "number", Example: "min(3, 1, 2)"},
	{Name: "max", Doc: "Largest of the arguments", Args: []string{"...values"}, Returns: "number", Example: "max(3, 1, 2)"},
	{Name: "pow", Doc: "Base raised to the exponent", Args: []string{"base", "exponent"}, Returns: "number", Example: "pow(2, 10)"},
	{Name: "sqrt", Doc: "Square root", Args: []string{"x"}, Returns: "number", Example: "sqrt(16)"},
	{Name: "random", Doc: "Random number in [0, 1)", Returns: "number", Example: "random()"},
	{Name: "typeof", Doc: "Type name of a value", Args: []string{"value"}, Returns: "string", Example: "typeof([])"},
	{Name: "str", Doc: "Convert a value to a string", Args: []string{"value"}, Returns: "string", Example: "str(42)"},
	{Name: "chr", Doc: "String from UTF-16 code units", Args: []string{"...codes"}, Returns: "string", Example: "chr(65)"},
	{Name: "parseFloat", Doc: "Parse the leading decimal number of a string", Args: []string{"s"}, Returns: "number", Example: "parseFloat(\"3.5kg\")"},
	{Name: "parseInt", Doc: "Parse the leading integer of a string", Args: []string{"s", "radix?"}, Returns: "number", Example: "parseInt(\"ff\", 16)"},
	{Name: "isDefined", Doc: "True unless the value is undefined or null", Args: []string{"value"}, Returns: "boolean", Example: "isDefined(x)"},
	{Name: "isArray", Doc: "True if the value is an array", Args: []string{"value"}, Returns: "boolean", Example: "isArray([1])"},
	{Name: "isObject", Doc: "True if the value is a plain object", Args: []string{"value"}, Returns: "boolean", Example: "isObject({a: 1})"},
	{Name: "keys", Doc: "Own property names of a value", Args: []string{"value"}, Returns: "array", Example: "keys({a: 1, b: 2})"},
	{Name: "merge", Doc: "New object with the properties of all arguments", Args: []string{"...objects"}, Returns: "object", Example: "merge(defaults, options)"},
	{Name: "concat", Doc: "Join arrays and values into one array", Args: []string{"...values"}, Returns: "array", Example: "concat([1], [2, 3], 4)"},
	{Name: "sort", Doc: "Sorted copy of an array", Args: []string{"array", "compare?"}, Returns: "array", Example: "sort([3, 1, 2])"},
	{Name: "sortBy", Doc: "Copy of an array of objects sorted by a property", Args: []string{"array", "property"}, Returns: "array", Example: "sortBy(people, \"age\")"},
	{Name: "reverse", Doc: "Reversed copy of an array or string", Args: []string{"value"}, Returns: "array", Example: "reverse(\"abc\")"},
	{Name: "range", Doc: "Array of consecutive integers", Args: []string{"start", "length"}, Returns: "array", Example: "range(1, 3)"},
	{Name: "toJSON", Doc: "Encode a value as JSON", Args: []string{"value"}, Returns: "string", Example: "toJSON({a: [1, 2]})"},
	{Name: "parseJSON", Doc: "Decode a JSON string", Args: []string{"s"}, Returns: "any", Example: "parseJSON(\"[1, 2]\")"},
	{Name: "regexp", Doc: "Create a regular expression", Args: []string{"pattern", "flags?"}, Returns: "regexp", Example: "regexp(\"^a\", \"i\").test(\"Abc\")"},
	{Name: "match", Doc: "Match a string against a pattern", Args: []string{"s", "pattern", "flags?"}, Returns: "array", Example: "match(\"a1b2\", \"\\\\d\", \"g\")"},
	{Name: "date", Doc: "Create a date", Args: []string{"...fields"}, Returns: "date", Example: "date(\"2024-01-31\")"},
	{Name: "dateUTC", Doc: "Create a date from UTC fields", Args: []string{"year", "month", "...fields"}, Returns: "date", Example: "dateUTC(2024, 0, 31)"},
	{Name: "now", Doc: "Milliseconds since the Unix epoch", Returns: "number", Example: "now()"},
	{Name: "encodeURI", Doc: "Percent-encode a URI", Args: []string{"uri"}, Returns: "string", Example: "encodeURI(\"/a b?q=1\")"},
	{Name: "encodeURIComponent", Doc: "Percent-encode a URI component", Args: []string{"s"}, Returns: "string", Example: "encodeURIComponent(\"a&b\")"},
	{Name: "uuid", Doc: "Random version 4 UUID", Returns: "string", Example: "uuid()"},
	{Name: "jmespath", Doc: "Query a value with a JMESPath expression", Args: []string{"data", "expression"}, Returns: "any", Example: "jmespath(data, \"items[?active].name\")"},
}
