package object

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Regexp wraps a compiled regular expression. Patterns use Go's RE2
// syntax; the JavaScript flags i, m and s map to the matching RE2 flags and
// g makes match and replace operate on all matches.
type Regexp struct {
	value  *regexp.Regexp
	source string
	flags  string
	global bool
}

// NewRegexp compiles pattern with the given flags.
func NewRegexp(pattern, flags string) (*Regexp, error) {
	var inline strings.Builder
	global := false
	for _, f := range flags {
		switch f {
		case 'g':
			global = true
		case 'i', 'm', 's':
			if strings.ContainsRune(inline.String(), f) {
				return nil, fmt.Errorf("invalid regular expression flags %q", flags)
			}
			inline.WriteRune(f)
		case 'u':
		default:
			return nil, fmt.Errorf("invalid regular expression flags %q", flags)
		}
	}
	expr := pattern
	if inline.Len() > 0 {
		expr = "(?" + inline.String() + ")" + pattern
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid regular expression /%s/: %w", pattern, err)
	}
	return &Regexp{value: re, source: pattern, flags: flags, global: global}, nil
}

// RegexpFromGo wraps an already compiled Go regular expression.
func RegexpFromGo(re *regexp.Regexp) *Regexp {
	return &Regexp{value: re, source: re.String()}
}

func (r *Regexp) Type() Type               { return REGEXP }
func (r *Regexp) Value() *regexp.Regexp    { return r.value }
func (r *Regexp) Inspect() string          { return "/" + r.source + "/" + r.flags }
func (r *Regexp) String() string           { return r.Inspect() }
func (r *Regexp) Interface() any           { return r.value }
func (r *Regexp) IsTruthy() bool           { return true }
func (r *Regexp) Equals(other Object) bool { return r == other }

func (r *Regexp) GetAttr(name string) (Object, bool) {
	return regexpAttrs.GetAttr(r, name)
}

func (r *Regexp) SetAttr(name string, value Object) error {
	return readOnlyError(r, name)
}

// match implements String.prototype.match.
func (r *Regexp) match(s string) Object {
	if r.global {
		found := r.value.FindAllString(s, -1)
		if found == nil {
			return Null
		}
		items := make([]Object, len(found))
		for i, m := range found {
			items[i] = NewString(m)
		}
		return NewList(items)
	}
	loc := r.value.FindStringSubmatchIndex(s)
	if loc == nil {
		return Null
	}
	items := make([]Object, 0, len(loc)/2)
	for i := 0; i < len(loc); i += 2 {
		if loc[i] < 0 {
			items = append(items, Undefined)
			continue
		}
		items = append(items, NewString(s[loc[i]:loc[i+1]]))
	}
	return NewList(items)
}

var regexpAttrs = NewAttrRegistry[*Regexp]("regexp")

func init() {
	regexpAttrs.Define("test").
		Doc("Check whether the expression matches a string").
		Arg("str").
		Returns("boolean").
		Impl(func(r *Regexp, ctx context.Context, args ...Object) (Object, error) {
			return NewBool(r.value.MatchString(ToString(args[0]))), nil
		})
}

func toRegexp(obj Object) (*Regexp, error) {
	if re, ok := obj.(*Regexp); ok {
		return re, nil
	}
	if _, ok := obj.(*UndefinedType); ok {
		return NewRegexp("", "")
	}
	return NewRegexp(regexp.QuoteMeta(ToString(obj)), "")
}

// replace implements String.prototype.replace. The replacement is either a
// callable, invoked with the match, the groups, the offset and the whole
// string, or a template in which $&, $1-$99, $`, $' and $$ are expanded.
func replace(ctx context.Context, s string, pattern, replacement Object) (string, error) {
	var matches [][]int
	if re, ok := pattern.(*Regexp); ok {
		n := 1
		if re.global {
			n = -1
		}
		matches = re.value.FindAllStringSubmatchIndex(s, n)
	} else {
		search := ToString(pattern)
		if i := strings.Index(s, search); i >= 0 {
			matches = [][]int{{i, i + len(search)}}
		}
	}
	if len(matches) == 0 {
		return s, nil
	}
	fn, isFunc := replacement.(Callable)
	template := ToString(replacement)
	var out strings.Builder
	last := 0
	for _, loc := range matches {
		out.WriteString(s[last:loc[0]])
		if isFunc {
			args := []Object{}
			for i := 0; i < len(loc); i += 2 {
				if loc[i] < 0 {
					args = append(args, Undefined)
				} else {
					args = append(args, NewString(s[loc[i]:loc[i+1]]))
				}
			}
			args = append(args, NewNumber(float64(len(units(s[:loc[0]])))), NewString(s))
			result, err := fn.Call(ctx, args...)
			if err != nil {
				return "", err
			}
			out.WriteString(ToString(result))
		} else {
			out.WriteString(expandTemplate(template, s, loc))
		}
		last = loc[1]
	}
	out.WriteString(s[last:])
	return out.String(), nil
}

func expandTemplate(template, s string, loc []int) string {
	if !strings.Contains(template, "$") {
		return template
	}
	groups := len(loc)/2 - 1
	var out strings.Builder
	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '$' || i+1 >= len(template) {
			out.WriteByte(c)
			continue
		}
		next := template[i+1]
		switch {
		case next == '$':
			out.WriteByte('$')
			i++
		case next == '&':
			out.WriteString(s[loc[0]:loc[1]])
			i++
		case next == '`':
			out.WriteString(s[:loc[0]])
			i++
		case next == '\'':
			out.WriteString(s[loc[1]:])
			i++
		case next >= '0' && next <= '9':
			width := 1
			if i+2 < len(template) && template[i+2] >= '0' && template[i+2] <= '9' {
				if n, _ := strconv.Atoi(template[i+1 : i+3]); n >= 1 && n <= groups {
					width = 2
				}
			}
			n, _ := strconv.Atoi(template[i+1 : i+1+width])
			if n < 1 || n > groups {
				out.WriteByte(c)
				continue
			}
			if start := loc[2*n]; start >= 0 {
				out.WriteString(s[start:loc[2*n+1]])
			}
			i += width
		default:
			out.WriteByte(c)
		}
	}
	return out.String()
}
