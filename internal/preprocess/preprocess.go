// Package preprocess rewrites a shader before it is handed to the compiler.
//
// Shader snippets often rely on inputs that are bound elsewhere. A comment of
// the form
//
//	// INPUTS(float3): normal, tangent
//
// declares such inputs. Symbols of a known vector or scalar type become
// preprocessor defines with a zero literal; symbols of any other type are
// declared at the top of the analyzed text, which shifts every line down.
package preprocess

import (
	"strings"

	"github.com/grafana/regexp"
)

// DefaultType is used when an INPUTS directive names no type.
const DefaultType = "float"

var (
	inputsPattern = regexp.MustCompile(`//\s*INPUTS(?:\((\w+)\))?:\s*([^\n]+)\s*\n`)
	symbolSep     = regexp.MustCompile(`\s*,\s*`)
	pragmaOnce    = regexp.MustCompile(`#pragma\s+once[^\n]*\n`)
)

// zeroLiterals maps the types the compiler can take as a define to a literal
// of that type.
var zeroLiterals = map[string]string{
	"float":  "0.0",
	"float2": "float2(0, 0)",
	"float3": "float3(0, 0, 0)",
	"float4": "float4(0, 0, 0, 0)",
	"int":    "0",
	"int2":   "int2(0, 0)",
	"int3":   "int3(0, 0, 0)",
	"int4":   "int4(0, 0, 0, 0)",
}

// ZeroLiteral returns the zero literal for typeName and whether the type is
// known.
func ZeroLiteral(typeName string) (string, bool) {
	lit, ok := zeroLiterals[typeName]
	return lit, ok
}

// Result is the analyzed text plus what the compiler needs to make sense of it.
type Result struct {
	// Text is the source to write to the compiler's input file.
	Text string
	// Defines holds "symbol=literal" values, one per -D argument.
	Defines []string
	// Declarations holds the lines prepended to Text, in order.
	Declarations []string
	// LineOffset maps a line of Text back to the original document.
	LineOffset int
}

// Expand scans text for INPUTS directives and produces the analyzed text.
// filename selects file-type specific rewrites.
func Expand(text, filename string) Result {
	if strings.HasSuffix(filename, ".ush") {
		text = pragmaOnce.ReplaceAllString(text, "//#pragma once\n")
	}

	var res Result
	seen := make(map[string]bool)
	for _, m := range inputsPattern.FindAllStringSubmatch(text, -1) {
		typeName := m[1]
		if typeName == "" {
			typeName = DefaultType
		}
		for _, sym := range symbolSep.Split(m[2], -1) {
			sym = strings.TrimSpace(sym)
			if sym == "" || seen[sym] {
				continue
			}
			seen[sym] = true
			if lit, ok := ZeroLiteral(typeName); ok {
				res.Defines = append(res.Defines, sym+"="+lit)
			} else {
				res.Declarations = append(res.Declarations, typeName+" "+sym+";")
			}
		}
	}

	if len(res.Declarations) > 0 {
		var b strings.Builder
		for _, d := range res.Declarations {
			b.WriteString(d)
			b.WriteByte('\n')
		}
		b.WriteString(text)
		text = b.String()
	}
	res.Text = text
	res.LineOffset = -len(res.Declarations)
	return res
}
