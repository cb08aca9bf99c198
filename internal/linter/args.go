package linter

import (
	"path/filepath"

	"hlsllint/internal/document"
	"hlsllint/internal/preprocess"
	"hlsllint/internal/toolexec"
)

// BuildInvocation assembles the compiler command line for doc. input is the
// path of the temporary file holding the preprocessed text.
//
// Order: configured default arguments, one -D per preprocessing define, the
// document's own directory as an include path, each configured include
// directory, then the input file.
func BuildInvocation(s Settings, doc *document.Document, pre preprocess.Result, input string) toolexec.Invocation {
	args := make([]string, 0, len(s.DefaultArgs)+2*len(pre.Defines)+2*len(s.IncludeDirs)+3)
	args = append(args, s.DefaultArgs...)
	for _, d := range pre.Defines {
		args = append(args, "-D", d)
	}
	if doc.Path != "" {
		args = append(args, "-I", filepath.Dir(doc.Path))
	}
	for _, dir := range s.IncludeDirs {
		args = append(args, "-I", dir)
	}
	args = append(args, input)
	return toolexec.Invocation{Executable: s.Executable, Args: args, Dir: s.WorkspaceRoot}
}
