package shellexec

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// IsSimpleCommand reports whether command is one program invocation whose
// words are plain or quoted literals. Pipes, lists, redirections,
// substitutions, parameter expansions, assignments and background jobs all
// make it non-simple.
func IsSimpleCommand(command string) bool {
	f, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil || len(f.Stmts) != 1 {
		return false
	}

	st := f.Stmts[0]
	if st.Negated || st.Background || st.Coprocess || len(st.Redirs) > 0 {
		return false
	}

	call, ok := st.Cmd.(*syntax.CallExpr)
	if !ok || len(call.Assigns) > 0 || len(call.Args) == 0 {
		return false
	}

	for _, w := range call.Args {
		if !literalWord(w) {
			return false
		}
	}

	return true
}

func literalWord(w *syntax.Word) bool {
	for _, part := range w.Parts {
		switch p := part.(type) {
		case *syntax.Lit, *syntax.SglQuoted:
		case *syntax.DblQuoted:
			for _, inner := range p.Parts {
				if _, ok := inner.(*syntax.Lit); !ok {
					return false
				}
			}
		default:
			return false
		}
	}

	return true
}
