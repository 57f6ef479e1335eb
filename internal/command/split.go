package command

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/shell"

	"github.com/wincross-dev/wincross/internal/model"
)

// Split tokenizes an extra-args string using POSIX shell-word rules,
// honoring quoting and escaping rather than merely splitting on
// whitespace:
//
//	-S /work/project -DX="a b"  →  [-S /work/project -DX=a b]
//
// Environment-variable expansion is disabled: the string travels to the
// container verbatim, and $VARS in it should mean whatever they mean
// there, not on the host. Unbalanced quoting is an ArgsParseError.
func Split(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	words, err := shell.Fields(s, func(name string) string {
		// Keep $NAME spelled out for the container shell by expanding it
		// back to itself.
		return "$" + name
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", model.ErrArgsParse, s, err)
	}
	return words, nil
}

// SplitAll splits each string of a repeatable --*-args flag and
// concatenates the results in order.
func SplitAll(args []string) ([]string, error) {
	var out []string
	for _, raw := range args {
		words, err := Split(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, words...)
	}
	return out, nil
}
