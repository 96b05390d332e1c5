package envutil

import (
	"strings"

	"github.com/alessio/shellescape"
)

// QuotedCommand returns the command line in a form that can be pasted into
// a shell, for echoing external tool invocations in the build log.
func QuotedCommand(args []string) string {
	var quoted []string
	for _, arg := range args {
		quoted = append(quoted, shellescape.Quote(arg))
	}
	return strings.Join(quoted, " ")
}

// QuotedCommandWithEnv is like QuotedCommand but prefixes the given
// KEY=VALUE environment entries.
func QuotedCommandWithEnv(args []string, env []string) string {
	var quoted []string
	for _, e := range env {
		key, value, found := strings.Cut(e, "=")
		if !found {
			continue
		}
		quoted = append(quoted, key+"="+shellescape.Quote(value))
	}
	for _, arg := range args {
		quoted = append(quoted, shellescape.Quote(arg))
	}
	return strings.Join(quoted, " ")
}
