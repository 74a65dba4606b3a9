package cmds

import (
	"fmt"
	"io"
	"maps"
	"os"
	"reflect"
	"slices"
	"strings"
)

func (p *Executor) PrintUsage() {
	p.WriteUsage(os.Stderr)
}

func (p *Executor) WriteUsage(w io.Writer) {
	fmt.Fprintf(w, "usage:\n")
	writeCommands(w, p.commands, 1)
}

func writeCommands(w io.Writer, commands map[string]*Command, depth int) {
	// aliases share the command, print each once under its first name
	printed := make(map[*Command]bool)
	for _, name := range slices.Sorted(maps.Keys(commands)) {
		cmd := commands[name]
		if cmd == nil || cmd.Hidden || printed[cmd] {
			continue
		}
		printed[cmd] = true

		line := strings.Repeat("  ", depth) + name
		if cmd.Func.IsValid() {
			for i := 0; i < cmd.Func.Type().NumIn(); i++ {
				line += " <" + argName(cmd.Func.Type().In(i)) + ">"
			}
		}
		if len(cmd.Aliases) > 0 {
			line += " (" + strings.Join(cmd.Aliases, ", ") + ")"
		}
		if cmd.Description != "" {
			line += "\t" + cmd.Description
		}
		fmt.Fprintln(w, line)

		if len(cmd.Subs) > 0 {
			writeCommands(w, cmd.Subs, depth+1)
		}
	}
}

func argName(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		return argName(t.Elem()) + "?"
	}
	return t.Kind().String()
}
