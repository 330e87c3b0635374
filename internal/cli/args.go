package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// errNoQuery is returned when a query command gets flags but no query.
var errNoQuery = errors.New("requires a search query")

// queryArgs separates a query command's own flags from the query text.
//
// Query commands run with cobra flag parsing disabled because negated
// qualifiers look like shorthand flags: "-label:bug" would otherwise be
// read as -l with value "abel:bug". Only arguments that exactly name a
// defined flag ("--limit", "--limit=5", "-n") are treated as flags. Every
// other argument is a query token; "--" ends flag handling.
//
// Safe to call more than once per execution; the flag set is parsed on
// the first call only.
func queryArgs(cmd *cobra.Command, args []string) (string, error) {
	flags := cmd.Flags()
	flagArgs, tokens, err := splitQueryArgs(flags, args)
	if err != nil {
		return "", err
	}
	if !flags.Parsed() {
		if err := flags.Parse(flagArgs); err != nil {
			return "", err
		}
	}
	if help, _ := flags.GetBool("help"); help {
		return "", pflag.ErrHelp
	}
	if len(tokens) == 0 {
		return "", errNoQuery
	}
	return strings.Join(tokens, " "), nil
}

func splitQueryArgs(flags *pflag.FlagSet, args []string) (flagArgs, tokens []string, err error) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			tokens = append(tokens, args[i+1:]...)
			break
		}

		f, named := lookupQueryFlag(flags, arg)
		if f == nil {
			if named {
				return nil, nil, fmt.Errorf("unknown flag: %s", arg)
			}
			tokens = append(tokens, arg)
			continue
		}

		flagArgs = append(flagArgs, arg)
		if f.NoOptDefVal == "" && !strings.Contains(arg, "=") {
			if i+1 >= len(args) {
				return nil, nil, fmt.Errorf("flag needs an argument: %s", arg)
			}
			i++
			flagArgs = append(flagArgs, args[i])
		}
	}
	return flagArgs, tokens, nil
}

// lookupQueryFlag returns the flag arg names, if any. named reports that
// arg has the "--name" form, which is never a query token.
func lookupQueryFlag(flags *pflag.FlagSet, arg string) (f *pflag.Flag, named bool) {
	switch {
	case strings.HasPrefix(arg, "--") && len(arg) > 2:
		name, _, _ := strings.Cut(arg[2:], "=")
		return flags.Lookup(name), true
	case len(arg) == 2 && arg[0] == '-' && arg[1] != '-':
		return flags.ShorthandLookup(arg[1:]), false
	}
	return nil, false
}
