package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"git.home.luguber.info/inful/sphinxbuild/internal/sphinx"
)

// ArgsCmd prints what 'build' would run.
type ArgsCmd struct {
	SphinxFlags `embed:""`

	Shell bool `name:"shell" help:"Print a single shell command line instead of one argument per line"`
}

func (a *ArgsCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root, &a.SphinxFlags)
	if err != nil {
		return err
	}
	return PrintArgs(os.Stdout, cfg.Invocation().Command(), a.Shell)
}

// PrintArgs writes the argument vector one token per line, or the whole command line when shell is set.
func PrintArgs(w io.Writer, cmd sphinx.Command, shell bool) error {
	var out string
	if shell {
		out = cmd.String() + "\n"
	} else if len(cmd.Args) > 0 {
		out = strings.Join(cmd.Args, "\n") + "\n"
	}
	_, err := fmt.Fprint(w, out)
	return err
}
