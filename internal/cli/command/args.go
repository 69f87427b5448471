package command

import (
	"strconv"

	"github.com/urfave/cli/v2"
)

// Positional holds the positional arguments of the command.
type Positional struct {
	BaseDir   string
	PluginDir string

	// Port is zero when the argument is missing or unparsable.
	Port int

	// RawPort is the port argument as given.
	RawPort string
}

// ParseArgs reads <base_dir> [port] <plugin_dir> from args.
// The port slot is positional, so a plugin directory is always the third
// argument.
func ParseArgs(args []string) (Positional, error) {
	var p Positional
	if len(args) < 1 || args[0] == "" {
		return p, cli.Exit("missing required argument: base_dir", 1)
	}
	p.BaseDir = args[0]

	if len(args) > 1 {
		p.RawPort = args[1]
		if port, err := strconv.Atoi(args[1]); err == nil && port > 0 && port <= 65535 {
			p.Port = port
		}
	}

	if len(args) < 3 || args[2] == "" {
		return p, cli.Exit("missing required argument: plugin_dir", 1)
	}
	p.PluginDir = args[2]
	return p, nil
}
