package cli

import (
	"fmt"
	"os"

	kingpin "github.com/alecthomas/kingpin/v2"

	"github.com/TykTechnologies/certexpiry/config"
)

type writeConfigCmd struct {
	*globals

	path  string
	force bool
}

func addWriteConfig(app *kingpin.Application, g *globals) {
	c := &writeConfigCmd{globals: g}

	cmd := app.Command("write-config", "Write the effective configuration as JSON.")
	cmd.Arg("path", "Destination file.").Default("certexpiry.json").StringVar(&c.path)
	cmd.Flag("force", "Overwrite an existing file.").BoolVar(&c.force)
	cmd.Action(c.run)
}

func (c *writeConfigCmd) run(_ *kingpin.ParseContext) error {
	if !c.force {
		if _, err := os.Stat(c.path); err == nil {
			return &exitError{code: ExitFailure, err: fmt.Errorf("%s already exists, use --force to overwrite", c.path)}
		}
	}

	if err := config.WriteConf(c.path, c.conf); err != nil {
		return &exitError{code: ExitFailure, err: err}
	}

	c.logger("config").WithField("path", c.path).Info("Configuration written")
	return nil
}
