package cli

import (
	kingpin "github.com/alecthomas/kingpin/v2"
	"golang.org/x/sync/errgroup"

	"github.com/TykTechnologies/certexpiry/checker"
	"github.com/TykTechnologies/certexpiry/internal/api"
	"github.com/TykTechnologies/certexpiry/internal/healthcheck"
)

type serveCmd struct {
	*globals
	hostFlags
	watchFlags

	listen string
	watch  bool
}

func addServe(app *kingpin.Application, g *globals) {
	c := &serveCmd{globals: g}

	cmd := app.Command("serve", "Serve the HTTP check API.")
	c.hostFlags.register(cmd)
	c.watchFlags.register(cmd)
	cmd.Flag("listen", "Listen address, defaults to api.listen_address.").Short('l').StringVar(&c.listen)
	cmd.Flag("watch", "Also run the watch loop over the configured hosts.").BoolVar(&c.watch)
	cmd.Action(c.run)
}

func (c *serveCmd) run(_ *kingpin.ParseContext) error {
	addr := c.listen
	if addr == "" {
		addr = c.conf.API.ListenAddress
	}

	logger := c.logger("api")
	health := healthcheck.NewRunner(logger)
	ch := checker.New(c.global(c.conf.Checker), checker.WithLogger(c.logger("checker")))
	server := api.New(ch, health, logger)

	g, ctx := errgroup.WithContext(c.ctx)

	if c.watch {
		deps, err := newWatch(c.globals, c.hostFlags, c.watchFlags)
		if err != nil {
			return &exitError{code: ExitFailure, err: err}
		}
		health.Require(deps.heartbeat)
		if deps.redis != nil {
			defer deps.redis.Close()
			health.Optional(healthcheck.NewRedisCheck(deps.redis))
		}

		g.Go(func() error {
			deps.run(ctx, c.globals)
			return nil
		})
	}

	g.Go(func() error {
		return server.ListenAndServe(ctx, addr)
	})

	if err := g.Wait(); err != nil {
		return &exitError{code: ExitFailure, err: err}
	}
	return nil
}
