package cli

import (
	"context"
	"time"

	kingpin "github.com/alecthomas/kingpin/v2"
	"github.com/redis/go-redis/v9"

	"github.com/TykTechnologies/certexpiry/checker"
	"github.com/TykTechnologies/certexpiry/internal/cooldown"
	"github.com/TykTechnologies/certexpiry/internal/healthcheck"
	"github.com/TykTechnologies/certexpiry/internal/notify"
	"github.com/TykTechnologies/certexpiry/internal/scheduler"
	"github.com/TykTechnologies/certexpiry/internal/watch"
)

// watchFlags override the watch section of the config.
type watchFlags struct {
	interval   time.Duration
	webhookURL string
}

func (f *watchFlags) register(cmd *kingpin.CmdClause) {
	cmd.Flag("interval", "Time between check rounds.").DurationVar(&f.interval)
	cmd.Flag("webhook-url", "Webhook receiving alert notifications.").StringVar(&f.webhookURL)
}

// watchDeps are the parts of a running watch loop that other commands
// may want to observe.
type watchDeps struct {
	job       *scheduler.Job
	heartbeat *healthcheck.Heartbeat
	redis     *redis.Client
}

// newWatch wires a watcher from the config and flag overrides.
func newWatch(g *globals, hosts hostFlags, flags watchFlags) (*watchDeps, error) {
	specs, err := hosts.specs(g.conf)
	if err != nil {
		return nil, err
	}

	wc := g.conf.Watch
	if flags.interval > 0 {
		wc.IntervalSeconds = int(flags.interval / time.Second)
	}
	if flags.webhookURL != "" {
		wc.Webhook.URL = flags.webhookURL
	}
	interval := wc.Interval()
	if interval <= 0 {
		interval = time.Hour
	}

	cache, client, err := cooldown.New(wc.Redis, g.conf.Checker.WithDefaults().CacheSize)
	if err != nil {
		return nil, err
	}
	deps := &watchDeps{redis: client}

	logger := g.logger("watch")

	var notifier notify.Notifier = notify.NewLogNotifier(logger)
	if wc.Webhook.URL != "" {
		notifier = notify.NewWebhook(wc.Webhook, logger)
	}

	alerter := notify.NewAlerter(notifier, cache, time.Duration(wc.EventCooldownSeconds)*time.Second, logger)
	deps.heartbeat = healthcheck.NewHeartbeat("watch", 2*interval)

	ch := checker.New(hosts.global(g.conf.Checker), checker.WithLogger(g.logger("checker")))
	w := watch.New(ch, specs, alerter, deps.heartbeat, logger)
	deps.job = scheduler.NewJob("watch", w.Run, interval)

	return deps, nil
}

// run blocks until ctx is done.
func (d *watchDeps) run(ctx context.Context, g *globals) {
	s := scheduler.NewScheduler(g.logger("watch"))
	s.Start(ctx, d.job)
}

type watchCmd struct {
	*globals
	hostFlags
	watchFlags
}

func addWatch(app *kingpin.Application, g *globals) {
	c := &watchCmd{globals: g}

	cmd := app.Command("watch", "Check the hosts periodically and notify about expiring certificates.")
	c.hostFlags.register(cmd)
	c.watchFlags.register(cmd)
	cmd.Action(c.run)
}

func (c *watchCmd) run(_ *kingpin.ParseContext) error {
	deps, err := newWatch(c.globals, c.hostFlags, c.watchFlags)
	if err != nil {
		return &exitError{code: ExitFailure, err: err}
	}
	if deps.redis != nil {
		defer deps.redis.Close()
	}

	c.logger("watch").WithField("interval", deps.job.Interval).Info("Starting watch")
	deps.run(c.ctx, c.globals)
	return nil
}
