package cli

import (
	"errors"
	"fmt"
	"time"

	kingpin "github.com/alecthomas/kingpin/v2"
	"github.com/samber/lo"

	"github.com/TykTechnologies/certexpiry/checker"
	"github.com/TykTechnologies/certexpiry/config"
	"github.com/TykTechnologies/certexpiry/internal/hostconfig"
)

var errNoHosts = errors.New("no hosts given: use --host or --hosts-file")

// hostFlags select the hosts to check and override the checker defaults.
type hostFlags struct {
	hosts         []string
	hostsFile     string
	alertWindow   int
	port          int
	timeout       time.Duration
	userAgent     string
	handshakeOnly bool
}

func (f *hostFlags) register(cmd *kingpin.CmdClause) {
	cmd.Flag("host", "Host to check, as host or host:port. Repeatable.").Short('H').StringsVar(&f.hosts)
	cmd.Flag("hosts-file", "YAML file with a hosts: list.").StringVar(&f.hostsFile)
	cmd.Flag("alert-window", "Default alert window in days.").Default("-1").IntVar(&f.alertWindow)
	cmd.Flag("port", "Default port.").IntVar(&f.port)
	cmd.Flag("timeout", "Per-host timeout.").DurationVar(&f.timeout)
	cmd.Flag("user-agent", "Default User-Agent header.").StringVar(&f.userAgent)
	cmd.Flag("handshake-only", "Only perform the TLS handshake, without an HTTP request.").BoolVar(&f.handshakeOnly)
}

// global applies the flag overrides to base.
func (f *hostFlags) global(base config.Global) config.Global {
	if f.alertWindow >= 0 {
		base.DefaultAlertWindowDays = lo.ToPtr(f.alertWindow)
	}
	if f.port > 0 {
		base.DefaultPort = f.port
	}
	if f.timeout > 0 {
		base.TimeoutMs = int(f.timeout / time.Millisecond)
	}
	if f.userAgent != "" {
		base.UserAgent = f.userAgent
	}
	if f.handshakeOnly {
		base.HandshakeOnly = true
	}
	return base
}

// specs collects hosts from the flags and the hosts file, flags first.
func (f *hostFlags) specs(conf *config.Config) ([]hostconfig.HostSpec, error) {
	specs, err := hostconfig.ParseHostSpecs(f.hosts)
	if err != nil {
		return nil, err
	}

	path := f.hostsFile
	if path == "" {
		path = conf.HostsFile
	}
	if path != "" {
		fromFile, err := hostconfig.LoadFile(path)
		if err != nil {
			return nil, err
		}
		specs = append(specs, fromFile...)
	}

	if len(specs) == 0 {
		return nil, errNoHosts
	}
	return specs, nil
}

type checkCmd struct {
	*globals
	hostFlags

	output string
	each   bool
}

func addCheck(app *kingpin.Application, g *globals) {
	c := &checkCmd{globals: g}

	cmd := app.Command("check", "Check the certificates of the given hosts once.").Default()
	c.hostFlags.register(cmd)
	cmd.Flag("output", "Output format: text or json.").Short('o').Default("text").EnumVar(&c.output, "text", "json")
	cmd.Flag("each", "Report every host separately instead of failing on the first error.").BoolVar(&c.each)
	cmd.Action(c.run)
}

func (c *checkCmd) run(_ *kingpin.ParseContext) error {
	specs, err := c.specs(c.conf)
	if err != nil {
		return &exitError{code: ExitFailure, err: err}
	}

	ch := checker.New(c.global(c.conf.Checker), checker.WithLogger(c.logger("checker")))
	out := newPrinter(c.stdout, c.output)

	if c.each {
		outcomes := ch.CheckEach(c.ctx, specs)
		if err := out.outcomes(outcomes); err != nil {
			return &exitError{code: ExitFailure, err: err}
		}
		if len(outcomes.Failed()) > 0 {
			return &exitError{code: ExitFailure}
		}
		return alertExit(outcomes.Results())
	}

	results, err := ch.CheckHosts(c.ctx, specs)
	if err != nil {
		if perr := out.failure(err); perr != nil {
			return &exitError{code: ExitFailure, err: perr}
		}
		return &exitError{code: ExitFailure, err: err}
	}
	if err := out.results(results); err != nil {
		return &exitError{code: ExitFailure, err: err}
	}
	return alertExit(results)
}

func alertExit(results []checker.CheckResult) error {
	if n := len(checker.InAlertWindow(results)); n > 0 {
		return &exitError{code: ExitAlertWindow, err: fmt.Errorf("%d certificate(s) in alert window", n)}
	}
	return nil
}
