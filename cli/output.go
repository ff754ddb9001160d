package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"

	"github.com/TykTechnologies/certexpiry/checker"
	"github.com/TykTechnologies/certexpiry/internal/errors"
)

type jsonFailure struct {
	Host           string                 `json:"host"`
	Message        string                 `json:"message"`
	Classification *errors.Classification `json:"classification,omitempty"`
}

type jsonOutcome struct {
	Index  int                  `json:"index"`
	Result *checker.CheckResult `json:"result,omitempty"`
	Error  *jsonFailure         `json:"error,omitempty"`
}

// printer renders check results as a table or as JSON.
type printer struct {
	w      io.Writer
	asJSON bool
}

func newPrinter(w io.Writer, format string) *printer {
	return &printer{w: w, asJSON: format == "json"}
}

func newFailure(host string, err error) *jsonFailure {
	f := &jsonFailure{Host: host, Message: err.Error()}

	var connErr *checker.ConnectionError
	var malformedErr *checker.MalformedCertificateError
	switch {
	case errors.As(err, &connErr):
		f.Host = connErr.Host
		f.Classification = connErr.Classification
	case errors.As(err, &malformedErr):
		f.Host = malformedErr.Host
	}
	return f
}

func (p *printer) results(results []checker.CheckResult) error {
	if p.asJSON {
		return p.encode(map[string]any{"results": results})
	}

	tw := p.table()
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			r.Host.Address(), r.ValidTo.UTC().Format(time.RFC3339), r.Expiry.Days, resultStatus(r), r.Details.Subject.CommonName)
	}
	return tw.Flush()
}

func (p *printer) outcomes(outcomes checker.Outcomes) error {
	if p.asJSON {
		out := make([]jsonOutcome, 0, len(outcomes))
		for _, o := range outcomes {
			item := jsonOutcome{Index: o.Index, Result: o.Result}
			if o.Err != nil {
				item.Error = newFailure(o.Host.Address(), o.Err)
			}
			out = append(out, item)
		}
		return p.encode(map[string]any{"outcomes": out})
	}

	tw := p.table()
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(tw, "%s\t-\t-\t%s\t\n", o.Host.Address(), failureStatus(o.Err))
			continue
		}
		r := o.Result
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			r.Host.Address(), r.ValidTo.UTC().Format(time.RFC3339), r.Expiry.Days, resultStatus(*r), r.Details.Subject.CommonName)
	}
	return tw.Flush()
}

// failure reports the error that aborted an all-or-nothing check.
func (p *printer) failure(err error) error {
	f := newFailure("", err)
	if p.asJSON {
		return p.encode(map[string]any{"error": f})
	}
	_, werr := fmt.Fprintf(p.w, "%s: %s\n", f.Host, failureStatus(err))
	return werr
}

func (p *printer) table() *tabwriter.Writer {
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "HOST\tEXPIRES\tDAYS\tSTATUS\tSUBJECT")
	return tw
}

func (p *printer) encode(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func resultStatus(r checker.CheckResult) string {
	switch {
	case r.Expiry.IsExpired:
		return "EXPIRED"
	case r.Expiry.IsInAlertWindow:
		return "ALERT"
	default:
		return "OK"
	}
}

func failureStatus(err error) string {
	var connErr *checker.ConnectionError
	if errors.As(err, &connErr) && connErr.Classification != nil {
		return "ERROR " + connErr.Classification.String()
	}
	return "ERROR " + err.Error()
}
