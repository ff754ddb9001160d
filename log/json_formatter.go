package log

import (
	"bytes"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

// JSONFormatter renders entries as one JSON object per line using goccy/go-json.
type JSONFormatter struct {
	// TimestampFormat is a time.Format layout for the "time" key.
	TimestampFormat string

	// DisableTimestamp omits the "time" key.
	DisableTimestamp bool

	// DataKey nests all entry fields under the given key when set.
	DataKey string
}

// Format renders a single log entry.
func (f *JSONFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	fields := make(logrus.Fields, len(entry.Data))
	for k, v := range entry.Data {
		// errors have no exported fields and would encode as {}
		if err, ok := v.(error); ok {
			fields[k] = err.Error()
			continue
		}
		fields[k] = v
	}

	data := fields
	if f.DataKey != "" {
		data = logrus.Fields{f.DataKey: fields}
	}

	if !f.DisableTimestamp {
		data[logrus.FieldKeyTime] = entry.Time.Format(f.TimestampFormat)
	}
	data[logrus.FieldKeyMsg] = entry.Message
	data[logrus.FieldKeyLevel] = entry.Level.String()

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
