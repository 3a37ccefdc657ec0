package trace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/matzehuels/mondrian/pkg/errors"
)

// record decodes either a plain measure or a Chrome trace event.
type record struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`

	StartTime *float64 `json:"startTime"`
	Duration  *float64 `json:"duration"`
	Group     string   `json:"group"`

	Ph  string   `json:"ph"`
	Ts  *float64 `json:"ts"`
	Dur *float64 `json:"dur"`
	Cat string   `json:"cat"`
	Pid any      `json:"pid"`
	Tid any      `json:"tid"`
}

type chromeDocument struct {
	TraceEvents []record `json:"traceEvents"`
}

const usPerMS = 1000.0

// ReadTrace decodes a trace from r. See the package documentation for the
// accepted shapes. Measures are returned in input order; for Chrome traces
// begin/end pairs appear at the position of their end event.
func ReadTrace(r io.Reader) ([]Measure, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "empty trace")
	}

	var recs []record
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &recs); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode trace array")
		}
	case '{':
		var doc chromeDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode trace document")
		}
		if doc.TraceEvents == nil {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "trace document has no traceEvents")
		}
		recs = doc.TraceEvents
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "trace must be a JSON array or object")
	}
	return convert(recs)
}

// ReadTraceFile reads and decodes the trace at path.
func ReadTraceFile(path string) ([]Measure, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "trace %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTrace(f)
}

// WriteTrace encodes measures as an indented plain JSON array.
func WriteTrace(w io.Writer, measures []Measure) error {
	if measures == nil {
		measures = []Measure{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(measures); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// MarshalTrace returns the compact JSON array form of measures.
func MarshalTrace(measures []Measure) ([]byte, error) {
	if measures == nil {
		measures = []Measure{}
	}
	return json.Marshal(measures)
}

func convert(recs []record) ([]Measure, error) {
	out := make([]Measure, 0, len(recs))
	open := make(map[string][]record) // pid/tid -> stack of B events
	for i, rec := range recs {
		if rec.Ph == "" {
			m, err := plainMeasure(i, rec)
			if err != nil {
				return nil, err
			}
			out = append(out, m)
			continue
		}

		switch rec.Ph {
		case "X":
			if rec.Ts == nil {
				return nil, errors.New(errors.ErrCodeInvalidInput, "event %d (%q) has no ts", i, rec.Name)
			}
			var dur float64
			if rec.Dur != nil {
				dur = *rec.Dur
			}
			out = append(out, chromeMeasure(rec, *rec.Ts, dur))
		case "B":
			if rec.Ts == nil {
				return nil, errors.New(errors.ErrCodeInvalidInput, "event %d (%q) has no ts", i, rec.Name)
			}
			k := threadKey(rec)
			open[k] = append(open[k], rec)
		case "E":
			k := threadKey(rec)
			stack := open[k]
			if len(stack) == 0 || rec.Ts == nil {
				continue
			}
			begin := stack[len(stack)-1]
			open[k] = slices.Delete(stack, len(stack)-1, len(stack))
			m := chromeMeasure(begin, *begin.Ts, *rec.Ts-*begin.Ts)
			if m.Name == "" {
				m.Name = rec.Name
			}
			out = append(out, m)
		}
	}
	return out, nil
}

func plainMeasure(i int, rec record) (Measure, error) {
	if rec.StartTime == nil {
		return Measure{}, errors.New(errors.ErrCodeInvalidInput, "measure %d (%q) has no startTime", i, rec.Name)
	}
	if rec.Duration == nil {
		return Measure{}, errors.New(errors.ErrCodeInvalidInput, "measure %d (%q) has no duration", i, rec.Name)
	}
	return Measure{
		Name:      rec.Name,
		StartTime: *rec.StartTime,
		Duration:  *rec.Duration,
		Group:     rec.Group,
		Args:      rec.Args,
	}, nil
}

func chromeMeasure(rec record, tsUS, durUS float64) Measure {
	return Measure{
		Name:      rec.Name,
		StartTime: tsUS / usPerMS,
		Duration:  durUS / usPerMS,
		Group:     rec.Cat,
		Args:      rec.Args,
	}
}

func threadKey(rec record) string {
	return fmt.Sprint(rec.Pid, "/", rec.Tid)
}
