// Package tracefile stores scheduler event traces as CBOR.
package tracefile

import (
	"fmt"
	"io"
	"os"

	cbor "github.com/fxamacker/cbor/v2"

	"github.com/webriots/corun"
)

// Record is the serialized form of one scheduler event. Payloads are
// rendered with fmt so traces of any element types share one format.
type Record struct {
	Seq     int    `cbor:"1,keyasint"`
	Task    int    `cbor:"2,keyasint"`
	Kind    string `cbor:"3,keyasint"`
	Flavor  string `cbor:"4,keyasint,omitempty"`
	Payload string `cbor:"5,keyasint,omitempty"`
}

func (r Record) String() string {
	switch {
	case r.Flavor == "":
		return fmt.Sprintf("#%d task %d %s", r.Seq, r.Task, r.Kind)
	case r.Flavor == "none" && r.Payload == "":
		return fmt.Sprintf("#%d task %d %s none", r.Seq, r.Task, r.Kind)
	}
	return fmt.Sprintf("#%d task %d %s %s(%s)", r.Seq, r.Task, r.Kind, r.Flavor, r.Payload)
}

// Trace is a complete recorded run.
type Trace struct {
	Version int      `cbor:"1,keyasint"`
	Records []Record `cbor:"2,keyasint"`
}

const version = 1

// FromEvents converts recorder events into a Trace.
func FromEvents[Y, R, E any](events []corun.Event[Y, R, E]) Trace {
	tr := Trace{Version: version, Records: make([]Record, 0, len(events))}
	for i, e := range events {
		rec := Record{Seq: i, Task: int(e.Task), Kind: e.Kind.String()}
		switch e.Kind {
		case corun.EventYield:
			if v, ok := e.Yield.Value(); ok {
				rec.Flavor, rec.Payload = "ok", fmt.Sprint(v)
			} else {
				err, _ := e.Yield.Err()
				rec.Flavor, rec.Payload = "err", fmt.Sprint(err)
			}
		default:
			rec.Flavor = e.Answer.Kind().String()
			if v, ok := e.Answer.Ok(); ok {
				rec.Payload = fmt.Sprint(v)
			} else if err, ok := e.Answer.Err(); ok {
				rec.Payload = fmt.Sprint(err)
			}
		}
		tr.Records = append(tr.Records, rec)
	}
	return tr
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	if encMode, err = cbor.CanonicalEncOptions().EncMode(); err != nil {
		panic(err)
	}
	if decMode, err = (cbor.DecOptions{}).DecMode(); err != nil {
		panic(err)
	}
}

// Encode writes tr to w.
func Encode(w io.Writer, tr Trace) error {
	return encMode.NewEncoder(w).Encode(tr)
}

// Decode reads one Trace from r.
func Decode(r io.Reader) (Trace, error) {
	var tr Trace
	if err := decMode.NewDecoder(r).Decode(&tr); err != nil {
		return Trace{}, fmt.Errorf("decode trace: %w", err)
	}
	if tr.Version != version {
		return Trace{}, fmt.Errorf("decode trace: unsupported version %d", tr.Version)
	}
	return tr, nil
}

// WriteFile encodes tr into the file at path.
func WriteFile(path string, tr Trace) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, tr); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadFile decodes the trace stored at path.
func ReadFile(path string) (Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return Trace{}, err
	}
	defer f.Close()
	return Decode(f)
}
