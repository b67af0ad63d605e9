package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Field is one raw entry of a VitalRecord.
type Field struct {
	Name  string
	Value any
}

// VitalRecord is an ordered mapping of field name to raw request value.
// Order is the order in which fields arrived in the payload.
type VitalRecord struct {
	fields []Field
	index  map[string]int
}

// NewRecord builds a record from fields in the given order.
func NewRecord(fields ...Field) VitalRecord {
	var r VitalRecord
	for _, f := range fields {
		r.Set(f.Name, f.Value)
	}
	return r
}

// DecodeRecord reads one JSON object from r. An empty body decodes to an
// empty record.
func DecodeRecord(r io.Reader) (VitalRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return VitalRecord{}, fmt.Errorf("reading record: %w", err)
	}
	var rec VitalRecord
	if len(bytes.TrimSpace(data)) == 0 {
		return rec, nil
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return VitalRecord{}, err
	}
	return rec, nil
}

// Set stores a value. An existing field keeps its position.
func (r *VitalRecord) Set(name string, value any) {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[name]; ok {
		r.fields[i].Value = value
		return
	}
	r.index[name] = len(r.fields)
	r.fields = append(r.fields, Field{Name: name, Value: value})
}

// Get returns the raw value for name and whether the field is present.
func (r VitalRecord) Get(name string) (any, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.fields[i].Value, true
}

// Numeric coerces the named field.
func (r VitalRecord) Numeric(name string) Numeric {
	v, _ := r.Get(name)
	return Coerce(v)
}

// Fields returns the record's fields in order.
func (r VitalRecord) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Len returns the number of fields.
func (r VitalRecord) Len() int {
	return len(r.fields)
}

// Require returns a record restricted to names. Present fields keep their
// payload order; names that never arrived are appended as absent values in
// the order given, so Validate reports them as missing.
func (r VitalRecord) Require(names ...string) VitalRecord {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	var out VitalRecord
	for _, f := range r.fields {
		if wanted[f.Name] {
			out.Set(f.Name, f.Value)
		}
	}
	for _, n := range names {
		if _, ok := out.index[n]; !ok {
			out.Set(n, nil)
		}
	}
	return out
}

// UnmarshalJSON decodes a JSON object, keeping key order. Numbers are kept
// as json.Number so that Coerce sees the literal text.
func (r *VitalRecord) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("vital record must be a JSON object")
	}

	var out VitalRecord
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("decoding %s: %w", key, err)
		}
		out.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = out
	return nil
}
