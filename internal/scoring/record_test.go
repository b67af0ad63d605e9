package scoring

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func fieldNames(r VitalRecord) []string {
	var names []string
	for _, f := range r.Fields() {
		names = append(names, f.Name)
	}
	return names
}

func TestVitalRecord_UnmarshalKeepsPayloadOrder(t *testing.T) {
	var rec VitalRecord
	body := `{"temperature":"38.2","age":"45","glucose":120,"sex":null}`
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"temperature", "age", "glucose", "sex"}
	if diff := cmp.Diff(want, fieldNames(rec)); diff != "" {
		t.Errorf("field order mismatch (-want +got):\n%s", diff)
	}

	v, ok := rec.Get("glucose")
	if !ok {
		t.Fatal("expected glucose to be present")
	}
	if _, isNumber := v.(json.Number); !isNumber {
		t.Errorf("expected json.Number, got %T", v)
	}
	if v, ok := rec.Get("sex"); !ok || v != nil {
		t.Errorf("expected sex present with nil value, got %v (%v)", v, ok)
	}
}

func TestVitalRecord_DuplicateKeyKeepsFirstPosition(t *testing.T) {
	var rec VitalRecord
	if err := json.Unmarshal([]byte(`{"a":"1","b":"2","a":"3"}`), &rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, fieldNames(rec)); diff != "" {
		t.Errorf("field order mismatch (-want +got):\n%s", diff)
	}
	if v, _ := rec.Get("a"); v != "3" {
		t.Errorf("expected last value to win, got %v", v)
	}
}

func TestVitalRecord_RejectsNonObject(t *testing.T) {
	for _, body := range []string{`[]`, `"x"`, `null`, `12`} {
		var rec VitalRecord
		if err := json.Unmarshal([]byte(body), &rec); err == nil {
			t.Errorf("expected error for %s", body)
		}
	}
}

func TestVitalRecord_Require(t *testing.T) {
	rec := NewRecord(
		Field{Name: "glucose", Value: "120"},
		Field{Name: "unknown", Value: "1"},
		Field{Name: "age", Value: "40"},
	)

	got := rec.Require("age", "sex", "glucose", "bmi")

	want := []string{"glucose", "age", "sex", "bmi"}
	if diff := cmp.Diff(want, fieldNames(got)); diff != "" {
		t.Errorf("field order mismatch (-want +got):\n%s", diff)
	}
	if _, ok := got.Get("unknown"); ok {
		t.Error("expected unknown field to be dropped")
	}
	if v, ok := got.Get("sex"); !ok || v != nil {
		t.Errorf("expected sex appended as absent, got %v (%v)", v, ok)
	}
}

func TestVitalRecord_NumericOnAbsentField(t *testing.T) {
	var rec VitalRecord
	if rec.Numeric("anything").Valid {
		t.Error("expected absent field to be unparseable")
	}
	if rec.Len() != 0 {
		t.Errorf("expected empty record, got %d fields", rec.Len())
	}
}

func TestDecodeRecord(t *testing.T) {
	rec, err := DecodeRecord(strings.NewReader(`{"temperature":"38.2","hemoglobin":null}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"temperature", "hemoglobin"}, fieldNames(rec)); diff != "" {
		t.Errorf("field order mismatch (-want +got):\n%s", diff)
	}

	rec, err = DecodeRecord(strings.NewReader("  "))
	if err != nil {
		t.Fatalf("unexpected error for empty body: %v", err)
	}
	if rec.Len() != 0 {
		t.Errorf("expected empty record, got %d fields", rec.Len())
	}

	for _, body := range []string{`{"age":`, `[1,2]`, `"text"`} {
		if _, err := DecodeRecord(strings.NewReader(body)); err == nil {
			t.Errorf("expected error for body %q", body)
		}
	}
}
