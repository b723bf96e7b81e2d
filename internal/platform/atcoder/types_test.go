package atcoder

import (
	"encoding/json"
	"testing"
)

func TestDecodeModelsBareList(t *testing.T) {
	raw := json.RawMessage(`[
		{"problem_id": "abc100_a", "difficulty": 512.3},
		{"problem_id": "abc100_b"},
		{"difficulty": 900}
	]`)
	models, err := decodeModels(raw)
	if err != nil {
		t.Fatalf("decodeModels: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("expected 2 models, got %d", len(models))
	}
	if d := models["abc100_a"]; d == nil || *d != 512.3 {
		t.Errorf("abc100_a difficulty = %v, want 512.3", d)
	}
	if d, ok := models["abc100_b"]; !ok || d != nil {
		t.Errorf("abc100_b should be present with nil difficulty, got %v (present=%v)", d, ok)
	}
}

func TestDecodeModelsWrapped(t *testing.T) {
	for _, key := range []string{"models", "data"} {
		raw := json.RawMessage(`{"` + key + `": [{"problem_id": "arc050_c", "difficulty": 2100}]}`)
		models, err := decodeModels(raw)
		if err != nil {
			t.Fatalf("decodeModels wrapped in %q: %v", key, err)
		}
		if d := models["arc050_c"]; d == nil || *d != 2100 {
			t.Errorf("wrapped in %q: arc050_c difficulty = %v, want 2100", key, d)
		}
	}
}

func TestDecodeModelsByIDMap(t *testing.T) {
	raw := json.RawMessage(`{
		"abc100_a": {"difficulty": 512.3},
		"abc100_b": 1800,
		"abc100_c": null,
		"abc100_d": {}
	}`)
	models, err := decodeModels(raw)
	if err != nil {
		t.Fatalf("decodeModels: %v", err)
	}
	if len(models) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(models))
	}
	if d := models["abc100_a"]; d == nil || *d != 512.3 {
		t.Errorf("abc100_a = %v, want 512.3", d)
	}
	if d := models["abc100_b"]; d == nil || *d != 1800 {
		t.Errorf("abc100_b = %v, want 1800", d)
	}
	if d := models["abc100_c"]; d != nil {
		t.Errorf("abc100_c = %v, want nil", *d)
	}
	if d := models["abc100_d"]; d != nil {
		t.Errorf("abc100_d = %v, want nil", *d)
	}
}

func TestDecodeModelsRejectsGarbage(t *testing.T) {
	if _, err := decodeModels(json.RawMessage(`"not a catalog"`)); err == nil {
		t.Fatal("expected error for a string payload")
	}
	if _, err := decodeModels(json.RawMessage(`42`)); err == nil {
		t.Fatal("expected error for a number payload")
	}
}

func TestProblemPayloadFieldFallbacks(t *testing.T) {
	var p problemPayload
	if err := json.Unmarshal([]byte(`{"problem_id": "abc1_a", "name": "Frog"}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.problemID() != "abc1_a" {
		t.Errorf("problemID() = %q, want abc1_a", p.problemID())
	}
	if p.title() != "Frog" {
		t.Errorf("title() = %q, want Frog", p.title())
	}

	if err := json.Unmarshal([]byte(`{"id": "abc2_b", "title": "Toad"}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.problemID() != "abc2_b" || p.title() != "Toad" {
		t.Errorf("got %q/%q, want abc2_b/Toad", p.problemID(), p.title())
	}
}
