package relay

import "testing"

type codecTarget struct {
	Name  string `yaml:"name" json:"name"`
	Count int    `yaml:"count" json:"count"`
}

func TestAutoCodec_DetectsJSONObject(t *testing.T) {
	var v codecTarget
	if err := (AutoCodec{}).Unmarshal([]byte(`  {"name": "a", "count": 2}`), &v); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if v.Name != "a" || v.Count != 2 {
		t.Errorf("unexpected result: %+v", v)
	}
}

func TestAutoCodec_DetectsJSONArray(t *testing.T) {
	var v []int
	if err := (AutoCodec{}).Unmarshal([]byte(`[1, 2, 3]`), &v); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(v) != 3 {
		t.Errorf("expected 3 elements, got %d", len(v))
	}
}

func TestAutoCodec_FallsBackToYAML(t *testing.T) {
	var v codecTarget
	if err := (AutoCodec{}).Unmarshal([]byte("name: b\ncount: 7"), &v); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if v.Name != "b" || v.Count != 7 {
		t.Errorf("unexpected result: %+v", v)
	}
}

func TestCodec_ContentTypes(t *testing.T) {
	if ct := (JSONCodec{}).ContentType(); ct != "application/json" {
		t.Errorf("unexpected JSON content type %q", ct)
	}
	if ct := (YAMLCodec{}).ContentType(); ct != "application/x-yaml" {
		t.Errorf("unexpected YAML content type %q", ct)
	}
	if ct := (AutoCodec{}).ContentType(); ct != "application/octet-stream" {
		t.Errorf("unexpected auto content type %q", ct)
	}
}
