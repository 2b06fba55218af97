package project

import (
	"encoding/json"
	"testing"
)

func TestPreviewSourceJSON(t *testing.T) {
	captured := PreviewSource{Position: 12.5}
	data, err := json.Marshal(captured)
	if err != nil {
		t.Fatalf("marshal captured: %v", err)
	}
	if string(data) != "12.5" {
		t.Errorf("captured source = %s, want 12.5", data)
	}

	custom := PreviewSource{Custom: true}
	data, err = json.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom: %v", err)
	}
	if string(data) != `"custom"` {
		t.Errorf(`custom source = %s, want "custom"`, data)
	}

	var decoded PreviewSource
	if err := json.Unmarshal([]byte("42"), &decoded); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if decoded.Custom || decoded.Position != 42 {
		t.Errorf("decoded number = %+v, want position 42", decoded)
	}

	if err := json.Unmarshal([]byte(`"custom"`), &decoded); err != nil {
		t.Fatalf("unmarshal custom: %v", err)
	}
	if !decoded.Custom {
		t.Errorf("decoded custom = %+v, want custom", decoded)
	}

	if err := json.Unmarshal([]byte(`"midpoint"`), &decoded); err == nil {
		t.Error("unmarshal of an unknown string variant succeeded, want error")
	}
}

func TestEditRequestIsEmpty(t *testing.T) {
	if !(EditRequest{}).IsEmpty() {
		t.Error("zero request should be empty")
	}
	if (EditRequest{Rotate: 90}).IsEmpty() {
		t.Error("rotate request should not be empty")
	}
	if (EditRequest{Trim: &Trim{Start: 1, End: 5}}).IsEmpty() {
		t.Error("trim request should not be empty")
	}
}
