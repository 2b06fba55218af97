package projectid

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	id := New()
	if !strings.HasPrefix(id, "proj_") {
		t.Errorf("New() = %q, want proj_ prefix", id)
	}
	if len(id) != len("proj_")+26 {
		t.Errorf("New() length = %d, want %d", len(id), len("proj_")+26)
	}
	if id != strings.ToLower(id) {
		t.Errorf("New() = %q, want lowercase", id)
	}
}

func TestNewIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := New()
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}

func TestNewFilename(t *testing.T) {
	tests := []struct {
		name    string
		ext     string
		wantExt string
	}{
		{name: "plain extension", ext: "mp4", wantExt: ".mp4"},
		{name: "dotted extension", ext: ".png", wantExt: ".png"},
		{name: "uppercase extension", ext: "MP4", wantExt: ".mp4"},
		{name: "empty extension", ext: "", wantExt: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewFilename(tt.ext)
			if tt.wantExt == "" {
				if strings.Contains(got, ".") {
					t.Errorf("NewFilename(%q) = %q, want no extension", tt.ext, got)
				}
				return
			}
			if !strings.HasSuffix(got, tt.wantExt) {
				t.Errorf("NewFilename(%q) = %q, want suffix %q", tt.ext, got, tt.wantExt)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "generated id", value: New(), want: true},
		{name: "missing prefix", value: "01h455vb4pex5vsknk084sn02q", want: false},
		{name: "wrong prefix", value: "asset_01h455vb4pex5vsknk084sn02q", want: false},
		{name: "garbage", value: "proj_not-a-ulid", want: false},
		{name: "empty", value: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.value); got != tt.want {
				t.Errorf("IsValid(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
