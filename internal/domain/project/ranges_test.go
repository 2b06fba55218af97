package project

import (
	"testing"

	"video-server/project-api/internal/utils/platformerrors"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		name      string
		spec      string
		length    int64
		want      *ByteRange
		wantError bool
	}{
		{
			name:   "no range requested",
			spec:   "",
			length: 1000,
			want:   nil,
		},
		{
			name:   "open ended from 200",
			spec:   "bytes=200-",
			length: 1000,
			want:   &ByteRange{Start: 200, End: 999, Length: 1000},
		},
		{
			name:   "open ended from zero",
			spec:   "bytes=0-",
			length: 1000,
			want:   &ByteRange{Start: 0, End: 999, Length: 1000},
		},
		{
			name:   "last byte",
			spec:   "bytes=999-",
			length: 1000,
			want:   &ByteRange{Start: 999, End: 999, Length: 1000},
		},
		{name: "start at length", spec: "bytes=1000-", length: 1000, wantError: true},
		{name: "start beyond length", spec: "bytes=5000-", length: 1000, wantError: true},
		{name: "closed range unsupported", spec: "bytes=200-400", length: 1000, wantError: true},
		{name: "suffix length unsupported", spec: "bytes=-500", length: 1000, wantError: true},
		{name: "multi range unsupported", spec: "bytes=0-,500-", length: 1000, wantError: true},
		{name: "wrong unit", spec: "items=0-", length: 1000, wantError: true},
		{name: "not a number", spec: "bytes=abc-", length: 1000, wantError: true},
		{name: "missing dash", spec: "bytes=200", length: 1000, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRange(tt.spec, tt.length)
			if tt.wantError {
				if err == nil {
					t.Fatalf("ParseRange(%q) error = nil, want validation error", tt.spec)
				}
				if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
					t.Errorf("ParseRange(%q) error type = %v, want validation", tt.spec, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRange(%q) error = %v", tt.spec, err)
			}
			if tt.want == nil {
				if got != nil {
					t.Fatalf("ParseRange(%q) = %+v, want nil", tt.spec, got)
				}
				return
			}
			if got == nil || *got != *tt.want {
				t.Fatalf("ParseRange(%q) = %+v, want %+v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestByteRangeHeaders(t *testing.T) {
	br := ByteRange{Start: 200, End: 999, Length: 1000}
	if got := br.Chunksize(); got != 800 {
		t.Errorf("Chunksize() = %d, want 800", got)
	}
	if got := br.ContentRange(); got != "bytes 200-999/1000" {
		t.Errorf("ContentRange() = %q, want %q", got, "bytes 200-999/1000")
	}
}
