package project

import (
	"io"
	"strconv"
	"strings"

	"video-server/project-api/internal/utils/platformerrors"
)

// ByteRange is a resolved open-ended range request against a blob of Length
// bytes: the response spans [Start, End] inclusive.
type ByteRange struct {
	Start  int64
	End    int64
	Length int64
}

// Chunksize returns the number of bytes the partial response carries.
func (r ByteRange) Chunksize() int64 {
	return r.End - r.Start + 1
}

// ContentRange renders the Content-Range header value.
func (r ByteRange) ContentRange() string {
	return "bytes " + strconv.FormatInt(r.Start, 10) + "-" + strconv.FormatInt(r.End, 10) +
		"/" + strconv.FormatInt(r.Length, 10)
}

// ParseRange resolves a "bytes=START-" specifier against a blob length.
// Only a single open-ended range is supported; multi-range and suffix-length
// specifiers are rejected rather than silently truncated. A nil ByteRange with
// nil error means no range was requested and the full blob should be served.
func ParseRange(spec string, length int64) (*ByteRange, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}

	rest, ok := strings.CutPrefix(spec, "bytes=")
	if !ok {
		return nil, platformerrors.NewValidationError("range", "unsupported range unit")
	}
	if strings.Contains(rest, ",") {
		return nil, platformerrors.NewValidationError("range", "multiple ranges are not supported")
	}

	startPart, endPart, ok := strings.Cut(rest, "-")
	if !ok || strings.TrimSpace(endPart) != "" {
		return nil, platformerrors.NewValidationError("range", "only open-ended ranges of the form bytes=START- are supported")
	}

	start, err := strconv.ParseInt(strings.TrimSpace(startPart), 10, 64)
	if err != nil || start < 0 {
		return nil, platformerrors.NewValidationError("range", "invalid range start")
	}
	if start >= length {
		return nil, platformerrors.NewValidationError("range", "range start is beyond the end of the video")
	}

	return &ByteRange{Start: start, End: length - 1, Length: length}, nil
}

// VideoStream describes a raw video response ready to be written out. Body is
// positioned at the first byte to serve and must be closed by the caller.
type VideoStream struct {
	Body          io.ReadCloser
	MimeType      string
	ContentLength int64
	// Range is nil for a full-content response.
	Range *ByteRange
}
