package project

import (
	"testing"

	"video-server/project-api/internal/config"
	"video-server/project-api/internal/utils/platformerrors"
)

func testPolicy() config.EditPolicy {
	return config.EditPolicy{
		MinTrimDuration:    2,
		MinVideoWidth:      320,
		MinVideoHeight:     180,
		MaxVideoWidth:      4096,
		MaxVideoHeight:     2160,
		AllowInterpolation: true,
		InterpolationLimit: 1280,
	}
}

func testMeta() VideoMetadata {
	return VideoMetadata{
		CodecName: "h264",
		Width:     1280,
		Height:    720,
		Duration:  300,
		Size:      14567890,
	}
}

func trimReq(start, end float64) EditRequest {
	return EditRequest{Trim: &Trim{Start: start, End: end}}
}

func TestValidateEdit_Trim(t *testing.T) {
	tests := []struct {
		name      string
		req       EditRequest
		wantField string // empty means accepted
	}{
		{name: "valid window", req: trimReq(5, 10)},
		{name: "valid up to duration", req: trimReq(5, 300)},
		{name: "start equals end", req: trimReq(10, 10), wantField: "trim.start"},
		{name: "start after end", req: trimReq(20, 10), wantField: "trim.start"},
		{name: "negative start", req: trimReq(-1, 10), wantField: "trim.start"},
		{name: "window below min duration", req: trimReq(5, 6.5), wantField: "trim.start"},
		{name: "start too close to tail", req: trimReq(299, 301), wantField: "trim.start"},
		{name: "end beyond duration", req: trimReq(5, 301), wantField: "trim.end"},
		{name: "no-op full span", req: trimReq(0, 300), wantField: "trim.end"},
		{name: "exactly min duration accepted", req: trimReq(0, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEdit(testMeta(), tt.req, testPolicy())
			assertValidation(t, err, tt.wantField)
		})
	}
}

func TestValidateEdit_Crop(t *testing.T) {
	tests := []struct {
		name      string
		crop      Crop
		wantField string
	}{
		{name: "full frame", crop: Crop{X: 0, Y: 0, Width: 1280, Height: 720}},
		{name: "centered window", crop: Crop{X: 100, Y: 100, Width: 640, Height: 360}},
		{name: "x leaves less than min width", crop: Crop{X: 1000, Y: 0, Width: 320, Height: 360}, wantField: "crop.x"},
		{name: "y leaves less than min height", crop: Crop{X: 0, Y: 600, Width: 640, Height: 180}, wantField: "crop.y"},
		{name: "frame exceeds width", crop: Crop{X: 700, Y: 0, Width: 640, Height: 360}, wantField: "crop.width"},
		{name: "frame exceeds height", crop: Crop{X: 0, Y: 400, Width: 640, Height: 360}, wantField: "crop.height"},
		{name: "width below policy min", crop: Crop{X: 0, Y: 0, Width: 200, Height: 360}, wantField: "crop.width"},
		{name: "height above policy max", crop: Crop{X: 0, Y: 0, Width: 640, Height: 4000}, wantField: "crop.height"},
		{name: "negative origin", crop: Crop{X: -5, Y: 0, Width: 640, Height: 360}, wantField: "crop.x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEdit(testMeta(), EditRequest{Crop: &tt.crop}, testPolicy())
			assertValidation(t, err, tt.wantField)

			// Acceptance implies the spec geometry invariants.
			if err == nil {
				meta, policy := testMeta(), testPolicy()
				if tt.crop.X+tt.crop.Width > meta.Width || tt.crop.Y+tt.crop.Height > meta.Height {
					t.Errorf("accepted crop %+v escapes the %dx%d frame", tt.crop, meta.Width, meta.Height)
				}
				if meta.Width-tt.crop.X < policy.MinVideoWidth || meta.Height-tt.crop.Y < policy.MinVideoHeight {
					t.Errorf("accepted crop %+v leaves less than the minimum frame", tt.crop)
				}
			}
		})
	}
}

func TestValidateEdit_Scale(t *testing.T) {
	tests := []struct {
		name          string
		metaWidth     int
		crop          *Crop
		scale         int
		interpolation bool
		wantField     string
	}{
		{name: "downscale", metaWidth: 1280, scale: 640, interpolation: true},
		{name: "same width is a no-op", metaWidth: 640, scale: 640, interpolation: true, wantField: "scale"},
		{name: "upscale disallowed without interpolation", metaWidth: 640, scale: 800, interpolation: false, wantField: "scale"},
		{name: "upscale under the limit", metaWidth: 400, scale: 800, interpolation: true},
		{name: "upscale at the limit rejected", metaWidth: 1280, scale: 2000, interpolation: true, wantField: "scale"},
		{name: "upscale above the limit rejected", metaWidth: 640, scale: 2000, interpolation: true, crop: &Crop{X: 0, Y: 0, Width: 1300, Height: 360}, wantField: "scale"},
		{name: "crop width is the reference", metaWidth: 1280, scale: 800, interpolation: true, crop: &Crop{X: 0, Y: 0, Width: 400, Height: 360}},
		{name: "below policy minimum", metaWidth: 1280, scale: 100, interpolation: true, wantField: "scale"},
		{name: "above policy maximum", metaWidth: 1280, scale: 5000, interpolation: true, wantField: "scale"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := testMeta()
			meta.Width = tt.metaWidth
			if tt.crop != nil {
				// keep the crop itself valid for wide synthetic frames
				meta.Width = maxInt(meta.Width, tt.crop.X+tt.crop.Width)
			}
			policy := testPolicy()
			policy.AllowInterpolation = tt.interpolation

			err := ValidateEdit(meta, EditRequest{Scale: tt.scale, Crop: tt.crop}, policy)
			assertValidation(t, err, tt.wantField)
		})
	}
}

func TestValidateEdit_ScaleInterpolationLimitCases(t *testing.T) {
	policy := testPolicy()
	policy.AllowInterpolation = true
	policy.InterpolationLimit = 600

	meta := testMeta()
	meta.Width = 640
	if err := ValidateEdit(meta, EditRequest{Scale: 800}, policy); err == nil {
		t.Error("scale 800 from width 640 with limit 600: want rejection, got accept")
	}

	meta.Width = 400
	if err := ValidateEdit(meta, EditRequest{Scale: 800}, policy); err != nil {
		t.Errorf("scale 800 from width 400 with limit 600: want accept, got %v", err)
	}
}

func TestValidateEdit_Rotate(t *testing.T) {
	for _, degrees := range []int{-270, -180, -90, 90, 180, 270} {
		if err := ValidateEdit(testMeta(), EditRequest{Rotate: degrees}, testPolicy()); err != nil {
			t.Errorf("rotate %d: want accept, got %v", degrees, err)
		}
	}
	for _, degrees := range []int{45, -45, 360, 100} {
		err := ValidateEdit(testMeta(), EditRequest{Rotate: degrees}, testPolicy())
		assertValidation(t, err, "rotate")
	}
}

func TestValidateEdit_EmptyRequest(t *testing.T) {
	err := ValidateEdit(testMeta(), EditRequest{}, testPolicy())
	assertValidation(t, err, "edit")
}

func assertValidation(t *testing.T, err error, wantField string) {
	t.Helper()
	if wantField == "" {
		if err != nil {
			t.Errorf("want accept, got %v", err)
		}
		return
	}
	if err == nil {
		t.Errorf("want rejection on %q, got accept", wantField)
		return
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
		t.Errorf("want validation error, got %v", err)
		return
	}
	perr := err.(*platformerrors.PlatformError)
	if _, ok := perr.Fields[wantField]; !ok {
		t.Errorf("want error on field %q, got fields %v", wantField, perr.Fields)
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
