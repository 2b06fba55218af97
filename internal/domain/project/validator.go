package project

import (
	"fmt"

	"video-server/project-api/internal/config"
	"video-server/project-api/internal/utils/platformerrors"
)

var allowedRotations = map[int]bool{
	-270: true, -180: true, -90: true,
	90: true, 180: true, 270: true,
}

// ValidateEdit checks an edit request against the project's current video
// metadata and the configured numeric policy. It is pure: no state is read or
// written, and the first violated constraint is returned as a field-scoped
// validation error. Checks run per field group in trim, crop, scale order;
// the scale reference width is the crop width when both appear together.
func ValidateEdit(meta VideoMetadata, req EditRequest, policy config.EditPolicy) error {
	if req.IsEmpty() {
		return platformerrors.NewValidationError("edit", "at least one edit operation is required")
	}

	if req.Rotate != 0 && !allowedRotations[req.Rotate] {
		return platformerrors.NewValidationError("rotate", "must be one of -270, -180, -90, 90, 180, 270")
	}

	if req.Trim != nil {
		if err := validateTrim(*req.Trim, meta, policy); err != nil {
			return err
		}
	}
	if req.Crop != nil {
		if err := validateCrop(*req.Crop, meta, policy); err != nil {
			return err
		}
	}
	if req.Scale != 0 {
		if err := validateScale(req.Scale, req.Crop, meta, policy); err != nil {
			return err
		}
	}
	return nil
}

func validateTrim(trim Trim, meta VideoMetadata, policy config.EditPolicy) error {
	if trim.Start < 0 {
		return platformerrors.NewValidationError("trim.start", "must not be negative")
	}
	if trim.Start >= trim.End {
		return platformerrors.NewValidationError("trim.start", "must be less than 'end' value")
	}
	if trim.End-trim.Start < policy.MinTrimDuration || meta.Duration-trim.Start < policy.MinTrimDuration {
		return platformerrors.NewValidationError("trim.start",
			fmt.Sprintf("trimmed video must be at least %g seconds", policy.MinTrimDuration))
	}
	if trim.End > meta.Duration {
		return platformerrors.NewValidationError("trim.end", "outside of initial video's length")
	}
	if trim.Start == 0 && trim.End == meta.Duration {
		return platformerrors.NewValidationError("trim.end", "trim is duplicating an entire video")
	}
	return nil
}

func validateCrop(crop Crop, meta VideoMetadata, policy config.EditPolicy) error {
	if crop.X < 0 || crop.Y < 0 {
		return platformerrors.NewValidationError("crop.x", "coordinates must not be negative")
	}
	if crop.Width < policy.MinVideoWidth || crop.Width > policy.MaxVideoWidth {
		return platformerrors.NewValidationError("crop.width",
			fmt.Sprintf("must be between %d and %d", policy.MinVideoWidth, policy.MaxVideoWidth))
	}
	if crop.Height < policy.MinVideoHeight || crop.Height > policy.MaxVideoHeight {
		return platformerrors.NewValidationError("crop.height",
			fmt.Sprintf("must be between %d and %d", policy.MinVideoHeight, policy.MaxVideoHeight))
	}
	if meta.Width-crop.X < policy.MinVideoWidth {
		return platformerrors.NewValidationError("crop.x", "less than minimum allowed crop width")
	}
	if meta.Height-crop.Y < policy.MinVideoHeight {
		return platformerrors.NewValidationError("crop.y", "less than minimum allowed crop height")
	}
	if crop.X+crop.Width > meta.Width {
		return platformerrors.NewValidationError("crop.width", "crop's frame is outside a video's frame")
	}
	if crop.Y+crop.Height > meta.Height {
		return platformerrors.NewValidationError("crop.height", "crop's frame is outside a video's frame")
	}
	return nil
}

func validateScale(scale int, crop *Crop, meta VideoMetadata, policy config.EditPolicy) error {
	if scale < policy.MinVideoWidth || scale > policy.MaxVideoWidth {
		return platformerrors.NewValidationError("scale",
			fmt.Sprintf("must be between %d and %d", policy.MinVideoWidth, policy.MaxVideoWidth))
	}

	// The reference width is the crop width when the same request crops.
	width := meta.Width
	if crop != nil {
		width = crop.Width
	}

	if scale == width {
		return platformerrors.NewValidationError("scale", "video or crop option already has exactly the same width")
	}
	if scale > width {
		if !policy.AllowInterpolation {
			return platformerrors.NewValidationError("scale", "interpolation of pixels is not allowed")
		}
		if width >= policy.InterpolationLimit {
			return platformerrors.NewValidationError("scale",
				fmt.Sprintf("interpolation is permitted only for videos which have width less than %dpx", policy.InterpolationLimit))
		}
	}
	return nil
}
