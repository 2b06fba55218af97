package requests

import (
	domain "video-server/project-api/internal/domain/project"
)

// TrimBody describes the trim window of an edit request.
type TrimBody struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// CropBody describes the crop frame of an edit request.
type CropBody struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// EditBody is the JSON payload of an edit request. Absent members mean the
// operation was not requested.
type EditBody struct {
	Trim   *TrimBody `json:"trim"`
	Rotate int       `json:"rotate"`
	Scale  int       `json:"scale"`
	Crop   *CropBody `json:"crop"`
}

// ToDomain converts the payload into the domain edit request.
func (b EditBody) ToDomain() domain.EditRequest {
	req := domain.EditRequest{
		Rotate: b.Rotate,
		Scale:  b.Scale,
	}
	if b.Trim != nil {
		req.Trim = &domain.Trim{Start: b.Trim.Start, End: b.Trim.End}
	}
	if b.Crop != nil {
		req.Crop = &domain.Crop{X: b.Crop.X, Y: b.Crop.Y, Width: b.Crop.Width, Height: b.Crop.Height}
	}
	return req
}
