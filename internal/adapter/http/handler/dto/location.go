package dto

import (
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/validator"
)

type ReportLocationRequest struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	SpeedKph  float64  `json:"speed_kph"`
	Heading   *float64 `json:"heading"`
}

func (r *ReportLocationRequest) Validate(v *validator.Validator) {
	v.Check(r.Latitude >= -90 && r.Latitude <= 90, "latitude", "must be between -90 and 90")
	v.Check(r.Longitude >= -180 && r.Longitude <= 180, "longitude", "must be between -180 and 180")
	v.Check(r.SpeedKph >= 0, "speed_kph", "must not be negative")
	if r.Heading != nil {
		v.Check(*r.Heading >= 0 && *r.Heading < 360, "heading", "must be between 0 and 360")
	}
}
