package domain

import "math"

// DevelopmentType is the kind of building planned on a parcel.
type DevelopmentType string

const (
	DevelopmentSingleFamily DevelopmentType = "single_family"
	DevelopmentMultiFamily  DevelopmentType = "multi_family"
	DevelopmentOther        DevelopmentType = "other"
)

// Retention coefficients in m³ of storage per m² of drained surface.
const (
	coefficientDefault    = 0.06
	coefficientOverloaded = 0.04
	coefficientConnected  = 0.03

	// detentionFactor relates detention tank volume to the BZI volume.
	detentionFactor = 2.0
)

// RetentionInput describes the drained surfaces of an investment, in m².
type RetentionInput struct {
	RoofArea             float64         `json:"roof_area"`
	RoofOutsideFootprint float64         `json:"roof_outside_footprint_area"`
	SealedArea           float64         `json:"sealed_area"`
	PermeableArea        float64         `json:"permeable_area"`
	Development          DevelopmentType `json:"development"`
	ConnectedToSewer     bool            `json:"connected_to_sewer"`
	CatchmentOverloaded  bool            `json:"catchment_overloaded"`
}

// RetentionRequirement is the storage an investment has to provide.
type RetentionRequirement struct {
	TotalArea       float64 `json:"total_area"`
	Coefficient     float64 `json:"coefficient"`
	BZIVolume       float64 `json:"bzi_volume"`
	DetentionVolume float64 `json:"detention_volume"`
}

// NeedsCatchment reports whether the coefficient depends on the catchment
// overload flag. Only multi-unit investments draining to the stormwater
// sewer are affected.
func (in RetentionInput) NeedsCatchment() bool {
	return in.Development != DevelopmentSingleFamily && in.ConnectedToSewer
}

// Validate rejects negative or non-finite areas.
func (in RetentionInput) Validate() error {
	areas := []struct {
		name  string
		value float64
	}{
		{"roof_area", in.RoofArea},
		{"roof_outside_footprint_area", in.RoofOutsideFootprint},
		{"sealed_area", in.SealedArea},
		{"permeable_area", in.PermeableArea},
	}
	for _, a := range areas {
		if math.IsNaN(a.value) || math.IsInf(a.value, 0) || a.value < 0 {
			return InputErrorf("%s must be a non-negative number, got %v", a.name, a.value)
		}
	}
	switch in.Development {
	case DevelopmentSingleFamily, DevelopmentMultiFamily, DevelopmentOther:
	default:
		return InputErrorf("unknown development type %q", in.Development)
	}
	return nil
}

// ComputeRetention derives the BZI and detention volumes for an investment.
//
//	single family, or not connected to the sewer   0.06 m³/m²
//	connected, catchment overloaded                0.04 m³/m²
//	connected, catchment not overloaded            0.03 m³/m²
func ComputeRetention(in RetentionInput) RetentionRequirement {
	total := in.RoofArea + in.RoofOutsideFootprint + in.SealedArea + in.PermeableArea

	coefficient := coefficientDefault
	if in.NeedsCatchment() {
		coefficient = coefficientConnected
		if in.CatchmentOverloaded {
			coefficient = coefficientOverloaded
		}
	}

	bzi := total * coefficient
	return RetentionRequirement{
		TotalArea:       total,
		Coefficient:     coefficient,
		BZIVolume:       bzi,
		DetentionVolume: bzi * detentionFactor,
	}
}
