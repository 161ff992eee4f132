package ranking

import (
	"livejourney/internal/domain/hotplace"
	"livejourney/internal/service/geo"
)

// VerificationRadiusKm is the maximum distance between the reported location and the
// embedded location tag for an observation to count as verified
const VerificationRadiusKm = 0.05

// IsVerified reports whether the device-reported coordinates agree with the
// independently embedded location tag
func IsVerified(o hotplace.Observation) bool {
	if !o.HasCoordinates() || o.EmbeddedLocation == nil || !o.EmbeddedLocation.Valid() {
		return false
	}
	return geo.Distance(*o.Coordinates, *o.EmbeddedLocation) <= VerificationRadiusKm
}

// IsLiveCapture reports whether the media was taken with the in-app camera
func IsLiveCapture(o hotplace.Observation) bool {
	return o.CaptureSource == hotplace.CaptureSourceCamera || o.IsLiveCapture
}
