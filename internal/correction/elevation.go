/*------------------------------------------------------------------------------
* elevation.go : receiver-elevation travel-time correction
*
* A one-line closed form, kept separate from topography.go since it operates
* on a known station elevation rather than a looked-up grid cell.
*-----------------------------------------------------------------------------*/
package correction

import "math"

// ElevationCorrection computes the receiver-elevation correction:
//
//	t_elev = e_rec * sqrt(1/v_surface^2 - (p*sin(delta)/R)^2)
//
// eRecKm is the receiver elevation above the reference sphere in km (positive
// up), pNorm the ray parameter, deltaRad the source-receiver distance in
// radians, vSurfaceKmS the near-receiver velocity and radiusKm the model
// radius. The radicand is clamped at zero for a ray parameter past the
// surface-wave horizon, matching the horizontal-slowness limit used
// elsewhere for sinI clamping.
func ElevationCorrection(eRecKm, pNorm, deltaRad, vSurfaceKmS, radiusKm float64) float64 {
	term := pNorm * math.Sin(deltaRad) / radiusKm
	radicand := 1/(vSurfaceKmS*vSurfaceKmS) - term*term
	if radicand < 0 {
		radicand = 0
	}
	return eRecKm * math.Sqrt(radicand)
}
