/*------------------------------------------------------------------------------
* geo.go : geodetic distance/azimuth from source/receiver lat-lon
*
* Grounded on the pack's use of paulmach/orb for geometry/geodesy; taupgo
* only needs the angular great-circle distance and initial bearing, so this
* wraps orb/geo rather than hand-rolling haversine.
*-----------------------------------------------------------------------------*/
package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// DeltaAzimuth returns the angular distance (degrees) and azimuth from
// source to receiver (degrees clockwise from north, in [0,360)) given both
// points' geographic coordinates.
func DeltaAzimuth(srcLatDeg, srcLonDeg, rcvLatDeg, rcvLonDeg float64) (deltaDeg, azimuthDeg float64) {
	src := orb.Point{srcLonDeg, srcLatDeg}
	rcv := orb.Point{rcvLonDeg, rcvLatDeg}

	meters := geo.Distance(src, rcv)
	deltaDeg = (meters / geo.EarthRadius) * 180 / math.Pi

	bearing := geo.Bearing(src, rcv)
	azimuthDeg = math.Mod(bearing+360, 360)
	return deltaDeg, azimuthDeg
}

// Midpoint returns the great-circle midpoint between source and receiver,
// used to locate the bounce point of a surface reflection: the point
// reached by walking the source-to-receiver bearing for half the total
// distance.
func Midpoint(srcLatDeg, srcLonDeg, rcvLatDeg, rcvLonDeg float64) (latDeg, lonDeg float64) {
	src := orb.Point{srcLonDeg, srcLatDeg}
	rcv := orb.Point{rcvLonDeg, rcvLatDeg}

	meters := geo.Distance(src, rcv)
	bearing := geo.Bearing(src, rcv)
	mid := geo.PointAtBearingAndDistance(src, bearing, meters/2)
	return mid[1], mid[0]
}
