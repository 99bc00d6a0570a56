/*
Package geodesy provides the coordinate maths used to place traffic sensors.

It covers three things:

  - ToWGS84 converts an OSGB36 national grid reference (eastings/northings in
    metres) to WGS84 latitude/longitude.
  - Bearing returns the initial great-circle compass bearing between two
    points.
  - Classify maps a bearing onto one of eight compass octants.

# Usage

	pos, err := geodesy.ToWGS84(geodesy.GridPoint{Easting: 406000, Northing: 286000})
	if err != nil {
	    // only returned for pathological grid input
	}

	deg, err := geodesy.Bearing(start, end)
	dir := geodesy.Classify(deg) // "NE", "S", ...

All functions are pure and safe for concurrent use.
*/
package geodesy
