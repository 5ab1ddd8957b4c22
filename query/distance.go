package query

import "math"

// earthRadiusKM is the mean Earth radius
const earthRadiusKM = 6371.0088

// Distance computes the great-circle distance in kilometers between
// two latitude/longitude pairs, using the haversine formula
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	var (
		phi1 = radians(lat1)
		phi2 = radians(lat2)

		dPhi    = radians(lat2 - lat1)
		dLambda = radians(lon2 - lon1)
	)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)

	return 2 * earthRadiusKM * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
