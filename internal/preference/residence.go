package preference

import "strings"

const (
	// ProvinceCluster is the province-wide region filter.
	ProvinceCluster = "전남"
	// MetroCluster is the metro-area region filter.
	MetroCluster = "광주"
)

// provinceCities are the cluster member cities, in lookup order. When a
// location names more than one, the later entry wins.
var provinceCities = []string{"여수", "순천", "광양", "목포"}

// industrialCities share a labor market where large employers hire heavily
// from associate-degree and high-school graduates.
var industrialCities = []string{"여수", "순천", "광양"}

// ResidenceCity returns the province cluster city named in location, or "".
func ResidenceCity(location string) string {
	city := ""
	for _, c := range provinceCities {
		if strings.Contains(location, c) {
			city = c
		}
	}
	return city
}

// InMetro reports whether the client already lives in the metro cluster.
func InMetro(location string) bool {
	return strings.Contains(location, MetroCluster)
}

// InIndustrialBelt reports residence in one of the industrial cluster cities.
func InIndustrialBelt(location string) bool {
	for _, c := range industrialCities {
		if strings.Contains(location, c) {
			return true
		}
	}
	return false
}
