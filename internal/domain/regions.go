package domain

// Region labels derived from the state classification.
const (
	RegionNorthern     = "Northern"
	RegionNortheastern = "Northeastern"
	RegionEastern      = "Eastern"
	RegionWestern      = "Western"
	RegionCentral      = "Central"
	RegionSouthern     = "Southern"

	// DefaultState is returned when no bounding box matches, typically for
	// offshore events or epicenters in neighbouring countries that still
	// fall inside the feed's query window.
	DefaultState  = "India"
	DefaultRegion = "India"
)

// stateBox is an axis-aligned bounding box for one Indian state or union
// territory. Boxes are approximate; classification is a display-level
// bucketing, not a cadastral lookup.
type stateBox struct {
	state  string
	region string
	minLat float64
	maxLat float64
	minLon float64
	maxLon float64
}

// stateBoxes is evaluated in order and the first hit wins, so small states
// enclosed by a neighbour's box (Delhi, Goa, Sikkim, the northeastern hill
// states) are listed before the larger boxes that overlap them.
var stateBoxes = []stateBox{
	{"Delhi", RegionNorthern, 28.40, 28.90, 76.80, 77.40},
	{"Goa", RegionWestern, 14.90, 15.80, 73.70, 74.30},
	{"Sikkim", RegionNortheastern, 27.00, 28.20, 88.00, 88.95},
	{"Tripura", RegionNortheastern, 22.90, 24.55, 91.10, 92.35},
	{"Mizoram", RegionNortheastern, 21.90, 24.50, 92.15, 93.45},
	{"Manipur", RegionNortheastern, 23.80, 25.70, 92.95, 94.80},
	{"Nagaland", RegionNortheastern, 25.20, 27.05, 93.30, 95.25},
	{"Meghalaya", RegionNortheastern, 25.00, 26.12, 89.80, 92.80},
	{"Arunachal Pradesh", RegionNortheastern, 26.60, 29.50, 91.60, 97.40},
	{"Assam", RegionNortheastern, 24.10, 28.20, 89.70, 96.05},
	{"Jammu and Kashmir", RegionNorthern, 32.25, 37.10, 73.80, 80.35},
	{"Himachal Pradesh", RegionNorthern, 30.40, 33.25, 75.55, 79.05},
	{"Uttarakhand", RegionNorthern, 28.70, 31.50, 77.55, 81.05},
	{"Punjab", RegionNorthern, 29.50, 32.55, 73.85, 76.95},
	{"Haryana", RegionNorthern, 27.60, 30.95, 74.45, 77.60},
	{"Bihar", RegionEastern, 24.30, 27.55, 83.30, 88.15},
	{"West Bengal", RegionEastern, 21.50, 27.25, 85.80, 89.90},
	{"Jharkhand", RegionEastern, 21.90, 25.35, 83.30, 87.95},
	{"Odisha", RegionEastern, 17.80, 22.60, 81.35, 87.50},
	{"Chhattisgarh", RegionCentral, 17.80, 24.10, 80.25, 84.40},
	{"Uttar Pradesh", RegionNorthern, 23.85, 30.40, 77.05, 84.65},
	{"Madhya Pradesh", RegionCentral, 21.05, 26.90, 74.00, 82.80},
	{"Gujarat", RegionWestern, 20.10, 24.70, 68.15, 74.50},
	{"Rajasthan", RegionWestern, 23.30, 30.20, 69.50, 78.30},
	{"Telangana", RegionSouthern, 15.80, 19.92, 77.25, 81.80},
	{"Maharashtra", RegionWestern, 15.60, 22.05, 72.60, 80.90},
	{"Karnataka", RegionSouthern, 11.60, 18.45, 74.00, 78.60},
	{"Kerala", RegionSouthern, 8.20, 12.80, 74.85, 77.40},
	{"Tamil Nadu", RegionSouthern, 8.05, 13.60, 76.20, 80.35},
	{"Andhra Pradesh", RegionSouthern, 12.60, 19.10, 76.75, 84.80},
	{"Andaman and Nicobar Islands", RegionEastern, 6.70, 13.70, 92.20, 94.30},
}

// ClassifyCoordinates buckets a WGS-84 coordinate into an Indian state and
// region. It is a pure, total function: coordinates that match no bounding
// box return the country-level default labels rather than an error.
func ClassifyCoordinates(lat, lon float64) (state, region string) {
	for _, b := range stateBoxes {
		if lat >= b.minLat && lat <= b.maxLat && lon >= b.minLon && lon <= b.maxLon {
			return b.state, b.region
		}
	}
	return DefaultState, DefaultRegion
}
