package domain

// Profile is the backend-confirmed identity for the current session.
type Profile struct {
	Username string
	Avatar   string
	Email    string
	Phone    string
}

// DateRange holds an inclusive check-in/check-out pair as calendar
// dates. Either side may be unset independently.
type DateRange struct {
	CheckIn  *string // YYYY-MM-DD
	CheckOut *string
}

// SearchFilters is the shared filter state read by the hotel list and
// order creation flows.
type SearchFilters struct {
	City    string
	Adcode  string // administrative code from reverse geocoding
	Keyword string
	Dates   DateRange
	Tags    []string // unordered, membership toggled
}

// Location is a reverse-geocoded address for device coordinates.
type Location struct {
	Province         string
	City             string
	District         string
	Adcode           string
	FormattedAddress string
}
