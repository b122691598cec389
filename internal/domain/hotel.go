package domain

// Hotel is the fully-defaulted display projection of a hotel detail
// payload. Every field is populated by the normalizer; rendering code
// never sees a partial record.
type Hotel struct {
	ID          string
	Name        string
	NameEn      string
	Stars       int     // star tier 1-5, drives the star row
	Score       float64 // e.g. 4.7
	MaxScore    float64
	ReviewCount int
	Address     string
	Phone       string
	Description string
	Facilities  []Facility
	Images      []string
	Rooms       []Room
	Policies    Policies
}

type Facility struct {
	Icon string
	Name string
}

// Room keeps Area and Capacity verbatim: backends embed units in
// strings ("25㎡", "2人") and coercing to a number would lose them.
type Room struct {
	ID            string
	Name          string
	NameEn        string
	Image         string
	Area          string
	BedType       string
	Capacity      string
	Tags          []string
	OriginalPrice int
	CurrentPrice  int // nightly price, integer yuan
	Stock         int
	HasPromotion  bool
}

type Policies struct {
	CheckIn      []string
	Cancellation []string
	Other        []string
}

// HotelSummary is the list-card projection used by search results.
type HotelSummary struct {
	ID      string
	Name    string
	Image   string
	Stars   int
	Score   float64
	Price   int // nightly price, integer yuan
	Address string
	Tags    []string
}

type HotelsPage struct {
	Items []HotelSummary
	Page  int
}
