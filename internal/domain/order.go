package domain

// OrderStatus is the canonical lifecycle state. The backend has been
// seen returning several spellings; the normalizer folds them here.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

type Order struct {
	OrderNo    string
	HotelName  string
	RoomName   string
	CheckIn    string // YYYY-MM-DD, may carry a time suffix from the backend
	CheckOut   string
	Nights     int
	TotalPrice int // integer yuan
	Status     OrderStatus
	RawStatus  string // whatever the backend actually said
	GuestName  string
	GuestPhone string
	CreatedAt  string
}

// OrderForm carries the user inputs for order creation. Nights and the
// total are derived from the dates, never taken from the caller.
type OrderForm struct {
	HotelID    string
	HotelName  string
	RoomID     string
	RoomName   string
	Price      int // nightly, integer yuan
	CheckIn    string
	CheckOut   string
	GuestName  string
	GuestPhone string
}

type Registration struct {
	Name     string
	Email    string
	Phone    string
	Password string
}
