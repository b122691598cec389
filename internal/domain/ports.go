package domain

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors shared across adapters and services.
var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrLoginRequired = errors.New("login required")
)

// BusinessError is a 2xx response whose body carried a failure flag
// (code != 0/200 or success=false). Message is the server's own text
// and is shown to the user as-is when present.
type BusinessError struct {
	Code    int
	Message string
}

func (e *BusinessError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("business error %d", e.Code)
}

// BookingAPI is the EasyStay backend. List/detail endpoints return the
// decoded JSON as-is (shape varies per deployment); the app layer owns
// normalization.
type BookingAPI interface {
	Login(ctx context.Context, email, password string) (map[string]any, error)
	Register(ctx context.Context, reg Registration) (map[string]any, error)
	UserInfo(ctx context.Context) (map[string]any, error)

	SearchHotels(ctx context.Context, q SearchQuery) (any, error)
	HotelDetail(ctx context.Context, id string) (any, error)

	CreateOrder(ctx context.Context, payload map[string]any) (map[string]any, error)
	ListOrders(ctx context.Context, email string) (any, error)
	OrderDetail(ctx context.Context, orderNo string) (any, error)
	UpdateOrderStatus(ctx context.Context, orderNo, status string) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// StateStore is the device-local persistence for the session token and
// the cached profile.
type StateStore interface {
	Token() string
	SetToken(tok string) error
	ClearToken() error

	Profile() (Profile, bool)
	SetProfile(p Profile) error
	ClearProfile() error
}

type Geocoder interface {
	Regeo(ctx context.Context, lng, lat float64) (Location, error)
}

// SearchQuery mirrors the /api/hotels/search query surface. Optional
// knobs are pointers so "unset" never hits the wire.
type SearchQuery struct {
	Page     int
	PageSize int
	City     string
	Keyword  string
	CheckIn  string
	CheckOut string
	Sort     string
	Stars    *int
	MinPrice *int
	MaxPrice *int
	UserLat  *float64
	UserLng  *float64
}
