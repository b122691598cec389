package app

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"easystay/internal/domain"
)

// cnMobile matches mainland mobile numbers, the only phone format the
// booking form accepts.
var cnMobile = regexp.MustCompile(`^1[3-9]\d{9}$`)

// Orders drives the order lifecycle. Every operation is guarded by the
// session: the user identifier always comes from the token, never from
// caller input.
type Orders struct {
	api     domain.BookingAPI
	session *Session
}

func NewOrders(api domain.BookingAPI, session *Session) *Orders {
	return &Orders{api: api, session: session}
}

// Create validates the form, derives nights and the total from the
// dates, and posts the order. Returns the backend-assigned order
// number when one is present in the response.
func (s *Orders) Create(ctx context.Context, form domain.OrderForm) (string, error) {
	email, err := s.session.RequireIdentifier()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(form.GuestName) == "" {
		return "", fmt.Errorf("guest name is required")
	}
	phone := strings.TrimSpace(form.GuestPhone)
	if phone == "" {
		return "", fmt.Errorf("guest phone is required")
	}
	if !cnMobile.MatchString(phone) {
		return "", fmt.Errorf("guest phone %q is not a valid mobile number", phone)
	}

	checkIn := NormalizeDate(form.CheckIn)
	checkOut := NormalizeDate(form.CheckOut)
	nights := Nights(checkIn, checkOut)

	res, err := s.api.CreateOrder(ctx, map[string]any{
		"user_email":  email,
		"hotel_name":  form.HotelName,
		"room_name":   form.RoomName,
		"check_in":    checkIn,
		"check_out":   checkOut,
		"total_price": TotalPrice(form.Price, nights),
		"guest_name":  form.GuestName,
		"guest_phone": phone,
	})
	if err != nil {
		return "", err
	}
	return mapOrder(res).OrderNo, nil
}

// List fetches the caller's orders, keyed by the token identifier.
func (s *Orders) List(ctx context.Context) ([]domain.Order, error) {
	email, err := s.session.RequireIdentifier()
	if err != nil {
		return nil, err
	}
	raw, err := s.api.ListOrders(ctx, email)
	if err != nil {
		return nil, err
	}
	return mapOrders(raw), nil
}

// Detail fetches one order by its number.
func (s *Orders) Detail(ctx context.Context, orderNo string) (domain.Order, error) {
	if _, err := s.session.RequireIdentifier(); err != nil {
		return domain.Order{}, err
	}
	raw, err := s.api.OrderDetail(ctx, orderNo)
	if err != nil {
		return domain.Order{}, err
	}
	return mapOrder(raw), nil
}

// Cancel flips the order to cancelled.
func (s *Orders) Cancel(ctx context.Context, orderNo string) error {
	return s.updateStatus(ctx, orderNo, domain.OrderCancelled)
}

// Pay marks the order completed. There is no payment processor behind
// this; the backend only records the state change.
func (s *Orders) Pay(ctx context.Context, orderNo string) error {
	return s.updateStatus(ctx, orderNo, domain.OrderCompleted)
}

func (s *Orders) updateStatus(ctx context.Context, orderNo string, st domain.OrderStatus) error {
	if _, err := s.session.RequireIdentifier(); err != nil {
		return err
	}
	return s.api.UpdateOrderStatus(ctx, orderNo, string(st))
}

// FilterByStatus narrows a fetched list to one lifecycle tab. "all"
// (or empty) passes everything through.
func FilterByStatus(in []domain.Order, tab string) []domain.Order {
	tab = strings.ToLower(strings.TrimSpace(tab))
	if tab == "" || tab == "all" {
		return in
	}
	out := make([]domain.Order, 0, len(in))
	for _, o := range in {
		if string(o.Status) == tab || strings.Contains(strings.ToLower(o.RawStatus), tab) {
			out = append(out, o)
		}
	}
	return out
}
