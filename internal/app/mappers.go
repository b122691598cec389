package app

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"easystay/internal/domain"
)

/********** alias registries (single source of truth) **********/

var summaryAliases = map[string][]string{
	"id":      {"id", "_id", "hotel_id", "hotelId"},
	"name":    {"name", "hotel_name", "hotelName"},
	"image":   {"image", "cover_img", "cover_image", "coverImg"},
	"stars":   {"star", "stars", "star_rating", "rating"},
	"score":   {"score", "rating"},
	"price":   {"currentPrice", "current_price", "price"},
	"address": {"address", "location"},
	"tags":    {"tags", "amenities"},
}

var hotelAliases = map[string][]string{
	"id":           {"id", "_id", "hotel_id", "hotelId"},
	"name":         {"name", "hotel_name", "hotelName"},
	"name_en":      {"nameEn", "name_en", "english_name"},
	"stars":        {"star", "stars", "star_rating", "rating"},
	"score":        {"score", "rating"},
	"max_score":    {"maxRating", "max_rating"},
	"review_count": {"reviewCount", "review_count", "comment_count"},
	"address":      {"address", "location"},
	"phone":        {"phone", "tel", "telephone"},
	"description":  {"description", "intro", "introduction"},
	"facilities":   {"facilities", "facility"},
	"images":       {"images", "image", "cover_img"},
	"rooms":        {"rooms", "room_types"},
	"policies":     {"policies", "policy"},
}

var roomAliases = map[string][]string{
	"id":             {"id", "_id"},
	"name":           {"name", "room_name"},
	"name_en":        {"nameEn", "name_en"},
	"image":          {"image", "cover_img", "cover_image"},
	"area":           {"area", "size"},
	"bed_type":       {"bedType", "bed_type", "bed"},
	"capacity":       {"capacity", "max_people"},
	"tags":           {"tags", "amenities"},
	"original_price": {"originalPrice", "original_price"},
	"price":          {"currentPrice", "current_price", "price"},
	"stock":          {"stock", "available"},
	"promotion":      {"hasPromotion", "has_promotion", "promotion"},
}

var orderAliases = map[string][]string{
	"order_no":    {"order_no", "orderNo", "id"},
	"hotel_name":  {"hotel_name", "hotelName"},
	"room_name":   {"room_name", "roomName"},
	"check_in":    {"check_in", "checkIn"},
	"check_out":   {"check_out", "checkOut"},
	"total_price": {"total_price", "totalPrice", "price"},
	"status":      {"status", "order_status"},
	"guest_name":  {"guest_name", "guestName"},
	"guest_phone": {"guest_phone", "guestPhone"},
	"created_at":  {"created_at", "createdAt"},
}

var profileAliases = map[string][]string{
	"username": {"username", "name", "nickname"},
	"avatar":   {"avatar", "avatar_url", "avatarUrl"},
	"email":    {"email", "user_email", "mail"},
	"phone":    {"phone", "mobile", "tel"},
}

// Display placeholders, matching what the screens expect.
const (
	placeholderHotelName = "未知酒店"
	placeholderAddress   = "地址信息暂无"
	placeholderDesc      = "暂无介绍"
	placeholderRoomName  = "标准房"
	placeholderBedType   = "标准床"
)

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// firstStr: first non-empty string for a named alias set.
func firstStr(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		if s, ok := lookupAny(m, p).(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// firstText renders the first present alias verbatim: strings pass
// through untouched (units like "25㎡" survive), numbers render as-is.
func firstText(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		switch v := lookupAny(m, p).(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// firstFloat: number from alias paths (float64/int/string like "4,7").
func firstFloat(m map[string]any, aliases map[string][]string, key string) (float64, bool) {
	for _, p := range aliases[key] {
		switch v := lookupAny(m, p).(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func firstInt(m map[string]any, aliases map[string][]string, key string) (int, bool) {
	if f, ok := firstFloat(m, aliases, key); ok {
		return int(f), true
	}
	return 0, false
}

func firstBool(m map[string]any, aliases map[string][]string, key string) bool {
	for _, p := range aliases[key] {
		switch v := lookupAny(m, p).(type) {
		case bool:
			return v
		case float64:
			return v != 0
		case string:
			if v != "" && v != "0" && !strings.EqualFold(v, "false") {
				return true
			}
		}
	}
	return false
}

// firstRaw returns the first present alias value of any type.
func firstRaw(m map[string]any, aliases map[string][]string, key string) any {
	for _, p := range aliases[key] {
		if v := lookupAny(m, p); v != nil {
			return v
		}
	}
	return nil
}

/********** shape tolerance **********/

// safeParseArray accepts a native array or a JSON-encoded string of
// one; anything else becomes an empty slice, never an error.
func safeParseArray(v any) []any {
	switch t := v.(type) {
	case nil:
		return []any{}
	case []any:
		return t
	case string:
		var out []any
		if err := json.Unmarshal([]byte(t), &out); err == nil {
			return out
		}
		return []any{}
	default:
		return []any{}
	}
}

// safeParseObject accepts a native object or a JSON-encoded string of
// one; anything else becomes an empty map.
func safeParseObject(v any) map[string]any {
	switch t := v.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		return t
	case string:
		var out map[string]any
		if err := json.Unmarshal([]byte(t), &out); err == nil && out != nil {
			return out
		}
		return map[string]any{}
	default:
		return map[string]any{}
	}
}

// stringSlice flattens an array of strings or {url/src/name} objects.
func stringSlice(v any) []string {
	raw := safeParseArray(v)
	out := make([]string, 0, len(raw))
	for _, it := range raw {
		switch t := it.(type) {
		case string:
			if t != "" {
				out = append(out, t)
			}
		case map[string]any:
			for _, k := range []string{"url", "src", "name"} {
				if s, ok := t[k].(string); ok && s != "" {
					out = append(out, s)
					break
				}
			}
		}
	}
	return out
}

var listKeys = []string{"list", "hotels", "items", "orders"}

// extractList finds the record array wherever the backend nested it:
// the body itself, body.data, body.data.{list,hotels,items,orders}, or
// the same keys at the top level. Nothing found → empty slice.
func extractList(raw any) []map[string]any {
	if arr, ok := toObjects(raw); ok {
		return arr
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return []map[string]any{}
	}
	if d, present := m["data"]; present {
		if arr, ok := toObjects(d); ok {
			return arr
		}
		if dm, ok := d.(map[string]any); ok {
			for _, k := range listKeys {
				if arr, ok := toObjects(dm[k]); ok {
					return arr
				}
			}
		}
	}
	for _, k := range listKeys {
		if arr, ok := toObjects(m[k]); ok {
			return arr
		}
	}
	return []map[string]any{}
}

func toObjects(v any) ([]map[string]any, bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]map[string]any, 0, len(arr))
	for _, it := range arr {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out, true
}

// detailObject unwraps the body.data envelope for single-record
// responses, or returns the body itself when unwrapped.
func detailObject(raw any) map[string]any {
	m, ok := raw.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	if d, ok := m["data"].(map[string]any); ok {
		return d
	}
	return m
}

/********** hotel mappers **********/

func mapHotelSummaries(raw any) []domain.HotelSummary {
	in := extractList(raw)
	out := make([]domain.HotelSummary, 0, len(in))
	for _, h := range in {
		score, _ := firstFloat(h, summaryAliases, "score")
		stars, _ := firstInt(h, summaryAliases, "stars")
		price, _ := firstInt(h, summaryAliases, "price")
		out = append(out, domain.HotelSummary{
			ID:      firstText(h, summaryAliases, "id"),
			Name:    or(firstStr(h, summaryAliases, "name"), placeholderHotelName),
			Image:   firstStr(h, summaryAliases, "image"),
			Stars:   stars,
			Score:   score,
			Price:   price,
			Address: firstStr(h, summaryAliases, "address"),
			Tags:    stringSlice(firstRaw(h, summaryAliases, "tags")),
		})
	}
	return out
}

func mapHotel(raw any, fallbackID string) domain.Hotel {
	p := detailObject(raw)

	stars, _ := firstInt(p, hotelAliases, "stars")
	score, _ := firstFloat(p, hotelAliases, "score")
	maxScore, ok := firstFloat(p, hotelAliases, "max_score")
	if !ok {
		maxScore = 5.0
	}
	reviews, _ := firstInt(p, hotelAliases, "review_count")

	rooms := safeParseArray(firstRaw(p, hotelAliases, "rooms"))
	mapped := make([]domain.Room, 0, len(rooms))
	for _, r := range rooms {
		if rm, ok := r.(map[string]any); ok {
			mapped = append(mapped, mapRoom(rm))
		}
	}

	return domain.Hotel{
		ID:          or(firstText(p, hotelAliases, "id"), fallbackID),
		Name:        or(firstStr(p, hotelAliases, "name"), placeholderHotelName),
		NameEn:      firstStr(p, hotelAliases, "name_en"),
		Stars:       stars,
		Score:       score,
		MaxScore:    maxScore,
		ReviewCount: reviews,
		Address:     or(firstStr(p, hotelAliases, "address"), placeholderAddress),
		Phone:       firstStr(p, hotelAliases, "phone"),
		Description: or(firstStr(p, hotelAliases, "description"), placeholderDesc),
		Facilities:  mapFacilities(firstRaw(p, hotelAliases, "facilities")),
		Images:      stringSlice(firstRaw(p, hotelAliases, "images")),
		Rooms:       mapped,
		Policies:    mapPolicies(firstRaw(p, hotelAliases, "policies")),
	}
}

func mapFacilities(v any) []domain.Facility {
	raw := safeParseArray(v)
	out := make([]domain.Facility, 0, len(raw))
	for _, it := range raw {
		switch t := it.(type) {
		case string:
			if t != "" {
				out = append(out, domain.Facility{Name: t})
			}
		case map[string]any:
			icon, _ := t["icon"].(string)
			name, _ := t["name"].(string)
			if name != "" || icon != "" {
				out = append(out, domain.Facility{Icon: icon, Name: name})
			}
		}
	}
	return out
}

func mapRoom(r map[string]any) domain.Room {
	orig, _ := firstInt(r, roomAliases, "original_price")
	price, _ := firstInt(r, roomAliases, "price")
	stock, ok := firstInt(r, roomAliases, "stock")
	if !ok {
		stock = 999
	}
	id := firstText(r, roomAliases, "id")
	if id == "" {
		// the backend sometimes omits room ids; fabricate a stable-ish one
		id = uuid.NewString()
	}
	return domain.Room{
		ID:            id,
		Name:          or(firstStr(r, roomAliases, "name"), placeholderRoomName),
		NameEn:        firstStr(r, roomAliases, "name_en"),
		Image:         firstStr(r, roomAliases, "image"),
		Area:          firstText(r, roomAliases, "area"),
		BedType:       or(firstStr(r, roomAliases, "bed_type"), placeholderBedType),
		Capacity:      firstText(r, roomAliases, "capacity"),
		Tags:          stringSlice(firstRaw(r, roomAliases, "tags")),
		OriginalPrice: orig,
		CurrentPrice:  price,
		Stock:         stock,
		HasPromotion:  firstBool(r, roomAliases, "promotion"),
	}
}

func mapPolicies(v any) domain.Policies {
	p := safeParseObject(v)
	pick := func(keys ...string) []string {
		for _, k := range keys {
			if raw, present := p[k]; present {
				return stringSlice(raw)
			}
		}
		return []string{}
	}
	return domain.Policies{
		CheckIn:      pick("checkIn", "check_in", "checkin"),
		Cancellation: pick("cancellation", "cancel"),
		Other:        pick("other", "others", "notes"),
	}
}

/********** order mappers **********/

func mapOrders(raw any) []domain.Order {
	in := extractList(raw)
	out := make([]domain.Order, 0, len(in))
	for _, o := range in {
		out = append(out, mapOrderRecord(o))
	}
	return out
}

func mapOrder(raw any) domain.Order {
	return mapOrderRecord(detailObject(raw))
}

func mapOrderRecord(o map[string]any) domain.Order {
	total, _ := firstInt(o, orderAliases, "total_price")
	checkIn := firstStr(o, orderAliases, "check_in")
	checkOut := firstStr(o, orderAliases, "check_out")
	rawStatus := firstText(o, orderAliases, "status")
	return domain.Order{
		OrderNo:    firstText(o, orderAliases, "order_no"),
		HotelName:  or(firstStr(o, orderAliases, "hotel_name"), placeholderHotelName),
		RoomName:   or(firstStr(o, orderAliases, "room_name"), placeholderRoomName),
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Nights:     Nights(checkIn, checkOut),
		TotalPrice: total,
		Status:     canonicalStatus(rawStatus),
		RawStatus:  rawStatus,
		GuestName:  firstStr(o, orderAliases, "guest_name"),
		GuestPhone: firstStr(o, orderAliases, "guest_phone"),
		CreatedAt:  firstStr(o, orderAliases, "created_at"),
	}
}

// canonicalStatus folds the spellings seen in the wild (english codes,
// localized labels) into the three lifecycle states. Unknown values
// read as completed, matching the screens' behavior.
func canonicalStatus(s string) domain.OrderStatus {
	low := strings.ToLower(s)
	switch {
	case strings.Contains(low, "pending") || strings.Contains(s, "待支付"):
		return domain.OrderPending
	case strings.Contains(low, "cancel") || strings.Contains(s, "已取消"):
		return domain.OrderCancelled
	default:
		return domain.OrderCompleted
	}
}

/********** profile mapper **********/

func mapProfile(raw any) domain.Profile {
	p := detailObject(raw)
	return domain.Profile{
		Username: firstStr(p, profileAliases, "username"),
		Avatar:   firstStr(p, profileAliases, "avatar"),
		Email:    firstStr(p, profileAliases, "email"),
		Phone:    firstStr(p, profileAliases, "phone"),
	}
}

// loginToken digs the session token out of a login envelope.
func loginToken(m map[string]any) string {
	for _, p := range []string{"data.token", "token", "data.access_token", "access_token"} {
		if s, ok := lookupAny(m, p).(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func or(s, def string) string {
	if s != "" {
		return s
	}
	return def
}
