package app

import (
	"encoding/json"
	"testing"

	"easystay/internal/domain"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return v
}

func TestExtractList_Shapes(t *testing.T) {
	one := `[{"id":1}]`
	cases := map[string]string{
		"bare array":       one,
		"under data":       `{"data":` + one + `}`,
		"data.list":        `{"code":0,"data":{"list":` + one + `}}`,
		"data.hotels":      `{"data":{"hotels":` + one + `}}`,
		"data.items":       `{"data":{"items":` + one + `}}`,
		"top-level hotels": `{"hotels":` + one + `}`,
		"top-level list":   `{"list":` + one + `}`,
		"top-level items":  `{"items":` + one + `}`,
		"orders key":       `{"data":{"orders":` + one + `}}`,
	}
	for name, raw := range cases {
		got := extractList(decode(t, raw))
		if len(got) != 1 {
			t.Errorf("%s: want 1 record, got %d", name, len(got))
		}
	}

	for name, raw := range map[string]string{
		"empty object": `{}`,
		"null":         `null`,
		"scalar":       `42`,
		"no array":     `{"data":{"total":3}}`,
	} {
		got := extractList(decode(t, raw))
		if got == nil || len(got) != 0 {
			t.Errorf("%s: want empty non-nil slice, got %#v", name, got)
		}
	}
}

func TestMapHotelSummaries_AliasChains(t *testing.T) {
	raw := decode(t, `{"code":0,"data":{"list":[
		{"hotel_id":7,"hotel_name":"杭州万豪","cover_img":"a.jpg","star_rating":5,"score":4.7,"current_price":688,"location":"西湖区","amenities":["亲子","泳池"]},
		{}
	]}}`)
	got := mapHotelSummaries(raw)
	if len(got) != 2 {
		t.Fatalf("want 2 summaries, got %d", len(got))
	}
	h := got[0]
	if h.ID != "7" || h.Name != "杭州万豪" || h.Image != "a.jpg" {
		t.Fatalf("identity fields: %+v", h)
	}
	if h.Stars != 5 || h.Score != 4.7 || h.Price != 688 || h.Address != "西湖区" {
		t.Fatalf("alias chains: %+v", h)
	}
	if len(h.Tags) != 2 {
		t.Fatalf("tags: %+v", h.Tags)
	}
	// empty record gets full defaults, not zero-value chaos
	if got[1].Name != placeholderHotelName || got[1].Price != 0 {
		t.Fatalf("defaults: %+v", got[1])
	}
}

func TestMapHotel_WrappedAndStringEncoded(t *testing.T) {
	raw := decode(t, `{"code":0,"data":{
		"id":"h9","name":"易宿江景","star":4,"score":4.5,"review_count":120,
		"tel":"0571-12345678","intro":"临江",
		"facilities":"[\"wifi\",{\"icon\":\"p\",\"name\":\"停车场\"}]",
		"images":"[\"x.jpg\"]",
		"room_types":[{"room_name":"高级大床房","size":"25㎡","max_people":2,"current_price":520,"bed_type":"大床"}],
		"policy":"{\"check_in\":[\"14:00后入住\"],\"cancel\":[\"18:00前免费取消\"]}"
	}}`)
	h := mapHotel(raw, "h9")
	if h.ID != "h9" || h.Name != "易宿江景" || h.Stars != 4 || h.ReviewCount != 120 {
		t.Fatalf("core fields: %+v", h)
	}
	if h.Phone != "0571-12345678" || h.Description != "临江" {
		t.Fatalf("phone/description aliases: %+v", h)
	}
	if len(h.Facilities) != 2 || h.Facilities[1].Name != "停车场" {
		t.Fatalf("string-encoded facilities: %+v", h.Facilities)
	}
	if len(h.Images) != 1 || h.Images[0] != "x.jpg" {
		t.Fatalf("string-encoded images: %+v", h.Images)
	}
	if len(h.Rooms) != 1 {
		t.Fatalf("rooms: %+v", h.Rooms)
	}
	r := h.Rooms[0]
	if r.Name != "高级大床房" || r.Area != "25㎡" || r.Capacity != "2" || r.CurrentPrice != 520 {
		t.Fatalf("room mapping: %+v", r)
	}
	if r.Stock != 999 {
		t.Fatalf("missing stock should default to 999, got %d", r.Stock)
	}
	if len(h.Policies.CheckIn) != 1 || len(h.Policies.Cancellation) != 1 {
		t.Fatalf("string-encoded policies: %+v", h.Policies)
	}
}

func TestMapHotel_Defaults(t *testing.T) {
	h := mapHotel(decode(t, `{"data":{}}`), "fallback-id")
	if h.ID != "fallback-id" {
		t.Fatalf("id fallback: %+v", h)
	}
	if h.Name != placeholderHotelName || h.Address != placeholderAddress || h.Description != placeholderDesc {
		t.Fatalf("placeholders: %+v", h)
	}
	if h.MaxScore != 5.0 {
		t.Fatalf("max score default: %v", h.MaxScore)
	}
	if h.Facilities == nil || h.Images == nil || h.Rooms == nil {
		t.Fatalf("slices must be non-nil: %+v", h)
	}
}

func TestMapOrders_StatusAndNights(t *testing.T) {
	raw := decode(t, `{"data":[
		{"order_no":"E1","hotel_name":"A","check_in":"2026-02-07","check_out":"2026-02-09","total_price":1376,"status":"pending"},
		{"orderNo":"E2","hotelName":"B","checkIn":"2026-02-07T10:00:00Z","checkOut":"2026-02-08","totalPrice":688,"status":"已取消"},
		{"order_no":"E3","status":"shipped??"}
	]}`)
	got := mapOrders(raw)
	if len(got) != 3 {
		t.Fatalf("want 3 orders, got %d", len(got))
	}
	if got[0].Status != domain.OrderPending || got[0].Nights != 2 || got[0].TotalPrice != 1376 {
		t.Fatalf("order 0: %+v", got[0])
	}
	if got[1].OrderNo != "E2" || got[1].Status != domain.OrderCancelled || got[1].Nights != 1 {
		t.Fatalf("camelCase order: %+v", got[1])
	}
	if got[2].Status != domain.OrderCompleted || got[2].RawStatus != "shipped??" {
		t.Fatalf("unknown status folds to completed, raw preserved: %+v", got[2])
	}
}

func TestMapProfile(t *testing.T) {
	p := mapProfile(decode(t, `{"success":true,"data":{"nickname":"小王","mobile":"13800000000","user_email":"w@x.com"}}`))
	if p.Username != "小王" || p.Phone != "13800000000" || p.Email != "w@x.com" {
		t.Fatalf("profile aliases: %+v", p)
	}
}

func TestLoginToken(t *testing.T) {
	cases := map[string]string{
		`{"data":{"token":"t1"}}`:        "t1",
		`{"token":"t2"}`:                 "t2",
		`{"data":{"access_token":"t3"}}`: "t3",
		`{"data":{}}`:                    "",
	}
	for raw, want := range cases {
		m, _ := decode(t, raw).(map[string]any)
		if got := loginToken(m); got != want {
			t.Errorf("%s: got %q want %q", raw, got, want)
		}
	}
}

func TestSafeParseArray(t *testing.T) {
	if got := safeParseArray("{broken"); len(got) != 0 {
		t.Fatalf("broken JSON string must yield empty: %v", got)
	}
	if got := safeParseArray(42.0); len(got) != 0 {
		t.Fatalf("scalar must yield empty: %v", got)
	}
	if got := safeParseArray(`[1,2]`); len(got) != 2 {
		t.Fatalf("encoded array must parse: %v", got)
	}
}
