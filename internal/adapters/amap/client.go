// Package amap wraps the AMap v3 reverse-geocoding endpoint. The API
// key comes from configuration, never from source.
package amap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"easystay/internal/adapters/observability"
	"easystay/internal/domain"
)

type Client struct {
	base string
	key  string
	hc   *http.Client
}

func New(base, key string, timeout time.Duration) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("amap: API key is required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{base: base, key: key, hc: &http.Client{Timeout: timeout}}, nil
}

type regeoResp struct {
	Status   string `json:"status"`
	Info     string `json:"info"`
	Infocode string `json:"infocode"`
	Regeo    struct {
		FormattedAddress string `json:"formatted_address"`
		AddressComponent struct {
			Province string          `json:"province"`
			City     json.RawMessage `json:"city"` // string, or [] for municipalities
			District string          `json:"district"`
			Adcode   string          `json:"adcode"`
		} `json:"addressComponent"`
	} `json:"regeocode"`
}

func (c *Client) Regeo(ctx context.Context, lng, lat float64) (domain.Location, error) {
	vals := url.Values{}
	vals.Set("key", c.key)
	vals.Set("location", strconv.FormatFloat(lng, 'f', 6, 64)+","+strconv.FormatFloat(lat, 'f', 6, 64))
	vals.Set("output", "JSON")
	vals.Set("extensions", "base")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/geocode/regeo?"+vals.Encode(), nil)
	if err != nil {
		return domain.Location{}, err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("amap", "/geocode/regeo", 0, time.Since(start))
		return domain.Location{}, err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("amap", "/geocode/regeo", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return domain.Location{}, fmt.Errorf("amap: status %d", resp.StatusCode)
	}
	var out regeoResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.Location{}, err
	}
	if out.Status != "1" {
		return domain.Location{}, fmt.Errorf("amap: regeo error %s (%s)", out.Info, out.Infocode)
	}

	ac := out.Regeo.AddressComponent
	city := cityString(ac.City)
	if city == "" {
		// municipalities report an empty city array; the province is the city
		city = ac.Province
	}
	return domain.Location{
		Province:         ac.Province,
		City:             city,
		District:         ac.District,
		Adcode:           ac.Adcode,
		FormattedAddress: out.Regeo.FormattedAddress,
	}, nil
}

func cityString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var arr []string
	if err := json.Unmarshal(raw, &arr); err == nil && len(arr) > 0 {
		return arr[0]
	}
	return ""
}
