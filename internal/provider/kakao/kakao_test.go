package kakao

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLatLng(t *testing.T) {
	cases := []struct {
		in       string
		lat, lng float64
		ok       bool
	}{
		{"37.5665,126.9780", 37.5665, 126.9780, true},
		{" 37.5665 , 126.9780 ", 37.5665, 126.9780, true},
		{"-33.86,151.21", -33.86, 151.21, true},
		{"City Hall", 0, 0, false},
		{"37.5665", 0, 0, false},
		{"37.5665,126.9780,0", 0, 0, false},
		{"lat,lng", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tc := range cases {
		ll, ok := parseLatLng(tc.in)
		if ok != tc.ok {
			t.Errorf("parseLatLng(%q) ok = %v, want %v", tc.in, ok, tc.ok)
			continue
		}
		if ok && (ll.Lat != tc.lat || ll.Lng != tc.lng) {
			t.Errorf("parseLatLng(%q) = %+v, want {%v %v}", tc.in, ll, tc.lat, tc.lng)
		}
	}
}

func TestResolveLiteralNeedsNoKey(t *testing.T) {
	c := NewClient("", zerolog.Nop())
	ll, err := c.Resolve(context.Background(), "37.5665,126.9780")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ll.Lat != 37.5665 || ll.Lng != 126.9780 {
		t.Fatalf("Resolve = %+v", ll)
	}
}

func TestResolvePlaceNameWithoutKeyFails(t *testing.T) {
	c := NewClient("", zerolog.Nop())
	if _, err := c.Resolve(context.Background(), "City Hall"); err == nil {
		t.Fatal("Resolve geocoded a place name with no API key")
	}
}
