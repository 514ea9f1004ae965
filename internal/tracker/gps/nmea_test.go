package gps

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/autopeer-io/seatrack/internal/tracker/core"
)

// withChecksum frames payload as a complete NMEA sentence.
func withChecksum(payload string) string {
	var ck byte
	for i := 0; i < len(payload); i++ {
		ck ^= payload[i]
	}
	return fmt.Sprintf("$%s*%02X", payload, ck)
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestParseSentence(t *testing.T) {
	good := withChecksum("GNRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W")

	tests := []struct {
		name    string
		line    string
		want    string
		wantErr bool
	}{
		{name: "valid", line: good, want: "RMC"},
		{name: "trailing crlf", line: good + "\r\n", want: "RMC"},
		{name: "no dollar", line: strings.TrimPrefix(good, "$"), wantErr: true},
		{name: "no checksum", line: "$GPRMC,1,2,3", wantErr: true},
		{name: "bad checksum", line: good[:len(good)-2] + "00", wantErr: true},
		{name: "short type", line: withChecksum("GP"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSentence(tt.line)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseSentence() = %+v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSentence() error = %v", err)
			}
			if got.Type != tt.want {
				t.Errorf("Type = %q, want %q", got.Type, tt.want)
			}
		})
	}
}

func TestParseRMC(t *testing.T) {
	sent, err := parseSentence(withChecksum("GPRMC,123519,A,4807.038,N,01131.000,W,022.4,-10.0,230394,003.1,W"))
	if err != nil {
		t.Fatal(err)
	}

	fix, ok := parseRMC(sent.Fields)
	if !ok {
		t.Fatal("parseRMC() not ok")
	}
	if !approx(fix.Latitude, 48.1173) {
		t.Errorf("Latitude = %v, want 48.1173", fix.Latitude)
	}
	if !approx(fix.Longitude, -11.516666666) {
		t.Errorf("Longitude = %v, want -11.516667", fix.Longitude)
	}
	if !approx(fix.Speed, 22.4) {
		t.Errorf("Speed = %v, want 22.4", fix.Speed)
	}
	if !approx(fix.Heading, 350) {
		t.Errorf("Heading = %v, want 350", fix.Heading)
	}
	want := core.ValidLocation | core.ValidSpeed | core.ValidHeading | core.ValidTime
	if fix.Valid != want {
		t.Errorf("Valid = %b, want %b", fix.Valid, want)
	}
}

func TestParseRMC_Void(t *testing.T) {
	sent, err := parseSentence(withChecksum("GPRMC,123519,V,4807.038,N,01131.000,E,,,230394,,"))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := parseRMC(sent.Fields); ok {
		t.Error("void RMC accepted")
	}
}

func TestAcceptable(t *testing.T) {
	loc := core.ValidLocation
	tests := []struct {
		name string
		fix  core.Fix
		want bool
	}{
		{name: "valid", fix: core.Fix{Latitude: 59.9, Longitude: 10.7, Valid: loc}, want: true},
		{name: "zero latitude", fix: core.Fix{Latitude: 0, Longitude: 10.7, Valid: loc}},
		{name: "zero longitude", fix: core.Fix{Latitude: 59.9, Longitude: 0, Valid: loc}},
		{name: "no location flag", fix: core.Fix{Latitude: 59.9, Longitude: 10.7, Valid: core.ValidSpeed}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := acceptable(tt.fix); got != tt.want {
				t.Errorf("acceptable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseLatLon(t *testing.T) {
	tests := []struct {
		v, hemi string
		want    float64
		ok      bool
	}{
		{"5954.600", "N", 59.91, true},
		{"01045.000", "e", 10.75, true},
		{"3345.000", "S", -33.75, true},
		{"", "N", 0, false},
		{"5954.600", "X", 0, false},
		{"12", "N", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseLatLon(tt.v, tt.hemi)
		if ok != tt.ok || (ok && !approx(got, tt.want)) {
			t.Errorf("parseLatLon(%q, %q) = %v, %v; want %v, %v", tt.v, tt.hemi, got, ok, tt.want, tt.ok)
		}
	}
}
