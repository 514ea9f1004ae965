package gps

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/autopeer-io/seatrack/internal/tracker/core"
)

type sentence struct {
	Type string
	// Fields is the comma-split payload, without '$' and checksum.
	Fields []string
}

func parseSentence(line string) (sentence, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "$") {
		return sentence{}, fmt.Errorf("nmea: missing '$'")
	}
	star := strings.LastIndexByte(line, '*')
	if star == -1 {
		return sentence{}, fmt.Errorf("nmea: missing checksum")
	}
	payload := line[1:star]
	ck := strings.TrimSpace(line[star+1:])
	if len(ck) < 2 {
		return sentence{}, fmt.Errorf("nmea: short checksum")
	}
	want, err := hex.DecodeString(ck[:2])
	if err != nil || len(want) != 1 {
		return sentence{}, fmt.Errorf("nmea: bad checksum %q", ck[:2])
	}
	var got byte
	for i := 0; i < len(payload); i++ {
		got ^= payload[i]
	}
	if got != want[0] {
		return sentence{}, fmt.Errorf("nmea: checksum mismatch")
	}

	parts := strings.Split(payload, ",")
	if len(parts[0]) < 3 {
		return sentence{}, fmt.Errorf("nmea: short type")
	}
	// GPRMC, GNRMC and friends all normalize to RMC.
	t := parts[0]
	if len(t) > 3 {
		t = t[len(t)-3:]
	}
	return sentence{Type: strings.ToUpper(t), Fields: parts}, nil
}

// parseRMC decodes a Recommended Minimum sentence:
//
//	0: talker+type
//	1: time (hhmmss.sss)
//	2: status (A=active, V=void)
//	3: latitude (ddmm.mmmm)
//	4: N/S
//	5: longitude (dddmm.mmmm)
//	6: E/W
//	7: speed over ground (knots)
//	8: course over ground (deg)
//	9: date (ddmmyy)
//
// ok is false for void or truncated sentences.
func parseRMC(f []string) (fix core.Fix, ok bool) {
	if len(f) < 10 || strings.TrimSpace(f[2]) != "A" {
		return core.Fix{}, false
	}

	lat, latOK := parseLatLon(f[3], f[4])
	lon, lonOK := parseLatLon(f[5], f[6])
	if latOK && lonOK {
		fix.Latitude, fix.Longitude = lat, lon
		fix.Valid |= core.ValidLocation
	}
	if sog, ok := parseFloat(f[7]); ok {
		fix.Speed = sog
		fix.Valid |= core.ValidSpeed
	}
	if cog, ok := parseFloat(f[8]); ok {
		fix.Heading = math.Mod(cog+360.0, 360.0)
		fix.Valid |= core.ValidHeading
	}
	if strings.TrimSpace(f[1]) != "" && strings.TrimSpace(f[9]) != "" {
		fix.Valid |= core.ValidTime
	}
	return fix, true
}

// acceptable reports whether fix may replace the current one: the location
// must be valid and neither coordinate exactly zero.
func acceptable(fix core.Fix) bool {
	return fix.Valid.Has(core.ValidLocation) && fix.Latitude != 0 && fix.Longitude != 0
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseLatLon parses ddmm.mmmm (latitude) or dddmm.mmmm (longitude) plus a
// hemisphere letter into signed decimal degrees.
func parseLatLon(v string, hemi string) (float64, bool) {
	v = strings.TrimSpace(v)
	hemi = strings.ToUpper(strings.TrimSpace(hemi))
	if v == "" || (hemi != "N" && hemi != "S" && hemi != "E" && hemi != "W") {
		return 0, false
	}

	intPart := v
	if dot := strings.IndexByte(v, '.'); dot != -1 {
		intPart = v[:dot]
	}
	if len(intPart) < 3 {
		return 0, false
	}

	deg, err := strconv.Atoi(intPart[:len(intPart)-2])
	if err != nil {
		return 0, false
	}
	mins, err := strconv.ParseFloat(v[len(intPart)-2:], 64)
	if err != nil {
		return 0, false
	}

	dec := float64(deg) + mins/60.0
	if hemi == "S" || hemi == "W" {
		dec = -dec
	}
	return dec, true
}
