package input

import (
	"encoding/base64"
	"math"
	"strconv"
	"strings"
	"time"
)

// The As* helpers implement the fixed coercion ladder per primitive kind.
// Exact-kind reads grade MatchExact; accepted-but-widened reads grade
// MatchStrict; everything that only passes in lax mode grades MatchLax.
// Nothing beyond the enumerated rungs is ever coerced.

// AsBool reads a boolean. Lax: a small closed set of strings, ints 0/1 and
// floats 0.0/1.0.
func AsBool(v Value, strict bool) (bool, Match, bool) {
	if b, ok := v.Bool(); ok {
		return b, MatchExact, true
	}
	if strict {
		return false, 0, false
	}
	if s, ok := v.Str(); ok {
		if b, ok := strAsBool(s); ok {
			return b, MatchLax, true
		}
		return false, 0, false
	}
	if i, ok := v.Int(); ok {
		switch i {
		case 0:
			return false, MatchLax, true
		case 1:
			return true, MatchLax, true
		}
		return false, 0, false
	}
	if f, ok := v.Float(); ok {
		switch f {
		case 0:
			return false, MatchLax, true
		case 1:
			return true, MatchLax, true
		}
	}
	return false, 0, false
}

// AsInt reads an integer. Lax: bool, float with zero fractional part, and
// strings in integer or integral-float literal form.
func AsInt(v Value, strict bool) (int64, Match, bool) {
	if i, ok := v.Int(); ok {
		return i, MatchExact, true
	}
	if strict {
		return 0, 0, false
	}
	if b, ok := v.Bool(); ok {
		if b {
			return 1, MatchLax, true
		}
		return 0, MatchLax, true
	}
	if f, ok := v.Float(); ok {
		if i, ok := floatAsInt(f); ok {
			return i, MatchLax, true
		}
		return 0, 0, false
	}
	if s, ok := v.Str(); ok {
		if i, ok := strAsInt(s); ok {
			return i, MatchLax, true
		}
	}
	return 0, 0, false
}

// AsFloat reads a float. An integral value is accepted even in strict mode but
// grades MatchStrict so smart unions prefer an exact float member. Lax: bool
// and numeric strings.
func AsFloat(v Value, strict bool) (float64, Match, bool) {
	if v.Kind() == KindFloat {
		if f, ok := v.Float(); ok {
			return f, MatchExact, true
		}
	}
	if i, ok := v.Int(); ok {
		return float64(i), MatchStrict, true
	}
	if strict {
		return 0, 0, false
	}
	if b, ok := v.Bool(); ok {
		if b {
			return 1, MatchLax, true
		}
		return 0, MatchLax, true
	}
	if s, ok := v.Str(); ok {
		if f, ok := strAsFloat(s); ok {
			return f, MatchLax, true
		}
	}
	return 0, 0, false
}

// AsString reads a string. Numbers are only stringified when the node opted
// into coerceNumbers, and never in strict mode.
func AsString(v Value, strict, coerceNumbers bool) (string, Match, bool) {
	if s, ok := v.Str(); ok {
		return s, MatchExact, true
	}
	if strict || !coerceNumbers {
		return "", 0, false
	}
	if i, ok := v.Int(); ok {
		return strconv.FormatInt(i, 10), MatchLax, true
	}
	if f, ok := v.Float(); ok {
		return strconv.FormatFloat(f, 'g', -1, 64), MatchLax, true
	}
	return "", 0, false
}

// BytesFormat selects how string input is decoded into bytes.
type BytesFormat int

const (
	BytesUTF8 BytesFormat = iota
	BytesBase64
)

// AsBytes reads a byte string. A text string decodes per the configured
// format and grades MatchStrict, since text is the only byte representation
// some inputs have.
func AsBytes(v Value, format BytesFormat) ([]byte, Match, bool) {
	if b, ok := v.Bytes(); ok {
		return b, MatchExact, true
	}
	if s, ok := v.Str(); ok {
		switch format {
		case BytesBase64:
			if b, err := base64.StdEncoding.DecodeString(s); err == nil {
				return b, MatchStrict, true
			}
			if b, err := base64.URLEncoding.DecodeString(s); err == nil {
				return b, MatchStrict, true
			}
			return nil, 0, false
		default:
			return []byte(s), MatchStrict, true
		}
	}
	return nil, 0, false
}

// AsTime reads a timestamp. RFC 3339 strings grade MatchStrict; lax adds
// int/float epoch seconds.
func AsTime(v Value, strict bool) (time.Time, Match, bool) {
	if t, ok := v.Time(); ok {
		return t, MatchExact, true
	}
	if s, ok := v.Str(); ok {
		if t, ok := strAsTime(s); ok {
			return t, MatchStrict, true
		}
		return time.Time{}, 0, false
	}
	if strict {
		return time.Time{}, 0, false
	}
	if i, ok := v.Int(); ok {
		return time.Unix(i, 0).UTC(), MatchLax, true
	}
	if f, ok := v.Float(); ok {
		sec, frac := math.Modf(f)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), MatchLax, true
	}
	return time.Time{}, 0, false
}

// AsDate reads a calendar date ("2006-01-02"). A timestamp at exact midnight
// also qualifies.
func AsDate(v Value, strict bool) (time.Time, Match, bool) {
	if t, ok := v.Time(); ok {
		if isMidnight(t) {
			return t, MatchExact, true
		}
		return time.Time{}, 0, false
	}
	if s, ok := v.Str(); ok {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			return t.UTC(), MatchStrict, true
		}
		if !strict {
			if t, ok := strAsTime(s); ok && isMidnight(t) {
				return t, MatchLax, true
			}
		}
	}
	return time.Time{}, 0, false
}

// AsClock reads a time of day and returns it as an offset from midnight.
// Lax: int/float seconds since midnight.
func AsClock(v Value, strict bool) (time.Duration, Match, bool) {
	if s, ok := v.Str(); ok {
		for _, layout := range []string{"15:04:05.999999999", "15:04:05", "15:04"} {
			if t, err := time.Parse(layout, s); err == nil {
				d := time.Duration(t.Hour())*time.Hour +
					time.Duration(t.Minute())*time.Minute +
					time.Duration(t.Second())*time.Second +
					time.Duration(t.Nanosecond())
				return d, MatchStrict, true
			}
		}
		return 0, 0, false
	}
	if strict {
		return 0, 0, false
	}
	if i, ok := v.Int(); ok {
		if i < 0 || i >= 86400 {
			return 0, 0, false
		}
		return time.Duration(i) * time.Second, MatchLax, true
	}
	if f, ok := v.Float(); ok {
		if f < 0 || f >= 86400 {
			return 0, 0, false
		}
		return time.Duration(f * float64(time.Second)), MatchLax, true
	}
	return 0, 0, false
}

// AsDuration reads a duration. Strings in Go form ("1h30m") or ISO-8601 form
// ("PT1H30M") grade MatchStrict; lax adds int/float seconds.
func AsDuration(v Value, strict bool) (time.Duration, Match, bool) {
	if d, ok := v.Duration(); ok {
		return d, MatchExact, true
	}
	if s, ok := v.Str(); ok {
		if d, err := time.ParseDuration(s); err == nil {
			return d, MatchStrict, true
		}
		if d, ok := parseISODuration(s); ok {
			return d, MatchStrict, true
		}
		return 0, 0, false
	}
	if strict {
		return 0, 0, false
	}
	if i, ok := v.Int(); ok {
		return time.Duration(i) * time.Second, MatchLax, true
	}
	if f, ok := v.Float(); ok {
		return time.Duration(f * float64(time.Second)), MatchLax, true
	}
	return 0, 0, false
}

// ---- ladder rungs ----

func strAsBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true", "t", "yes", "y", "on", "1":
		return true, true
	case "false", "f", "no", "n", "off", "0":
		return false, true
	}
	return false, false
}

func strAsInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.Contains(s, "_") {
		return 0, false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, true
	}
	// integral float form, e.g. "2.0"
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return floatAsInt(f)
	}
	return 0, false
}

func strAsFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.Contains(s, "_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func floatAsInt(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func strAsTime(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

func isMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}

// parseISODuration parses the time portion of ISO-8601 durations (PnDTnHnMnS).
// Calendar units wider than a day are rejected since they have no fixed length.
func parseISODuration(s string) (time.Duration, bool) {
	if len(s) < 2 {
		return 0, false
	}
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	if len(s) < 2 || (s[0] != 'P' && s[0] != 'p') {
		return 0, false
	}
	s = s[1:]
	var total time.Duration
	inTime := false
	num := ""
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == 'T' || c == 't':
			if inTime || num != "" {
				return 0, false
			}
			inTime = true
		case c >= '0' && c <= '9' || c == '.':
			num += string(c)
		default:
			if num == "" {
				return 0, false
			}
			f, err := strconv.ParseFloat(num, 64)
			if err != nil {
				return 0, false
			}
			num = ""
			switch {
			case (c == 'D' || c == 'd') && !inTime:
				total += time.Duration(f * 24 * float64(time.Hour))
			case (c == 'H' || c == 'h') && inTime:
				total += time.Duration(f * float64(time.Hour))
			case (c == 'M' || c == 'm') && inTime:
				total += time.Duration(f * float64(time.Minute))
			case (c == 'S' || c == 's') && inTime:
				total += time.Duration(f * float64(time.Second))
			default:
				return 0, false
			}
		}
	}
	if num != "" {
		return 0, false
	}
	if neg {
		total = -total
	}
	return total, true
}
