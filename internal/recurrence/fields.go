package recurrence

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidRule is returned for rule strings or field sets that cannot
// describe a recurrence.
var ErrInvalidRule = errors.New("invalid recurrence rule")

type Frequency string

const (
	Daily   Frequency = "DAILY"
	Weekly  Frequency = "WEEKLY"
	Monthly Frequency = "MONTHLY"
	Yearly  Frequency = "YEARLY"
)

// Frequencies lists the supported frequencies in display order.
var Frequencies = []Frequency{Yearly, Monthly, Weekly, Daily}

// Weekdays lists the two-letter weekday tokens, Monday first.
var Weekdays = []string{"MO", "TU", "WE", "TH", "FR", "SA", "SU"}

// untilLayout is the RFC 5545 UTC date-time form.
const untilLayout = "20060102T150405Z"

// Fields is the structured form of a rule. Zero values mean "not set".
type Fields struct {
	Freq       Frequency
	Interval   int
	ByWeekday  []string // "MO", "+1MO", "-1FR"
	ByMonthDay []int
	ByMonth    []int
	ByYearDay  []int
	Count      int
	Until      time.Time
}

// Canonical key order of the serialized form.
const (
	keyFreq       = "FREQ"
	keyInterval   = "INTERVAL"
	keyByWeekday  = "BYWEEKDAY"
	keyByMonthDay = "BYMONTHDAY"
	keyByMonth    = "BYMONTH"
	keyByYearDay  = "BYYEARDAY"
	keyCount      = "COUNT"
	keyUntil      = "UNTIL"
)

// Assemble renders f as KEY=VALUE pairs joined by ";" in canonical key order.
// Unset fields are omitted.
func Assemble(f Fields) string {
	var parts []string
	add := func(key, val string) {
		if val != "" {
			parts = append(parts, key+"="+val)
		}
	}

	add(keyFreq, string(f.Freq))
	if f.Interval != 0 {
		add(keyInterval, strconv.Itoa(f.Interval))
	}
	add(keyByWeekday, strings.Join(f.ByWeekday, ","))
	add(keyByMonthDay, joinInts(f.ByMonthDay))
	add(keyByMonth, joinInts(f.ByMonth))
	add(keyByYearDay, joinInts(f.ByYearDay))
	if f.Count != 0 {
		add(keyCount, strconv.Itoa(f.Count))
	}
	if !f.Until.IsZero() {
		add(keyUntil, f.Until.UTC().Format(untilLayout))
	}

	return strings.Join(parts, ";")
}

// Disassemble parses the KEY=VALUE form produced by Assemble. Keys may appear
// in any order; empty values are skipped. It checks syntax only, see
// Fields.Validate for semantic checks.
func Disassemble(s string) (Fields, error) {
	var f Fields
	for _, part := range strings.Split(strings.TrimSpace(s), ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			return Fields{}, fmt.Errorf("%w: invalid rule part %q", ErrInvalidRule, part)
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		val = strings.TrimSpace(val)
		if val == "" {
			continue
		}

		var err error
		switch key {
		case keyFreq:
			f.Freq = Frequency(strings.ToUpper(val))
		case keyInterval:
			f.Interval, err = strconv.Atoi(val)
		case keyByWeekday, "BYDAY":
			f.ByWeekday, err = splitWeekdays(val)
		case keyByMonthDay:
			f.ByMonthDay, err = splitInts(val)
		case keyByMonth:
			f.ByMonth, err = splitInts(val)
		case keyByYearDay:
			f.ByYearDay, err = splitInts(val)
		case keyCount:
			f.Count, err = strconv.Atoi(val)
		case keyUntil:
			f.Until, err = parseUntil(val)
		case "WKST":
			// Always replaced by the configured first weekday before evaluation.
		default:
			return Fields{}, fmt.Errorf("%w: unsupported rule key %q", ErrInvalidRule, key)
		}
		if err != nil {
			return Fields{}, fmt.Errorf("%w: %s=%s: %v", ErrInvalidRule, key, val, err)
		}
	}
	return f, nil
}

// Parse accepts the canonical form as well as multi-line RFC 5545 style
// input ("DTSTART:...\nRRULE:FREQ=...") as written by older versions of the
// store. DTSTART lines are dropped since the anchor always comes from the
// owning event.
func Parse(s string) (Fields, error) {
	var body []string
	for _, line := range strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' }) {
		line = strings.TrimSpace(line)
		upper := strings.ToUpper(line)
		switch {
		case line == "":
		case strings.HasPrefix(upper, "DTSTART"):
		case strings.HasPrefix(upper, "RRULE:"):
			body = append(body, line[len("RRULE:"):])
		case strings.Contains(line, "="):
			body = append(body, line)
		default:
			return Fields{}, fmt.Errorf("%w: unexpected line %q", ErrInvalidRule, line)
		}
	}
	if len(body) > 1 {
		return Fields{}, fmt.Errorf("%w: only one RRULE per event is supported", ErrInvalidRule)
	}
	if len(body) == 0 {
		return Fields{}, fmt.Errorf("%w: empty rule", ErrInvalidRule)
	}
	return Disassemble(body[0])
}

// Validate checks f for a supported frequency and in-range values.
func (f Fields) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: "+format, append([]any{ErrInvalidRule}, args...)...)
	}

	switch f.Freq {
	case Daily, Weekly, Monthly, Yearly:
	case "":
		return fail("FREQ is required")
	default:
		return fail("unknown frequency %q", f.Freq)
	}
	if f.Interval < 0 {
		return fail("interval must not be negative: %d", f.Interval)
	}
	if f.Count < 0 {
		return fail("count must not be negative: %d", f.Count)
	}

	for _, tok := range f.ByWeekday {
		n, _, err := splitWeekday(tok)
		if err != nil {
			return fail("%v", err)
		}
		if n == 0 {
			continue
		}
		switch f.Freq {
		case Monthly:
			if n < -5 || n > 5 {
				return fail("monthly weekday ordinal out of range: %s", tok)
			}
		case Yearly:
			if n < -53 || n > 53 {
				return fail("yearly weekday ordinal out of range: %s", tok)
			}
		default:
			return fail("weekday ordinal %s needs MONTHLY or YEARLY frequency", tok)
		}
	}
	for _, d := range f.ByMonthDay {
		if d == 0 || d < -31 || d > 31 {
			return fail("month day must be 1..31 or -31..-1: %d", d)
		}
	}
	for _, m := range f.ByMonth {
		if m < 1 || m > 12 {
			return fail("month must be 1..12: %d", m)
		}
	}
	for _, d := range f.ByYearDay {
		if d == 0 || d < -366 || d > 366 {
			return fail("year day must be 1..366 or -366..-1: %d", d)
		}
	}
	return nil
}

func joinInts(xs []int) string {
	s := make([]string, len(xs))
	for i, x := range xs {
		s[i] = strconv.Itoa(x)
	}
	return strings.Join(s, ",")
}

func splitInts(s string) ([]int, error) {
	var out []int
	for _, p := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

var (
	prefixOrdinal  = regexp.MustCompile(`^([+-]?\d{1,2})?(MO|TU|WE|TH|FR|SA|SU)$`)
	suffixOrdinal  = regexp.MustCompile(`^(MO|TU|WE|TH|FR|SA|SU)\(([+-]?\d{1,2})\)$`)
	weekdayByToken = map[string]int{"MO": 0, "TU": 1, "WE": 2, "TH": 3, "FR": 4, "SA": 5, "SU": 6}
)

// splitWeekday parses "MO", "+1MO", "-1MO" or "MO(+1)" into an ordinal and
// a Monday-based weekday index.
func splitWeekday(tok string) (n, day int, err error) {
	tok = strings.ToUpper(strings.TrimSpace(tok))
	var ord, name string
	if m := prefixOrdinal.FindStringSubmatch(tok); m != nil {
		ord, name = m[1], m[2]
	} else if m := suffixOrdinal.FindStringSubmatch(tok); m != nil {
		name, ord = m[1], m[2]
	} else {
		return 0, 0, fmt.Errorf("unknown weekday %q", tok)
	}
	if ord != "" {
		if n, err = strconv.Atoi(ord); err != nil || n == 0 {
			return 0, 0, fmt.Errorf("invalid weekday ordinal %q", tok)
		}
	}
	return n, weekdayByToken[name], nil
}

// formatWeekday is the inverse of splitWeekday, always in prefix form.
func formatWeekday(n, day int) string {
	if n == 0 {
		return Weekdays[day]
	}
	return fmt.Sprintf("%+d%s", n, Weekdays[day])
}

func splitWeekdays(s string) ([]string, error) {
	var out []string
	for _, p := range strings.Split(s, ",") {
		n, day, err := splitWeekday(p)
		if err != nil {
			return nil, err
		}
		out = append(out, formatWeekday(n, day))
	}
	return out, nil
}

func parseUntil(s string) (time.Time, error) {
	for _, layout := range []string{untilLayout, "20060102T150405", "20060102"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid UNTIL %q", s)
}
