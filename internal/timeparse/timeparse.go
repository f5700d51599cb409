// Package timeparse resolves Roman Urdu and English time phrases
// ("kal subah 8 baje", "tomorrow 8am", "aaj shaam") to absolute instants.
package timeparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// RolloverPolicy decides when a resolved time that is not after now moves to
// the next day.
type RolloverPolicy int

const (
	// RolloverInferredToday rolls only when the day was inferred. A user who
	// says "aaj"/"today" gets that day even if the time has passed.
	RolloverInferredToday RolloverPolicy = iota
	// RolloverUnlessTomorrow rolls whenever no tomorrow keyword is present,
	// explicit "today" included.
	RolloverUnlessTomorrow
)

// ParsePolicy maps a settings value to a policy. Unknown values fall back to
// RolloverInferredToday.
func ParsePolicy(s string) RolloverPolicy {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unless_tomorrow", "unless-tomorrow", "always":
		return RolloverUnlessTomorrow
	default:
		return RolloverInferredToday
	}
}

func (p RolloverPolicy) String() string {
	if p == RolloverUnlessTomorrow {
		return "unless_tomorrow"
	}
	return "inferred_today"
}

const genericMarkerHour = 9

type partOfDay struct {
	words []string
	hour  int
}

// checked in order; the first word found wins
var partsOfDay = []partOfDay{
	{[]string{"subah", "morning"}, 8},
	{[]string{"dopahar", "afternoon"}, 13},
	{[]string{"shaam", "evening"}, 18},
	{[]string{"raat", "night"}, 21},
}

var (
	tomorrowRe = regexp.MustCompile(`\b(kal|tomorrow)\b`)
	todayRe    = regexp.MustCompile(`\b(aaj|today)\b`)
	clockRe    = regexp.MustCompile(`\b(\d{1,2})(?:\s*[:.](\d{1,2}))?\s*(baje|am|pm)?\b`)
	meridiemRe = regexp.MustCompile(`\b(am|pm)\b`)
	markerRe   = regexp.MustCompile(`baje|o'?clock`)
)

// Parser resolves time phrases under a fixed rollover policy.
type Parser struct {
	policy RolloverPolicy
}

// New creates a Parser.
func New(policy RolloverPolicy) *Parser {
	return &Parser{policy: policy}
}

// Policy returns the configured rollover policy.
func (p *Parser) Policy() RolloverPolicy {
	return p.policy
}

// ParseNaturalTime resolves text against now using RolloverInferredToday.
func ParseNaturalTime(text string, now time.Time) (time.Time, bool) {
	return New(RolloverInferredToday).Parse(text, now)
}

// Parse returns the absolute time described by text, or false when no hour
// can be resolved. A zero now means time.Now(). The result carries now's
// location.
func (p *Parser) Parse(text string, now time.Time) (time.Time, bool) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return time.Time{}, false
	}
	if now.IsZero() {
		now = time.Now()
	}

	tomorrow := tomorrowRe.MatchString(s)
	explicitToday := !tomorrow && todayRe.MatchString(s)

	day := now
	if tomorrow {
		day = now.AddDate(0, 0, 1)
	}

	hour, minute := -1, 0
	if m := clockRe.FindStringSubmatch(s); m != nil {
		hour, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		meridiem := m[3]
		if meridiem == "" || meridiem == "baje" {
			if mm := meridiemRe.FindStringSubmatch(s); mm != nil {
				meridiem = mm[1]
			}
		}
		switch {
		case meridiem == "pm" && hour < 12:
			hour += 12
		case meridiem == "am" && hour == 12:
			hour = 0
		}
	}

	if hour < 0 {
		hour = partOfDayHour(s)
	}
	if hour < 0 && markerRe.MatchString(s) {
		hour = genericMarkerHour
	}
	if hour < 0 || hour > 23 || minute > 59 {
		return time.Time{}, false
	}

	target := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location())
	if !target.After(now) && p.shouldRoll(tomorrow, explicitToday) {
		target = target.AddDate(0, 0, 1)
	}
	return target, true
}

func (p *Parser) shouldRoll(tomorrow, explicitToday bool) bool {
	if tomorrow {
		return false
	}
	if p.policy == RolloverInferredToday && explicitToday {
		return false
	}
	return true
}

func partOfDayHour(s string) int {
	for _, part := range partsOfDay {
		for _, w := range part.words {
			if strings.Contains(s, w) {
				return part.hour
			}
		}
	}
	return -1
}
