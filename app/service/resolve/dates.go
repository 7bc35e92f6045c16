package resolve

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/samber/oops"

	"petsync/app/service/session"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	defaultStartTime = "00:00"
	defaultEndTime   = "23:59"
)

var (
	isoDateRe  = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	meridiemRe = regexp.MustCompile(`(\d{1,2})(?::(\d{2}))?\s*(am|pm)`)
	clockRe    = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
	weekdayRe  = regexp.MustCompile(`monday|tuesday|wednesday|thursday|friday|saturday|sunday`)
)

// Monday-based indices, matching everyday "start of the week" intuition.
var weekdayIndex = map[string]int{
	"monday":    0,
	"tuesday":   1,
	"wednesday": 2,
	"thursday":  3,
	"friday":    4,
	"saturday":  5,
	"sunday":    6,
}

// CalculateDates resolves a natural-language date phrase into a concrete
// booking window. It is fully deterministic: the same phrase, history and
// anchor date always yield the same window. History carries the session's
// earlier date phrases so that a bare weekday after "next weekend" lands in
// that week rather than the current one.
func (s *Service) CalculateDates(st *session.State, phrase string, history []string) (*DateResult, error) {
	now := s.nowFunc()

	result, err := resolveDates(phrase, history, now)
	if err != nil {
		return nil, err
	}

	if st != nil {
		s.record(st, session.StageDateResult, phrase, session.DateSummary{
			StartDate: result.StartDate,
			EndDate:   result.EndDate,
			StartTime: result.StartTime,
			EndTime:   result.EndTime,
		})
	}

	return result, nil
}

func resolveDates(phrase string, history []string, now time.Time) (*DateResult, error) {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	if phrase == "" {
		return nil, oops.Errorf("empty date phrase")
	}

	nextCtx := strings.Contains(phrase, "next")
	for _, prev := range history {
		prev = strings.ToLower(prev)
		if strings.Contains(prev, "next week") || strings.Contains(prev, "next weekend") {
			nextCtx = true
		}
	}

	start, end, err := resolveDateRange(phrase, now, nextCtx)
	if err != nil {
		return nil, err
	}

	startTime, endTime := resolveTimes(phrase)

	return &DateResult{
		StartDate: start.Format(dateLayout),
		EndDate:   end.Format(dateLayout),
		StartTime: startTime,
		EndTime:   endTime,
	}, nil
}

func resolveDateRange(phrase string, now time.Time, nextCtx bool) (time.Time, time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if isoDates := isoDateRe.FindAllString(phrase, -1); len(isoDates) > 0 {
		start, err := time.Parse(dateLayout, isoDates[0])
		if err != nil {
			return time.Time{}, time.Time{}, oops.Wrapf(err, "bad date %q", isoDates[0])
		}

		end := start
		if len(isoDates) > 1 {
			end, err = time.Parse(dateLayout, isoDates[len(isoDates)-1])
			if err != nil {
				return time.Time{}, time.Time{}, oops.Wrapf(err, "bad date %q", isoDates[len(isoDates)-1])
			}
		}

		return start, end, nil
	}

	if strings.Contains(phrase, "today") {
		return today, today, nil
	}

	if strings.Contains(phrase, "tomorrow") {
		tomorrow := today.AddDate(0, 0, 1)
		return tomorrow, tomorrow, nil
	}

	if strings.Contains(phrase, "weekend") {
		saturday := today.AddDate(0, 0, daysUntil(today, weekdayIndex["saturday"], nextCtx))
		return saturday, saturday.AddDate(0, 0, 1), nil
	}

	weekdays := weekdayRe.FindAllString(phrase, -1)
	if len(weekdays) == 0 {
		return time.Time{}, time.Time{}, oops.Errorf("no resolvable date in %q", phrase)
	}

	start := today.AddDate(0, 0, daysUntil(today, weekdayIndex[weekdays[0]], nextCtx))
	end := start
	if len(weekdays) > 1 {
		// The second weekday is relative to the first, so "saturday to
		// sunday" never wraps into the following week.
		end = start.AddDate(0, 0, offsetFrom(start, weekdayIndex[weekdays[len(weekdays)-1]]))
	}

	return start, end, nil
}

// daysUntil returns the day count from anchor to the next occurrence of the
// target weekday. On the target day itself it returns 0, or a full week when
// the phrase asked for the "next" one.
func daysUntil(anchor time.Time, target int, nextCtx bool) int {
	current := (int(anchor.Weekday()) + 6) % 7

	days := (target - current + 7) % 7
	if days == 0 && nextCtx {
		days = 7
	}

	return days
}

func offsetFrom(anchor time.Time, target int) int {
	current := (int(anchor.Weekday()) + 6) % 7
	return (target - current + 7) % 7
}

func resolveTimes(phrase string) (string, string) {
	var found []string

	for _, m := range meridiemRe.FindAllStringSubmatch(phrase, -1) {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}

		if m[3] == "pm" && hour != 12 {
			hour += 12
		}
		if m[3] == "am" && hour == 12 {
			hour = 0
		}

		found = append(found, formatClock(hour, minute))
	}

	if len(found) == 0 {
		for _, m := range clockRe.FindAllStringSubmatch(phrase, -1) {
			hour, _ := strconv.Atoi(m[1])
			minute, _ := strconv.Atoi(m[2])
			if hour > 23 || minute > 59 {
				continue
			}

			found = append(found, formatClock(hour, minute))
		}
	}

	startTime := defaultStartTime
	endTime := defaultEndTime

	if len(found) > 0 {
		startTime = found[0]
	}
	if len(found) > 1 {
		endTime = found[len(found)-1]
	}

	return startTime, endTime
}

func formatClock(hour, minute int) string {
	return time.Date(0, 1, 1, hour, minute, 0, 0, time.UTC).Format(timeLayout)
}
