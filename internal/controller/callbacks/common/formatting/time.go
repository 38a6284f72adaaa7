package formatting

import (
	"fmt"
	"strings"
	"time"
)

// InputLayout - формат даты и времени, который вводит пользователь
const InputLayout = "02.01.2006 15:04"

// FormatDateTime форматирует дату и время
func FormatDateTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(InputLayout)
}

// FormatTime форматирует только время
func FormatTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("15:04")
}

// FormatSlotTime форматирует интервал слота: "15.01.2030 10:00-11:00",
// для интервала через полночь вторая дата пишется полностью
func FormatSlotTime(start, end time.Time, loc *time.Location) string {
	start, end = start.In(loc), end.In(loc)
	if start.Year() == end.Year() && start.YearDay() == end.YearDay() {
		return fmt.Sprintf("%s-%s", start.Format(InputLayout), end.Format("15:04"))
	}
	return fmt.Sprintf("%s - %s", start.Format(InputLayout), end.Format(InputLayout))
}

// FormatShortSlotTime - компактная форма для подписей кнопок: "15.01 10:00-11:00"
func FormatShortSlotTime(start, end time.Time, loc *time.Location) string {
	start, end = start.In(loc), end.In(loc)
	return fmt.Sprintf("%s %s-%s", start.Format("02.01"), start.Format("15:04"), end.Format("15:04"))
}

// FormatDuration форматирует длительность
func FormatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	if minutes < 60 {
		return fmt.Sprintf("%d мин", minutes)
	}
	hours := minutes / 60
	mins := minutes % 60
	if mins == 0 {
		return fmt.Sprintf("%d ч", hours)
	}
	return fmt.Sprintf("%d ч %d мин", hours, mins)
}

// ParseDateTime разбирает "ДД.ММ.ГГГГ ЧЧ:ММ" в часовом поясе loc
func ParseDateTime(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(InputLayout, strings.Join(strings.Fields(s), " "), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected %q: %w", InputLayout, err)
	}
	return t, nil
}

// ParseEnd разбирает окончание слота: либо только "ЧЧ:ММ" в день начала,
// либо полную дату и время
func ParseEnd(start time.Time, s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if clock, err := time.Parse("15:04", s); err == nil {
		day := start.In(loc)
		return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, loc), nil
	}
	return ParseDateTime(s, loc)
}

// ParseTimeRange разбирает "ДД.ММ.ГГГГ ЧЧ:ММ-ЧЧ:ММ"
func ParseTimeRange(s string, loc *time.Location) (time.Time, time.Time, error) {
	startText, endText, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("expected %q", InputLayout+"-15:04")
	}
	start, err := ParseDateTime(startText, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := ParseEnd(start, endText, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}
