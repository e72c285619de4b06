// Package canonical maps raw date, currency and amount tokens to canonical values.
package canonical

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/username/extractos/backend/src/textnorm"
)

var monthNumbers = map[string]int{
	"enero": 1, "febrero": 2, "marzo": 3, "abril": 4, "mayo": 5, "junio": 6,
	"julio": 7, "agosto": 8, "septiembre": 9, "setiembre": 9,
	"octubre": 10, "noviembre": 11, "diciembre": 12,
}

var monthAbbreviations = map[string]int{
	"ene": 1, "feb": 2, "mar": 3, "abr": 4, "may": 5, "jun": 6,
	"jul": 7, "ago": 8, "sep": 9, "set": 9, "oct": 10, "nov": 11, "dic": 12,
}

const monthNames = `enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|setiembre|octubre|noviembre|diciembre`

var (
	longMonthPattern  = regexp.MustCompile(`(\d{1,2})\s+(` + monthNames + `)\s+(\d{4})\s*[-–]?\s*(\d{1,2}):(\d{2})\s*(am|pm)`)
	slashTimePattern  = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})\s*[-–]?\s*(\d{1,2}):(\d{2})\s*(am|pm)`)
	isoPattern        = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})\s*(\d{2}):(\d{2})(?::(\d{2}))?`)
	slashDatePattern  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	shortMonthPattern = regexp.MustCompile(`(\d{1,2})\s+(ene|feb|mar|abr|may|jun|jul|ago|sept?|set|oct|nov|dic)[a-z]*\.?\s+(\d{1,2}):(\d{2})`)
)

// Date canonicalizes a raw date string to "YYYY-MM-DD HH:MM:SS".
// Strings that match none of the known forms are returned unchanged.
func Date(raw string) string {
	return DateInYear(raw, 0)
}

// DateInYear is Date that also accepts yearless statement dates such as
// "lun. 15 mar 10:45", placing them in year. A year of 0 disables that form.
func DateInYear(raw string, year int) string {
	f := strings.ToLower(textnorm.Normalize(raw))
	if f == "" {
		return raw
	}

	if m := longMonthPattern.FindStringSubmatch(f); m != nil {
		if out, ok := build(m[3], monthNumbers[m[2]], m[1], m[4], m[5], "", m[6]); ok {
			return out
		}
		return raw
	}
	if m := slashTimePattern.FindStringSubmatch(f); m != nil {
		month, _ := strconv.Atoi(m[2])
		if out, ok := build(m[3], month, m[1], m[4], m[5], "", m[6]); ok {
			return out
		}
		return raw
	}
	if m := isoPattern.FindStringSubmatch(f); m != nil {
		month, _ := strconv.Atoi(m[2])
		if out, ok := build(m[1], month, m[3], m[4], m[5], m[6], ""); ok {
			return out
		}
		return raw
	}
	if m := slashDatePattern.FindStringSubmatch(f); m != nil {
		month, _ := strconv.Atoi(m[2])
		if out, ok := build(m[3], month, m[1], "0", "0", "", ""); ok {
			return out
		}
		return raw
	}
	if year > 0 {
		if m := shortMonthPattern.FindStringSubmatch(f); m != nil {
			if out, ok := build(strconv.Itoa(year), monthAbbreviations[m[2][:3]], m[1], m[3], m[4], "", ""); ok {
				return out
			}
		}
	}
	return raw
}

func build(yearStr string, month int, dayStr, hourStr, minStr, secStr, meridiem string) (string, bool) {
	year, _ := strconv.Atoi(yearStr)
	day, _ := strconv.Atoi(dayStr)
	hour, _ := strconv.Atoi(hourStr)
	minute, _ := strconv.Atoi(minStr)
	second := 0
	if secStr != "" {
		second, _ = strconv.Atoi(secStr)
	}

	switch meridiem {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}

	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 || second > 59 {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", year, month, day, hour, minute, second), true
}
