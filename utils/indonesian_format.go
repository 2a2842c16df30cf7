package utils

import (
	"fmt"
	"strconv"
	"time"
)

var indonesianMonths = []string{
	"Januari",
	"Februari",
	"Maret",
	"April",
	"Mei",
	"Juni",
	"Juli",
	"Agustus",
	"September",
	"Oktober",
	"November",
	"Desember",
}

// FormatIndonesianDate returns e.g. "5 Januari 2025".
func FormatIndonesianDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	localTime := t.In(time.Local)
	monthIndex := int(localTime.Month()) - 1
	if monthIndex < 0 || monthIndex >= len(indonesianMonths) {
		return localTime.Format("02/01/2006")
	}

	return strconv.Itoa(localTime.Day()) + " " + indonesianMonths[monthIndex] + " " + strconv.Itoa(localTime.Year())
}

// FormatIndonesianDateTime appends the clock time, e.g. "5 Januari 2025 14:30".
func FormatIndonesianDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	localTime := t.In(time.Local)
	return fmt.Sprintf("%s %02d:%02d", FormatIndonesianDate(localTime), localTime.Hour(), localTime.Minute())
}
