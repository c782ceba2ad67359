package model

import (
	"fmt"
	"time"
)

// WeekLayout é o formato de data usado para identificar semanas na API
const WeekLayout = "2006-01-02"

// Midnight trunca t para 00:00 no próprio fuso de t
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WeekStart retorna a segunda-feira 00:00 da semana de t
func WeekStart(t time.Time) time.Time {
	day := Midnight(t)
	return day.AddDate(0, 0, -WeekdayOf(day).Index())
}

// ParseWeek interpreta "YYYY-MM-DD" e normaliza para a segunda-feira da semana.
// String vazia resolve para a semana de now.
func ParseWeek(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return WeekStart(now), nil
	}
	t, err := time.ParseInLocation(WeekLayout, s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("semana inválida %q (esperado YYYY-MM-DD): %w", s, err)
	}
	return WeekStart(t), nil
}

// FormatWeek formata o início da semana como "YYYY-MM-DD"
func FormatWeek(weekStart time.Time) string {
	return weekStart.Format(WeekLayout)
}

// WeekKey retorna o número ISO 8601 da semana no formato "2025-05"
func WeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-%02d", year, week)
}
