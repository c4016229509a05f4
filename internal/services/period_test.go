package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthRange(t *testing.T) {
	start, end := monthRange(2024, time.December)
	assert.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestYearRange(t *testing.T) {
	start, end := yearRange(2023)
	assert.Equal(t, 2023, start.Year())
	assert.Equal(t, time.January, start.Month())
	assert.Equal(t, 2024, end.Year())
}

func TestPeriodNow(t *testing.T) {
	fixed := time.Date(2024, time.June, 1, 2, 0, 0, 0, time.FixedZone("BRT", -3*3600))
	p := Period{Now: func() time.Time { return fixed }}
	assert.Equal(t, time.UTC, p.now().Location())
	assert.Equal(t, 5, p.now().Hour())

	assert.Equal(t, p.now(), p.Reference())
	assert.WithinDuration(t, time.Now(), Period{}.now(), time.Minute)
}

func TestPeriodLocalNow(t *testing.T) {
	fixed := time.Date(2024, time.March, 10, 14, 7, 0, 0, time.UTC)
	brt := time.FixedZone("BRT", -3*3600)

	p := Period{Now: func() time.Time { return fixed }, Location: brt}
	local := p.LocalNow()
	assert.Equal(t, brt, local.Location())
	assert.Equal(t, 11, local.Hour())
	assert.True(t, local.Equal(fixed))

	assert.Equal(t, time.Local, Period{Now: func() time.Time { return fixed }}.LocalNow().Location())
}
