package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddMonthsClampsToMonthEnd(t *testing.T) {
	assert.Equal(t, date(2021, 2, 28), AddMonths(date(2021, 1, 31), 1))
	assert.Equal(t, date(2024, 2, 29), AddMonths(date(2024, 1, 31), 1))
	assert.Equal(t, date(2021, 12, 15), AddMonths(date(2021, 11, 15), 1))
	assert.Equal(t, date(2022, 5, 15), AddMonths(date(2021, 11, 15), 6))
}

func TestDiffMonths(t *testing.T) {
	assert.Equal(t, 0, DiffMonths(date(2021, 11, 15), date(2021, 11, 20)))
	assert.Equal(t, 2, DiffMonths(date(2021, 9, 15), date(2021, 11, 15)))
	assert.Equal(t, 1, DiffMonths(date(2021, 9, 15), date(2021, 11, 14)))
	assert.Equal(t, 24, DiffMonths(date(2019, 11, 15), date(2021, 11, 15)))
	assert.Equal(t, 0, DiffMonths(date(2021, 11, 16), date(2021, 11, 15)))
}

func TestEndOfDay(t *testing.T) {
	ts := time.Date(2021, 11, 20, 12, 10, 50, 0, time.UTC)
	assert.Equal(t, time.Date(2021, 11, 20, 23, 59, 0, 0, time.UTC), EndOfDay(ts))
}
