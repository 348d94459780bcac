package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2020-04")
	require.NoError(t, err)
	assert.Equal(t, Month{Year: 2020, Month: time.April}, m)
	assert.Equal(t, "2020-04", m.String())
	assert.Equal(t, "abril, 2020", m.Label())

	_, err = ParseMonth("04/2020")
	assert.Error(t, err)
}

func TestMonth_Navigation(t *testing.T) {
	dec := Month{Year: 2020, Month: time.December}
	assert.Equal(t, Month{Year: 2021, Month: time.January}, dec.Next())
	assert.Equal(t, Month{Year: 2020, Month: time.November}, dec.Prev())

	jan := Month{Year: 2021, Month: time.January}
	assert.Equal(t, dec, jan.Prev())
}

func TestMonth_Contains(t *testing.T) {
	m := Month{Year: 2020, Month: time.April}
	assert.True(t, m.Contains(time.Date(2020, time.April, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, m.Contains(time.Date(2020, time.April, 30, 23, 59, 0, 0, time.UTC)))
	assert.False(t, m.Contains(time.Date(2020, time.May, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, m.Contains(time.Date(2019, time.April, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.Date(2020, time.April, 1, 0, 0, 0, 0, time.UTC), m.Start())
}
