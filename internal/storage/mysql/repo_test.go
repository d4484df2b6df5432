package mysql

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 512))

	// 2-byte runes straddle an odd byte limit
	s := strings.Repeat("é", 300)
	got := truncate(s, 511)
	assert.True(t, utf8.ValidString(got))
	assert.Len(t, got, 510)

	got = truncate("ab€", 4) // € is 3 bytes
	assert.Equal(t, "ab", got)
}

// row feeds fixed values into Scan by column position.
type row map[int]any

func (r row) Scan(dest ...any) error {
	for i, d := range dest {
		if v, ok := r[i]; ok {
			reflect.ValueOf(d).Elem().Set(reflect.ValueOf(v))
		}
	}
	return nil
}

// column positions in yachtColumns
const (
	colID        = 0
	colAmenities = 13
	colImages    = 14
)

func TestScanYacht_JSONColumns(t *testing.T) {
	y, err := scanYacht(row{colID: "y-1", colAmenities: []byte(`["WiFi"]`)})
	require.NoError(t, err)
	assert.Equal(t, []string{"WiFi"}, y.Amenities)
	assert.Equal(t, []string{}, y.Images, "NULL column reads as empty")

	_, err = scanYacht(row{colID: "y-2", colAmenities: []byte(`["WiFi"`)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amenities of yacht y-2")

	_, err = scanYacht(row{colID: "y-3", colImages: []byte(`{"url":1}`)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "images of yacht y-3")
}
