package satellite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampFromFilename(t *testing.T) {
	cases := []struct {
		name string
		file string
		want time.Time
		ok   bool
	}{
		{
			name: "digit stamp",
			file: "aod_20240904_0815.nc",
			want: time.Date(2024, 9, 4, 8, 15, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "insat product name",
			file: "3RIMG_04SEP2024_0815_L2G_AOD.hdf",
			want: time.Date(2024, 9, 4, 8, 15, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "lowercase month",
			file: "3rimg_04sep2024_0815.nc",
			want: time.Date(2024, 9, 4, 8, 15, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "no stamp",
			file: "aod_latest.nc",
			ok:   false,
		},
		{
			name: "invalid month in digit stamp",
			file: "aod_20241304_0815.nc",
			ok:   false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := TimestampFromFilename(tc.file)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}
