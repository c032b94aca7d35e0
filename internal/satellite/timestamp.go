package satellite

import (
	"regexp"
	"strings"
	"time"
)

var (
	// 20240904_0815 style.
	digitStampPattern = regexp.MustCompile(`(\d{8})_(\d{4})`)
	// 04SEP2024_0815 style, as used by INSAT product names.
	monthStampPattern = regexp.MustCompile(`(\d{2})([A-Z]{3})(\d{4})_(\d{4})`)
)

// TimestampFromFilename recovers a best-effort UTC acquisition time from
// a raster file name. Used when the file itself carries no usable time
// coordinate.
func TimestampFromFilename(name string) (time.Time, bool) {
	if m := digitStampPattern.FindStringSubmatch(name); m != nil {
		if ts, err := time.ParseInLocation("200601021504", m[1]+m[2], time.UTC); err == nil {
			return ts, true
		}
	}
	if m := monthStampPattern.FindStringSubmatch(strings.ToUpper(name)); m != nil {
		month := m[2][:1] + strings.ToLower(m[2][1:])
		raw := m[1] + month + m[3] + m[4]
		if ts, err := time.ParseInLocation("02Jan20061504", raw, time.UTC); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
