package constants

import (
	"regexp"
	"testing"
	"time"
)

func TestTimeFormat(t *testing.T) {
	// Check that a time zone component exists in the global time format.
	re := regexp.MustCompile("^.*0700$")
	if !re.MatchString(TimeFormatYearSecondsTZ) {
		t.Fatal("Unexpected time format - missing time zone component.")
	}
	// Check that the global regexp can match constant TimeFormatYearSeconds.
	re = regexp.MustCompile(TimeFormatYearSecondsRegex)
	if !re.MatchString(TimeFormatYearSeconds) {
		t.Fatal("Mismatch between TimeFormatYearSeconds and regexp in constant TimeFormatYearSecondsRegex.")
	}
}

func TestLogFileDateFormat(t *testing.T) {
	d := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := d.Format(TimeFormatLogFileDate); got != "20250102" {
		t.Fatalf("expected daily log file suffix 20250102; got %v", got)
	}
}
