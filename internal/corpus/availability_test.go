package corpus

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testAvailability() *Availability {
	return &Availability{
		Timezone:    "Europe/Berlin",
		SlotMinutes: 45,
		Week: map[string][]TimeRange{
			"mon": {{Start: "09:00", End: "12:00"}, {Start: "14:00", End: "16:00"}},
			"fri": {{Start: "10:00", End: "13:00"}},
		},
		Note: LocalizedText{"en": "Short notice is fine."},
	}
}

func TestRenderAvailabilityEnglish(t *testing.T) {
	out := RenderAvailability(testAvailability(), "en")

	assert.Contains(t, out, "Monday 09:00–12:00, 14:00–16:00")
	assert.Contains(t, out, "Friday 10:00–13:00")
	assert.Contains(t, out, "Europe/Berlin")
	assert.Contains(t, out, "45-minute")
	assert.Contains(t, out, "Short notice is fine.")
}

func TestRenderAvailabilityWeekdayOrder(t *testing.T) {
	out := RenderAvailability(testAvailability(), "en")

	// Monday must come before Friday regardless of map iteration order
	assert.Less(t, strings.Index(out, "Monday"), strings.Index(out, "Friday"))
}

func TestRenderAvailabilityJapanese(t *testing.T) {
	out := RenderAvailability(testAvailability(), "ja")

	assert.Contains(t, out, "月曜日")
	assert.Contains(t, out, "金曜日")
	assert.Contains(t, out, "Europe/Berlin")
	assert.Contains(t, out, "45分")
}

func TestRenderAvailabilityChinese(t *testing.T) {
	out := RenderAvailability(testAvailability(), "zh")

	assert.Contains(t, out, "周一")
	assert.Contains(t, out, "周五")
	assert.Contains(t, out, "45分钟")
}

func TestRenderAvailabilityEmptyWeek(t *testing.T) {
	av := &Availability{Timezone: "UTC", Week: map[string][]TimeRange{}}

	out := RenderAvailability(av, "en")

	assert.Contains(t, out, "No interview slots")
}

func TestRenderAvailabilityUnknownLocaleFallsBack(t *testing.T) {
	out := RenderAvailability(testAvailability(), "fr")

	assert.Contains(t, out, "Monday")
}
