package corpus

import (
	"fmt"
	"strings"
)

var weekdayOrder = []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

var weekdayNames = map[string]map[string]string{
	"en": {
		"mon": "Monday", "tue": "Tuesday", "wed": "Wednesday", "thu": "Thursday",
		"fri": "Friday", "sat": "Saturday", "sun": "Sunday",
	},
	"ja": {
		"mon": "月曜日", "tue": "火曜日", "wed": "水曜日", "thu": "木曜日",
		"fri": "金曜日", "sat": "土曜日", "sun": "日曜日",
	},
	"zh": {
		"mon": "周一", "tue": "周二", "wed": "周三", "thu": "周四",
		"fri": "周五", "sat": "周六", "sun": "周日",
	},
}

// RenderAvailability turns the weekly schedule into a natural-language
// summary for one locale. The summary is what gets tokenized and indexed, so
// availability questions hit this chunk through plain lexical overlap.
func RenderAvailability(av *Availability, locale string) string {
	names, ok := weekdayNames[locale]
	if !ok {
		names = weekdayNames[DefaultLocale]
		locale = DefaultLocale
	}

	var days []string
	for _, day := range weekdayOrder {
		ranges := av.Week[day]
		if len(ranges) == 0 {
			continue
		}
		spans := make([]string, 0, len(ranges))
		for _, r := range ranges {
			spans = append(spans, fmt.Sprintf("%s–%s", r.Start, r.End))
		}
		days = append(days, fmt.Sprintf("%s %s", names[day], strings.Join(spans, ", ")))
	}

	var summary string
	switch locale {
	case "ja":
		if len(days) == 0 {
			summary = "現在、面談の空き枠はありません。"
		} else {
			summary = fmt.Sprintf("面談可能な時間帯: %s。", strings.Join(days, "、"))
		}
		summary += fmt.Sprintf("タイムゾーンは%sです。", av.Timezone)
		if av.SlotMinutes > 0 {
			summary += fmt.Sprintf("1枠あたり%d分です。", av.SlotMinutes)
		}
	case "zh":
		if len(days) == 0 {
			summary = "目前没有可预约的面谈时间。"
		} else {
			summary = fmt.Sprintf("可预约面谈时间: %s。", strings.Join(days, "；"))
		}
		summary += fmt.Sprintf("时区为%s。", av.Timezone)
		if av.SlotMinutes > 0 {
			summary += fmt.Sprintf("每次面谈%d分钟。", av.SlotMinutes)
		}
	default:
		if len(days) == 0 {
			summary = "No interview slots are currently open."
		} else {
			summary = fmt.Sprintf("Available for interviews and calls on %s.", strings.Join(days, "; "))
		}
		summary += fmt.Sprintf(" All times are in the %s timezone.", av.Timezone)
		if av.SlotMinutes > 0 {
			summary += fmt.Sprintf(" Meetings are booked in %d-minute slots.", av.SlotMinutes)
		}
	}

	if note := av.Note.Get(locale); note != "" {
		summary += " " + note
	}
	return summary
}
