package render

import "github.com/username/internship-planner/internal/calendar"

// legendLabels names the hour buckets in a locale
type legendLabels struct {
	Title   string
	High    string
	Low     string
	NoHours string
}

var legends = map[calendar.Locale]legendLabels{
	calendar.LocaleEN: {
		Title:   "Legend",
		High:    "more than 4 hours",
		Low:     "up to 4 hours",
		NoHours: "no hours (holiday/day off)",
	},
	calendar.LocalePTBR: {
		Title:   "Legenda",
		High:    "mais de 4 horas",
		Low:     "até 4 horas",
		NoHours: "sem horas (feriado/folga)",
	},
}

func legendFor(locale calendar.Locale) legendLabels {
	if l, ok := legends[locale]; ok {
		return l
	}
	return legends[calendar.LocaleEN]
}
