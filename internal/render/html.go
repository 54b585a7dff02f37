package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/beevik/etree"

	"github.com/username/internship-planner/internal/calendar"
	"github.com/username/internship-planner/internal/monthview"
)

const calendarCSS = `
body { font-family: sans-serif; }
table.calendar { border-collapse: collapse; margin-bottom: 1.5rem; }
table.calendar th, table.calendar td { width: 4rem; height: 3rem; border: 1px solid rgba(128, 128, 128, 0.3); text-align: center; vertical-align: top; }
.high { background-color: rgba(76, 175, 80, 0.3); }
.low { background-color: rgba(33, 150, 243, 0.3); }
.no-hours { background-color: rgba(128, 128, 128, 0.15); }
td.outside { color: rgba(128, 128, 128, 0.6); }
div.day { font-weight: bold; }
div.hours { font-size: 0.8rem; }
div.legend span.swatch { display: inline-block; width: 20px; height: 20px; margin-right: 5px; border: 1px solid rgba(128, 128, 128, 0.3); }
`

// HTMLDocument builds an XHTML page with one table per month and a legend
func HTMLDocument(view monthview.View, locale calendar.Locale, title string) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateDirective("DOCTYPE html")

	html := doc.CreateElement("html")
	html.CreateAttr("xmlns", "http://www.w3.org/1999/xhtml")
	html.CreateAttr("lang", string(locale))

	head := html.CreateElement("head")
	head.CreateElement("meta").CreateAttr("charset", "utf-8")
	head.CreateElement("title").SetText(title)
	head.CreateElement("style").SetText(calendarCSS)

	body := html.CreateElement("body")
	body.CreateElement("h1").SetText(title)

	for _, m := range view {
		monthTable(body, m, locale)
	}
	legendBlock(body, locale)

	return doc
}

// WriteHTML writes the month view as an indented XHTML page
func WriteHTML(w io.Writer, view monthview.View, locale calendar.Locale, title string) error {
	doc := HTMLDocument(view, locale, title)
	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write html: %w", err)
	}
	return nil
}

func monthTable(parent *etree.Element, m monthview.Month, locale calendar.Locale) {
	section := parent.CreateElement("section")
	section.CreateAttr("class", "month")
	section.CreateAttr("id", fmt.Sprintf("month-%04d-%02d", m.Year, int(m.Month)))
	section.CreateElement("h2").SetText(m.Label)

	table := section.CreateElement("table")
	table.CreateAttr("class", "calendar")

	headRow := table.CreateElement("thead").CreateElement("tr")
	for i := 0; i < 7; i++ {
		headRow.CreateElement("th").SetText(locale.WeekdayAbbrev(i))
	}

	tbody := table.CreateElement("tbody")
	for _, week := range m.Weeks {
		tr := tbody.CreateElement("tr")
		for _, c := range week {
			td := tr.CreateElement("td")
			if c.Kind == monthview.CellBlank {
				td.CreateAttr("class", "blank")
				continue
			}

			td.CreateAttr("class", c.Kind.String())
			day := td.CreateElement("div")
			day.CreateAttr("class", "day")
			day.SetText(strconv.Itoa(c.Day))
			if !c.InSchedule() {
				continue
			}

			td.CreateAttr("title", c.Tooltip)
			if c.Hours > 0 {
				hours := td.CreateElement("div")
				hours.CreateAttr("class", "hours")
				hours.SetText(c.HoursLabel)
			}
		}
	}
}

func legendBlock(parent *etree.Element, locale calendar.Locale) {
	l := legendFor(locale)

	div := parent.CreateElement("div")
	div.CreateAttr("class", "legend")
	div.CreateElement("strong").SetText(l.Title + ":")

	for _, item := range []struct {
		class string
		label string
	}{
		{"high", l.High},
		{"low", l.Low},
		{"no-hours", l.NoHours},
	} {
		div.CreateElement("br")
		swatch := div.CreateElement("span")
		swatch.CreateAttr("class", "swatch "+item.class)
		swatch.SetText(" ")
		label := div.CreateElement("span")
		label.SetText(item.label)
	}
}
