package boxoffice

import (
	"errors"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"marquee/internal/runerr"
)

// Reason codes attached to dropped rows.
const (
	DropMissingTitle = "row_missing_title"
	DropMissingGross = "row_missing_gross"
	DropShortRow     = "row_too_short"
)

// RowDrop records a table row that could not be turned into a DailyRecord.
type RowDrop struct {
	Index  int
	Reason string
}

// Date-page table column positions. The trailing columns (days in release,
// distributor) are not always present.
const (
	colRank = iota
	colRankYesterday
	colTitle
	colDailyGross
	colYDChange
	colLWChange
	colTheaters
	colPerTheater
	colCumulative
	colDaysInRelease
	colDistributor
)

// minColumns is the shortest row that still carries the mandatory fields.
const minColumns = colCumulative + 1

// ParseDatePage extracts one DailyRecord per listed movie from a date page.
// Rows missing optional columns yield records with those fields nil; rows
// missing the title or the daily gross are dropped and reported with a
// reason code. The input is not consumed on error.
func ParseDatePage(date time.Time, baseURL string, body io.Reader) ([]DailyRecord, []RowDrop, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, nil, runerr.Wrap(runerr.ErrParse, "parser", date.Format(DateLayout), err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, nil, runerr.Wrap(runerr.ErrParse, "parser", date.Format(DateLayout),
			errors.New("page has no table"))
	}

	var (
		records []DailyRecord
		drops   []RowDrop
	)
	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		if i == 0 {
			return // header
		}
		cols := tr.Find("td")
		if cols.Length() < minColumns {
			drops = append(drops, RowDrop{Index: i, Reason: DropShortRow})
			return
		}

		titleCell := cols.Eq(colTitle)
		title := strings.TrimSpace(titleCell.Text())
		if title == "" {
			drops = append(drops, RowDrop{Index: i, Reason: DropMissingTitle})
			return
		}

		gross := parseMoney(cols.Eq(colDailyGross).Text())
		if gross == nil {
			drops = append(drops, RowDrop{Index: i, Reason: DropMissingGross})
			return
		}

		rec := DailyRecord{
			Date:            date,
			Rank:            parseInt(cols.Eq(colRank).Text()),
			Title:           title,
			DailyGross:      *gross,
			YDChangePct:     parsePercent(cols.Eq(colYDChange).Text()),
			LWChangePct:     parsePercent(cols.Eq(colLWChange).Text()),
			Theaters:        parseInt(cols.Eq(colTheaters).Text()),
			PerTheaterAvg:   parseMoney(cols.Eq(colPerTheater).Text()),
			CumulativeGross: parseMoney(cols.Eq(colCumulative).Text()),
		}
		if href, ok := titleCell.Find("a").First().Attr("href"); ok {
			rec.SourceURL = absoluteURL(baseURL, href)
		}
		if cols.Length() > colDaysInRelease {
			rec.DaysInRelease = parseInt(cols.Eq(colDaysInRelease).Text())
		}
		if cols.Length() > colDistributor {
			rec.Distributor = strings.TrimSpace(cols.Eq(colDistributor).Text())
		}
		records = append(records, rec)
	})

	return records, drops, nil
}

func absoluteURL(baseURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.IsAbs() {
		return href
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// parseMoney converts "$1,234,567" to a float. "-", "n/a", and empty cells
// yield nil.
func parseMoney(text string) *float64 {
	cleaned := cleanCell(text, "$", ",")
	if cleaned == "" {
		return nil
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &value
}

// parsePercent converts "+12.3%" or "-45%" to a float.
func parsePercent(text string) *float64 {
	cleaned := cleanCell(text, "%", "+", ",")
	if cleaned == "" {
		return nil
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &value
}

func parseInt(text string) *int {
	cleaned := cleanCell(text, ",")
	if cleaned == "" {
		return nil
	}
	value, err := strconv.Atoi(cleaned)
	if err != nil {
		return nil
	}
	return &value
}

func cleanCell(text string, strip ...string) string {
	cleaned := strings.TrimSpace(text)
	for _, s := range strip {
		cleaned = strings.ReplaceAll(cleaned, s, "")
	}
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" || cleaned == "-" || strings.EqualFold(cleaned, "n/a") {
		return ""
	}
	return cleaned
}
