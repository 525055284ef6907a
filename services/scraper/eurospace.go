package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"tokyokino/models"
)

// Eurospace scrapes the two-screen Eurospace in Shibuya. The schedule page is
// one <article> per day: an <h3> date, loose text naming the screen, then a
// div.scrolltable whose table holds times in the first row and films in the
// second.
type Eurospace struct {
	URL   string
	HTTPC *http.Client
}

const eurospaceName = "ユーロスペース"

func NewEurospace() *Eurospace {
	return &Eurospace{
		URL:   "http://www.eurospace.co.jp/schedule/",
		HTTPC: &http.Client{Timeout: 15 * time.Second},
	}
}

func (e *Eurospace) Name() string { return eurospaceName }

func (e *Eurospace) Fetch(ctx context.Context) ([]models.ShowingRecord, error) {
	body, err := fetchBody(ctx, e.HTTPC, e.URL, "")
	if err != nil {
		return nil, err
	}
	return parseEurospaceSchedule(body)
}

var eurospaceDate = regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`)

func parseEurospaceSchedule(page []byte) ([]models.ShowingRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("eurospace: parse page: %w", err)
	}
	section := doc.Find("section#schedule").First()
	if section.Length() == 0 {
		return nil, fmt.Errorf("eurospace: schedule section not found")
	}

	var rows []models.ShowingRecord
	section.ChildrenFiltered("article").Each(func(_ int, article *goquery.Selection) {
		dateText := strings.TrimSpace(article.Find("h3").First().Text())
		m := eurospaceDate.FindStringSubmatch(dateText)
		if m == nil {
			// Articles without a dated h3 are ticket-info blocks.
			return
		}
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		date := fmt.Sprintf("%04d-%02d-%02d", year, month, day)

		// Walk the article's direct children in order: loose text switches the
		// current screen, each scrolltable belongs to the screen named last.
		screen := ""
		for node := article.Nodes[0].FirstChild; node != nil; node = node.NextSibling {
			switch {
			case node.Type == html.TextNode:
				text := node.Data
				if strings.Contains(text, "スクリーン1") {
					screen = "スクリーン1"
				} else if strings.Contains(text, "スクリーン2") {
					screen = "スクリーン2"
				} else if strings.Contains(text, "スクリーン3") {
					screen = "スクリーン3"
				}
			case node.Type == html.ElementNode && node.Data == "div" && hasClass(node, "scrolltable"):
				table := goquery.NewDocumentFromNode(node).Find("table").First()
				rows = append(rows, parseEurospaceTable(table, date, screen)...)
			}
		}
	})
	return rows, nil
}

// parseEurospaceTable pairs the first row's time cells with the second row's
// film cells, column by column.
func parseEurospaceTable(table *goquery.Selection, date, screen string) []models.ShowingRecord {
	trs := table.Find("tr")
	if trs.Length() < 2 {
		return nil
	}
	timeCells := trs.Eq(0).Find("td")
	filmCells := trs.Eq(1).Find("td")

	n := timeCells.Length()
	if filmCells.Length() < n {
		n = filmCells.Length()
	}

	var rows []models.ShowingRecord
	for i := 0; i < n; i++ {
		showtime := timePattern.FindString(timeCells.Eq(i).Text())
		if showtime == "" {
			continue
		}
		cell := filmCells.Eq(i)
		title := collapseSpaces(cell.Find("a").First().Text())
		// A 『…』 quoted title inside the cell names the actual film; the link
		// text may only name the retrospective it belongs to.
		if specific := extractQuotedTitle(cell.Text()); specific != "" {
			if strings.Contains(title, "特集") {
				title = title + ": " + specific
			} else {
				title = specific
			}
		}
		if title == "" {
			title = "Unknown Film"
		}
		rows = append(rows, models.ShowingRecord{
			Cinema:   eurospaceName,
			Date:     date,
			Screen:   screen,
			Title:    title,
			Showtime: showtime,
		})
	}
	return rows
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, c := range strings.Fields(attr.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}
