package source

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/SlyMarbo/rss"
	"github.com/mmcdole/gofeed"

	"github.com/kovalyov-valentin/intel-feed/internal/model"
)

var ErrEmptyDocument = errors.New("empty feed document")

// Разбираем документ. RSS сначала пробуем SlyMarbo/rss, если не вышло, то gofeed:
// он лучше переносит кривой XML и понимает JSON Feed.
// Atom сразу отдаем gofeed: SlyMarbo кладет <updated> в единственную дату записи,
// и published теряется.
// Если не справились оба, вытаскиваем целые записи до места поломки и возвращаем ошибку разбора
func parseFeed(data []byte) ([]model.Item, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyDocument
	}

	atom := gofeed.DetectFeedType(bytes.NewReader(data)) == gofeed.FeedTypeAtom

	var (
		feed   *rss.Feed
		rssErr error
	)

	if !atom {
		feed, rssErr = rss.Parse(data)
		if rssErr == nil && len(feed.Items) > 0 {
			return itemsFromRSS(feed), nil
		}
	}

	gf, gfErr := gofeed.NewParser().Parse(bytes.NewReader(data))
	if gfErr == nil {
		return itemsFromGofeed(gf), nil
	}

	if atom {
		feed, rssErr = rss.Parse(data)
		if rssErr == nil && len(feed.Items) > 0 {
			items := itemsFromRSS(feed)
			// Для Atom у SlyMarbo это updated
			for i := range items {
				items[i].Updated, items[i].Published = items[i].Published, time.Time{}
			}
			return items, nil
		}
	}

	if rssErr == nil {
		// Документ валидный, просто пустой
		return nil, nil
	}

	return salvageItems(data), fmt.Errorf("parse feed: %w", errors.Join(rssErr, gfErr))
}

func itemsFromRSS(feed *rss.Feed) []model.Item {
	items := make([]model.Item, 0, len(feed.Items))

	for _, it := range feed.Items {
		items = append(items, model.Item{
			Title:      it.Title,
			Categories: it.Categories,
			Link:       it.Link,
			Summary:    it.Summary,
			Published:  it.Date,
		})
	}

	return items
}

func itemsFromGofeed(feed *gofeed.Feed) []model.Item {
	items := make([]model.Item, 0, len(feed.Items))

	for _, it := range feed.Items {
		if it == nil {
			continue
		}

		item := model.Item{
			Title:      it.Title,
			Categories: it.Categories,
			Link:       it.Link,
			Summary:    it.Description,
			Created:    createdDate(it),
		}

		if item.Link == "" && len(it.Links) > 0 {
			item.Link = it.Links[0]
		}
		if it.PublishedParsed != nil {
			item.Published = *it.PublishedParsed
		}
		if it.UpdatedParsed != nil {
			item.Updated = *it.UpdatedParsed
		}

		items = append(items, item)
	}

	return items
}

// dcterms:created встречается в некоторых Atom/RDF лентах
func createdDate(it *gofeed.Item) time.Time {
	values := it.Extensions["dcterms"]["created"]
	if len(values) == 0 {
		return time.Time{}
	}

	return parseDate(values[0].Value)
}

// Запись RSS (<item>) или Atom (<entry>) в том виде, в котором ее удается прочитать из битого документа
type looseEntry struct {
	Title       string          `xml:"title"`
	Links       []looseLink     `xml:"link"`
	Description string          `xml:"description"`
	Summary     string          `xml:"summary"`
	Categories  []looseCategory `xml:"category"`
	PubDate     string          `xml:"pubDate"`
	Published   string          `xml:"published"`
	Updated     string          `xml:"updated"`
	// dc:date
	Date    string `xml:"date"`
	Created string `xml:"created"`
}

type looseLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Text string `xml:",chardata"`
}

type looseCategory struct {
	Term string `xml:"term,attr"`
	Text string `xml:",chardata"`
}

// Читаем записи по одной, пока документ не сломается. Все, что прочитано целиком, оставляем
func salvageItems(data []byte) []model.Item {
	d := xml.NewDecoder(bytes.NewReader(data))
	d.Strict = false
	d.Entity = xml.HTMLEntity
	// Кодировку не перекодируем, для латинских заголовков и ссылок этого хватает
	d.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) { return r, nil }

	var items []model.Item

	for {
		tok, err := d.Token()
		if err != nil {
			return items
		}

		start, ok := tok.(xml.StartElement)
		if !ok || (start.Name.Local != "item" && start.Name.Local != "entry") {
			continue
		}

		var entry looseEntry
		if err := d.DecodeElement(&entry, &start); err != nil {
			return items
		}

		items = append(items, entry.toItem())
	}
}

func (e looseEntry) toItem() model.Item {
	item := model.Item{
		Title:     strings.TrimSpace(e.Title),
		Link:      e.link(),
		Summary:   strings.TrimSpace(firstNonEmpty(e.Description, e.Summary)),
		Published: parseDate(firstNonEmpty(e.PubDate, e.Published, e.Date)),
		Updated:   parseDate(e.Updated),
		Created:   parseDate(e.Created),
	}

	for _, c := range e.Categories {
		if name := strings.TrimSpace(firstNonEmpty(c.Text, c.Term)); name != "" {
			item.Categories = append(item.Categories, name)
		}
	}

	return item
}

// RSS держит ссылку в тексте <link>, Atom в href. У Atom берем alternate
func (e looseEntry) link() string {
	for _, l := range e.Links {
		if text := strings.TrimSpace(l.Text); text != "" {
			return text
		}
		if l.Href != "" && (l.Rel == "" || l.Rel == "alternate") {
			return strings.TrimSpace(l.Href)
		}
	}

	return ""
}

var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	time.RFC822Z,
	time.RFC822,
	"2006-01-02",
}

// Нулевое время, если дату не удалось разобрать
func parseDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}

	return time.Time{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}

	return ""
}
