package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/pders01/sowestart/internal/storage"
)

const DefaultMaxArticles = 10

// Parser turns RSS and Atom documents into articles. Only the first
// maxArticles entries of a document are looked at. It is safe for
// concurrent use: each Parse gets its own gofeed parser, which sets its
// translators lazily and must not be shared between goroutines.
type Parser struct {
	maxArticles int
	now         func() time.Time
}

func NewParser(maxArticles int) *Parser {
	if maxArticles <= 0 {
		maxArticles = DefaultMaxArticles
	}
	return &Parser{
		maxArticles: maxArticles,
		now:         time.Now,
	}
}

// Parse never panics. On malformed input it returns no articles and an
// error wrapping ErrParseFailure. Entries without a title or link are
// skipped; entries without a date are stamped with the current time.
func (p *Parser) Parse(raw string) (articles []storage.Article, err error) {
	defer func() {
		if r := recover(); r != nil {
			articles = []storage.Article{}
			err = fmt.Errorf("%w: %v", ErrParseFailure, r)
		}
	}()

	feed, err := gofeed.NewParser().ParseString(raw)
	if err != nil {
		return []storage.Article{}, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}

	items := feed.Items
	if len(items) > p.maxArticles {
		items = items[:p.maxArticles]
	}

	articles = make([]storage.Article, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}

		title := strings.TrimSpace(item.Title)
		link := itemLink(item)
		if title == "" || link == "" {
			continue
		}

		articles = append(articles, storage.Article{
			Title:       title,
			Link:        link,
			Description: StripHTML(item.Description),
			PubDate:     p.pubDate(item),
		})
	}

	return articles, nil
}

func itemLink(item *gofeed.Item) string {
	if link := strings.TrimSpace(item.Link); link != "" {
		return link
	}
	for _, link := range item.Links {
		if link = strings.TrimSpace(link); link != "" {
			return link
		}
	}
	return ""
}

func (p *Parser) pubDate(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return p.now()
}

// StripHTML returns the text content of an HTML fragment with runs of
// whitespace collapsed.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
