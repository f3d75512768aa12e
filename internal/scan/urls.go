package scan

import (
	"github.com/blockedby/safebot/internal/entity"
	"github.com/blockedby/safebot/internal/link"
)

// URLs returns the links of a message in entity order: the text of URL
// entities and the target of text links, standardized.
func URLs(msg *entity.Message) []string {
	buf := entity.NewBuffer(msg.Text, msg.Entities)

	var urls []string
	for _, e := range buf.Entities() {
		switch e.Kind {
		case entity.KindURL:
			urls = append(urls, link.Standardize(buf.Slice(e.Offset, e.Length)))
		case entity.KindTextLink:
			urls = append(urls, link.Standardize(e.URL))
		}
	}
	return urls
}

// FirstURL returns the first link of a message, or "" when there is none.
func FirstURL(msg *entity.Message) string {
	if urls := URLs(msg); len(urls) > 0 {
		return urls[0]
	}
	return ""
}
