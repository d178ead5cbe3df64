package notion

import (
	"time"

	"github.com/Egor213/LogiStream/internal/domain"
	"github.com/jomei/notionapi"
)

func toActivity(p notionapi.Page) domain.Activity {
	a := domain.Activity{ID: string(p.ID)}

	if prop, ok := p.Properties[propKind].(*notionapi.SelectProperty); ok {
		a.Name = prop.Select.Name
	}
	if prop, ok := p.Properties[propNote].(*notionapi.RichTextProperty); ok && len(prop.RichText) > 0 {
		a.Notes = prop.RichText[0].PlainText
	}
	if start := dateStart(p.Properties[propStartedTime]); start != "" {
		a.StartTime = start
	}
	if end := dateStart(p.Properties[propEndTime]); end != "" {
		a.EndTime = &end
	}
	return a
}

func dateStart(prop notionapi.Property) string {
	d, ok := prop.(*notionapi.DateProperty)
	if !ok || d.Date == nil || d.Date.Start == nil {
		return ""
	}
	return time.Time(*d.Date.Start).UTC().Format(time.RFC3339)
}
