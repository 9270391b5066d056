package googlebooks

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Volume is one search hit, reduced to the fields the search pipeline uses.
type Volume struct {
	ID             string
	Title          string
	Authors        []string
	Thumbnail      string
	SmallThumbnail string
	MaturityRating string
	RatingsCount   int
	AverageRating  float64
	PageCount      int
	ISBN13         string
	ISBN10         string
}

// Item is the outcome of parsing one entry of "items": either a Volume or a
// reason it was skipped.
type Item struct {
	Volume     Volume
	SkipReason string
}

func (i Item) Skipped() bool { return i.SkipReason != "" }

type SearchResult struct {
	TotalItems int
	Items      []Item
}

// ParseSearch converts a volumes response. A body that is not JSON, or that has
// neither "items" nor a zero "totalItems", is malformed. Individual entries
// that cannot be read are skipped instead of failing the batch.
func ParseSearch(body []byte) (*SearchResult, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedResponse)
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top level is not an object", ErrMalformedResponse)
	}

	total := root.Get("totalItems")
	items := root.Get("items")
	if !items.Exists() {
		// Zero hits come back without an "items" field.
		if total.Exists() && total.Int() == 0 {
			return &SearchResult{}, nil
		}
		return nil, fmt.Errorf("%w: missing items", ErrMalformedResponse)
	}
	if !items.IsArray() {
		return nil, fmt.Errorf("%w: items is not an array", ErrMalformedResponse)
	}

	res := &SearchResult{TotalItems: int(total.Int())}
	items.ForEach(func(_, item gjson.Result) bool {
		res.Items = append(res.Items, parseItem(item))
		return true
	})
	return res, nil
}

func parseItem(item gjson.Result) Item {
	if !item.IsObject() {
		return Item{SkipReason: "not_object"}
	}
	id := item.Get("id")
	if id.Type != gjson.String || id.String() == "" {
		return Item{SkipReason: "missing_id"}
	}
	info := item.Get("volumeInfo")
	if !info.IsObject() {
		return Item{SkipReason: "missing_volume_info"}
	}

	v := Volume{
		ID:             id.String(),
		Title:          stringField(info, "title"),
		Thumbnail:      stringField(info, "imageLinks.thumbnail"),
		SmallThumbnail: stringField(info, "imageLinks.smallThumbnail"),
		MaturityRating: stringField(info, "maturityRating"),
		RatingsCount:   int(info.Get("ratingsCount").Int()),
		AverageRating:  info.Get("averageRating").Float(),
		PageCount:      int(info.Get("pageCount").Int()),
	}
	for _, a := range info.Get("authors").Array() {
		if a.Type == gjson.String && a.String() != "" {
			v.Authors = append(v.Authors, a.String())
		}
	}
	for _, ident := range info.Get("industryIdentifiers").Array() {
		switch ident.Get("type").String() {
		case "ISBN_13":
			v.ISBN13 = ident.Get("identifier").String()
		case "ISBN_10":
			v.ISBN10 = ident.Get("identifier").String()
		}
	}
	return Item{Volume: v}
}

func stringField(r gjson.Result, path string) string {
	f := r.Get(path)
	if f.Type != gjson.String {
		return ""
	}
	return f.String()
}
