package vault

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// record is the on-disk shape of one item. Absent and null path fields are
// equivalent.
type record struct {
	Type          string  `json:"type" validate:"required,oneof=NOTE FILE IMAGE VIDEO"`
	Content       *string `json:"content" validate:"required"`
	Path          *string `json:"path"`
	ThumbnailPath *string `json:"thumbnailPath"`
}

var validate = validator.New()

// Encode serializes items as one JSON array in display order.
func Encode(items []Item) ([]byte, error) {
	records := make([]record, 0, len(items))
	for _, item := range items {
		records = append(records, toRecord(item))
	}
	return json.Marshal(records)
}

// Decode parses a document. An unparseable document is an error; elements
// that are not valid items are skipped and counted.
func Decode(data []byte) ([]Item, int, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("decode vault document: %w", err)
	}
	items := make([]Item, 0, len(raw))
	skipped := 0
	for _, element := range raw {
		item, err := decodeRecord(element)
		if err != nil {
			skipped++
			continue
		}
		items = append(items, item)
	}
	return items, skipped, nil
}

func decodeRecord(data json.RawMessage) (Item, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	if err := validate.Struct(rec); err != nil {
		return nil, err
	}
	return fromRecord(rec), nil
}

func toRecord(item Item) record {
	label := item.Label()
	rec := record{
		Type:    string(item.Kind()),
		Content: &label,
	}
	if p := PayloadPath(item); p != "" {
		rec.Path = &p
	}
	if p := ThumbnailPath(item); p != "" {
		rec.ThumbnailPath = &p
	}
	return rec
}

func fromRecord(rec record) Item {
	content := deref(rec.Content)
	path := deref(rec.Path)
	thumb := deref(rec.ThumbnailPath)
	switch Kind(rec.Type) {
	case KindFile:
		return File{Name: content, Path: path}
	case KindImage:
		return Image{Name: content, Path: path, Thumbnail: thumb}
	case KindVideo:
		return Video{Name: content, Path: path, Thumbnail: thumb}
	default:
		return Note{Text: content}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
