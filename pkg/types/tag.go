package types

// TagColor is the persisted color code of a tag
type TagColor int64

const (
	TagColorRed TagColor = iota
	TagColorOrange
	TagColorYellow
	TagColorGreen
	TagColorTeal
	TagColorBlue
	TagColorPurple
	TagColorBrown
)

// Tag labels notes. Name and Color are nullable.
type Tag struct {
	ID    int64     `json:"tag_id"`
	Name  *string   `json:"name,omitempty"`
	Color *TagColor `json:"color,omitempty"`
}

// Color returns a pointer to c
func Color(c TagColor) *TagColor {
	return &c
}
