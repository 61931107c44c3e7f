package messages

import (
	"strings"
	"time"
)

// CardStyle enumerates the supported card render styles.
type CardStyle string

const (
	CardStyleDefault      CardStyle = "default"
	CardStyleStickyNote   CardStyle = "sticky-note"
	CardStylePolaroid     CardStyle = "polaroid"
	CardStyleSpeechBubble CardStyle = "speech-bubble"
	CardStyleHeart        CardStyle = "heart"
	CardStyleStar         CardStyle = "star"
)

// ParseCardStyle validates raw input against the card style enumeration.
func ParseCardStyle(raw string) (CardStyle, bool) {
	style := CardStyle(strings.TrimSpace(raw))
	switch style {
	case CardStyleDefault, CardStyleStickyNote, CardStylePolaroid,
		CardStyleSpeechBubble, CardStyleHeart, CardStyleStar:
		return style, true
	default:
		return "", false
	}
}

const (
	maxAuthorNameLength = 50
	maxContentLength    = 1000

	defaultCardColor = "#ffffff"
)

// Message is a single contributed note pinned to a board. Position values are
// board-relative percentages; rotation is in degrees. Both are purely a
// display-layout concern.
type Message struct {
	ID          string    `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	BoardID     string    `gorm:"column:board_id;size:190;not null;index" json:"boardId"`
	AuthorName  string    `gorm:"column:author_name;size:50;not null" json:"authorName"`
	AuthorEmail string    `gorm:"column:author_email;size:320" json:"authorEmail,omitempty"`
	Content     string    `gorm:"column:content;type:text;not null" json:"content"`
	ImageURL    string    `gorm:"column:image_url;size:512" json:"imageUrl,omitempty"`
	GifURL      string    `gorm:"column:gif_url;size:512" json:"gifUrl,omitempty"`
	CardColor   string    `gorm:"column:card_color;size:32;not null" json:"cardColor"`
	CardStyle   CardStyle `gorm:"column:card_style;size:32;not null" json:"cardStyle"`
	PositionX   float64   `gorm:"column:position_x;not null" json:"positionX"`
	PositionY   float64   `gorm:"column:position_y;not null" json:"positionY"`
	Rotation    float64   `gorm:"column:rotation;not null" json:"rotation"`
	CreatedAt   time.Time `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null" json:"updatedAt"`
}

// TableName provides the explicit table binding for GORM.
func (Message) TableName() string {
	return "messages"
}
