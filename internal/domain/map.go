package domain

import (
	"time"

	"github.com/google/uuid"
)

// MapConfig holds floor-map geometry and desk rendering style.
type MapConfig struct {
	ID                       uuid.UUID `json:"id"`
	Name                     string    `json:"name"`
	Width                    float64   `json:"width"`
	Height                   float64   `json:"height"`
	BackgroundURL            *string   `json:"backgroundUrl,omitempty"`
	DeskColor                string    `json:"deskColor"`
	DeskShape                string    `json:"deskShape"`
	DeskIcon                 string    `json:"deskIcon"`
	LabelPosition            string    `json:"labelPosition"`
	ShowName                 bool      `json:"showName"`
	ShowNumber               bool      `json:"showNumber"`
	DeskTextSize             int       `json:"deskTextSize"`
	DeskVisibleWhenSearching bool      `json:"deskVisibleWhenSearching"`
	CreatedAt                time.Time `json:"createdAt"`
	UpdatedAt                time.Time `json:"updatedAt"`
}

// MapStyleUpdate is a partial style update applied during a layout save.
// Only non-nil fields are written.
type MapStyleUpdate struct {
	Width                    *float64 `json:"width,omitempty"`
	Height                   *float64 `json:"height,omitempty"`
	DeskColor                *string  `json:"deskColor,omitempty"`
	DeskShape                *string  `json:"deskShape,omitempty"`
	LabelPosition            *string  `json:"labelPosition,omitempty"`
	ShowName                 *bool    `json:"showName,omitempty"`
	ShowNumber               *bool    `json:"showNumber,omitempty"`
	DeskTextSize             *int     `json:"deskTextSize,omitempty"`
	DeskVisibleWhenSearching *bool    `json:"deskVisibleWhenSearching,omitempty"`
}
