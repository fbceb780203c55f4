package domain

import "errors"

// ErrDuplicateDeskNumber is returned when a layout save carries two desks
// with the same number. Nothing is persisted in that case.
var ErrDuplicateDeskNumber = errors.New("duplicate desk number")

// Desk is a positioned, uniquely numbered seat on a floor map.
// The id is opaque and stable across edits; the number is what directory
// sync matches office locations against. Nil occupant fields mean vacant.
type Desk struct {
	ID                string  `json:"id" validate:"required"`
	Number            int     `json:"number" validate:"gt=0"`
	X                 float64 `json:"x"`
	Y                 float64 `json:"y"`
	Width             float64 `json:"width" validate:"gt=0"`
	Height            float64 `json:"height" validate:"gt=0"`
	Label             *string `json:"label,omitempty"`
	OccupantFirstName *string `json:"occupantFirstName,omitempty"`
	OccupantLastName  *string `json:"occupantLastName,omitempty"`
}

// LayoutSave is the request body for a full layout replace.
type LayoutSave struct {
	Desks    []Desk          `json:"desks" validate:"dive"`
	MapStyle *MapStyleUpdate `json:"mapStyle,omitempty"`
}

// Layout is the full state a viewer renders.
type Layout struct {
	Map   *MapConfig `json:"map"`
	Desks []Desk     `json:"desks"`
}
