package domain

import "strings"

// DefaultEpicColor is used when an epic is created without a color tag.
const DefaultEpicColor = "white"

// Epic groups stories under one colored label.
type Epic struct {
	ID          int64
	Title       string
	Description string
	Color       string
}

// NewEpic validates and normalizes a new epic before it is stored.
func NewEpic(title, description, color string) (Epic, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Epic{}, ErrInvalidTitle
	}
	color = strings.ToLower(strings.TrimSpace(color))
	if color == "" {
		color = DefaultEpicColor
	}
	if strings.ContainsAny(color, " \t\n") {
		return Epic{}, ErrInvalidColor
	}
	return Epic{
		Title:       title,
		Description: strings.TrimSpace(description),
		Color:       color,
	}, nil
}
