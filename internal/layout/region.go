package layout

import (
	"image"
	"math"
)

// Region names. Front regions are read from the selected template; back
// regions come from the single back template.
const (
	Surname         = "surname"
	Name            = "name"
	Patronymic      = "patronymic"
	FullNameLine    = "full_name_line"
	BirthDate       = "birth_date"
	LicenseNumber   = "license_number"
	LicenseIssuedBy = "license_issued_by"
	DrivingSince    = "driving_since"

	Categories   = "categories"
	SpecialMarks = "special_marks"
	RawText      = "raw_text"
)

// Region is a named rectangle on the canonical canvas. Regions are values;
// Expand and Shift return new regions.
type Region struct {
	Name   string `json:"name" yaml:"name"`
	X      int    `json:"x" yaml:"x"`
	Y      int    `json:"y" yaml:"y"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
}

// Expand grows the region by dx on the left and right and dy on the top
// and bottom.
func (r Region) Expand(dx, dy int) Region {
	return Region{Name: r.Name, X: r.X - dx, Y: r.Y - dy, Width: r.Width + 2*dx, Height: r.Height + 2*dy}
}

// Shift moves the region by (dx, dy).
func (r Region) Shift(dx, dy int) Region {
	return Region{Name: r.Name, X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// Offset moves the region by a fractional calibration shift, rounding to
// whole pixels and clamping the origin to non-negative coordinates.
func (r Region) Offset(dx, dy float64) Region {
	return Region{
		Name:   r.Name,
		X:      max(0, int(math.Round(float64(r.X)+dx))),
		Y:      max(0, int(math.Round(float64(r.Y)+dy))),
		Width:  r.Width,
		Height: r.Height,
	}
}

// Rect returns the region as an image rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Box identifies the region's geometry for de-duplication.
func (r Region) Box() [4]int {
	return [4]int{r.X, r.Y, r.Width, r.Height}
}

// Point is a canonical-canvas position.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}
