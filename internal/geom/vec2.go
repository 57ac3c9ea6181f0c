package geom

import "math"

// Vec2 is a 2-component vector (value type, stack-allocated).
type Vec2 struct {
	X, Y float64
}

func (a Vec2) Add(b Vec2) Vec2 {
	return Vec2{a.X + b.X, a.Y + b.Y}
}

func (a Vec2) Sub(b Vec2) Vec2 {
	return Vec2{a.X - b.X, a.Y - b.Y}
}

func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

func (v Vec2) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Size holds pixel dimensions of a decoded image or surface.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Center returns the geometric center of the size.
func (s Size) Center() Vec2 {
	return Vec2{float64(s.Width) / 2, float64(s.Height) / 2}
}
