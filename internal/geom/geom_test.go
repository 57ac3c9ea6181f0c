package geom

import "testing"

func TestRectAroundAndContains(t *testing.T) {
	r := RectAround(Vec2{X: 100, Y: 50}, 40, 20)

	if r.Min.X != 80 || r.Min.Y != 40 || r.Max.X != 120 || r.Max.Y != 60 {
		t.Fatalf("rect = %+v", r)
	}
	if r.Width() != 40 || r.Height() != 20 {
		t.Fatalf("size = %vx%v", r.Width(), r.Height())
	}

	tests := []struct {
		p    Vec2
		want bool
	}{
		{Vec2{100, 50}, true},
		{Vec2{80, 40}, true}, // inclusive edges
		{Vec2{120, 60}, true},
		{Vec2{79.9, 50}, false},
		{Vec2{100, 60.1}, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.p); got != tt.want {
			t.Errorf("Contains(%+v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestVecOps(t *testing.T) {
	a := Vec2{X: 3, Y: 4}
	if a.Len() != 5 {
		t.Errorf("Len = %v", a.Len())
	}
	if got := a.Add(Vec2{X: 1, Y: 1}); got.X != 4 || got.Y != 5 {
		t.Errorf("Add = %+v", got)
	}
	if got := a.Sub(Vec2{X: 1, Y: 1}); got.X != 2 || got.Y != 3 {
		t.Errorf("Sub = %+v", got)
	}
	if got := a.Scale(2); got.X != 6 || got.Y != 8 {
		t.Errorf("Scale = %+v", got)
	}
}

func TestSizeCenter(t *testing.T) {
	if got := (Size{Width: 200, Height: 100}).Center(); got.X != 100 || got.Y != 50 {
		t.Errorf("Center = %+v", got)
	}
}
