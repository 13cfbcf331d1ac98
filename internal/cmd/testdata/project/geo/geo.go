package geo

// Rect is an axis-aligned rectangle.
type Rect struct {
	W, H float64
}

func Area(w, h float64) float64 {
	return w * h
}
