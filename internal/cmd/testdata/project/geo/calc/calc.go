package mathx

func Square(x float64) float64 { return x * x }
