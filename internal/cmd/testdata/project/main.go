package main

import (
	"fmt"

	"example.com/shapes/geo"
)

const Version = "1.0"

func main() {
	fmt.Println(geo.Area(2, 3))
}
