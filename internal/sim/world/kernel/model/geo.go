package model

// Point is a geographic position in degrees.
type Point struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Bounds is the axis-aligned rectangle covered by a cell.
type Bounds struct {
	SW Point `json:"sw"`
	NE Point `json:"ne"`
}

func (b Bounds) Center() Point {
	return Point{
		Lat: (b.SW.Lat + b.NE.Lat) / 2,
		Lng: (b.SW.Lng + b.NE.Lng) / 2,
	}
}
