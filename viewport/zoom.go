package viewport

// Zoom range for page tiles, in CSS pixels
const (
	DefaultZoom = 300
	MinZoom     = 100
	MaxZoom     = 500
	ZoomStep    = 50
)

// ClampZoom keeps a requested width inside [MinZoom, MaxZoom]; non-positive means default
func ClampZoom(width int) int {
	switch {
	case width <= 0:
		return DefaultZoom
	case width < MinZoom:
		return MinZoom
	case width > MaxZoom:
		return MaxZoom
	default:
		return width
	}
}

// ZoomIn widens tiles by one step unless already at MaxZoom
func ZoomIn(width int) int {
	if width >= MaxZoom {
		return width
	}
	return ClampZoom(width + ZoomStep)
}

// ZoomOut narrows tiles by one step unless already at MinZoom
func ZoomOut(width int) int {
	if width <= MinZoom {
		return width
	}
	return ClampZoom(width - ZoomStep)
}
