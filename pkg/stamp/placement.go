package stamp

import (
	"image"

	"github.com/quidome/photostamp/pkg/config"
)

// Margin is the distance in pixels between the text and the image edges.
const Margin = 20

// Placement is the box the rendered text occupies in the output image.
type Placement struct {
	X, Y          int
	Width, Height int
}

// Place returns the top-left corner of a textW x textH box anchored at pos
// inside an imgW x imgH image. Unknown positions are treated as bottom-right.
func Place(pos config.Position, imgW, imgH, textW, textH int) image.Point {
	right := imgW - textW - Margin
	bottom := imgH - textH - Margin

	switch pos {
	case config.TopLeft:
		return image.Pt(Margin, Margin)
	case config.TopRight:
		return image.Pt(right, Margin)
	case config.BottomLeft:
		return image.Pt(Margin, bottom)
	case config.Center:
		return image.Pt(floorDiv(imgW-textW, 2), floorDiv(imgH-textH, 2))
	default:
		return image.Pt(right, bottom)
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
