package output

import (
	"fmt"

	"github.com/air-guardian/pm25-fusion-poc/internal/properties"
	"github.com/fogleman/gg"
	"github.com/paulmach/orb"
)

// IndiaBounds is the approximate bounding box of India used to clip the
// prediction map: longitude 65–100, latitude 5–38.
var IndiaBounds = orb.Bound{Min: orb.Point{65, 5}, Max: orb.Point{100, 38}}

// Point is one predicted PM2.5 value at a coordinate.
type Point struct {
	Lat   float64
	Lon   float64
	Value float64
}

const (
	canvasWidth  = 1200
	canvasHeight = 800
	marginLeft   = 70.0
	marginRight  = 110.0
	marginTop    = 60.0
	marginBottom = 60.0
)

// ClipToIndia drops points outside IndiaBounds.
func ClipToIndia(points []Point) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if IndiaBounds.Contains(orb.Point{p.Lon, p.Lat}) {
			out = append(out, p)
		}
	}
	return out
}

// RampColor maps t in [0,1] onto a light-to-dark red ramp.
func RampColor(t float64) (r, g, b float64) {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	r = 1.0 - 0.4*t
	g = 0.96 - 0.92*t
	b = 0.94 - 0.89*t
	return r, g, b
}

// RenderMap draws the prediction scatter map and saves it as a PNG.
func RenderMap(points []Point, path string) error {
	points = ClipToIndia(points)
	if len(points) == 0 {
		return fmt.Errorf("no points inside the India bounding box to render")
	}

	minV, maxV := points[0].Value, points[0].Value
	for _, p := range points {
		if p.Value < minV {
			minV = p.Value
		}
		if p.Value > maxV {
			maxV = p.Value
		}
	}

	dc := gg.NewContext(canvasWidth, canvasHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	plotW := float64(canvasWidth) - marginLeft - marginRight
	plotH := float64(canvasHeight) - marginTop - marginBottom
	lonSpan := IndiaBounds.Max[0] - IndiaBounds.Min[0]
	latSpan := IndiaBounds.Max[1] - IndiaBounds.Min[1]

	toXY := func(lon, lat float64) (float64, float64) {
		x := marginLeft + (lon-IndiaBounds.Min[0])/lonSpan*plotW
		y := marginTop + (IndiaBounds.Max[1]-lat)/latSpan*plotH
		return x, y
	}

	// Grid every 5 degrees.
	dc.SetRGBA(0.5, 0.5, 0.5, 0.4)
	dc.SetLineWidth(1)
	dc.SetDash(4, 4)
	for lon := IndiaBounds.Min[0]; lon <= IndiaBounds.Max[0]; lon += 5 {
		x, _ := toXY(lon, IndiaBounds.Min[1])
		dc.DrawLine(x, marginTop, x, marginTop+plotH)
		dc.Stroke()
	}
	for lat := IndiaBounds.Min[1]; lat <= IndiaBounds.Max[1]; lat += 5 {
		_, y := toXY(IndiaBounds.Min[0], lat)
		dc.DrawLine(marginLeft, y, marginLeft+plotW, y)
		dc.Stroke()
	}
	dc.SetDash()

	// Axis labels.
	dc.SetRGB(0, 0, 0)
	for lon := IndiaBounds.Min[0]; lon <= IndiaBounds.Max[0]; lon += 5 {
		x, _ := toXY(lon, IndiaBounds.Min[1])
		dc.DrawStringAnchored(fmt.Sprintf("%.0f", lon), x, marginTop+plotH+15, 0.5, 0.5)
	}
	for lat := IndiaBounds.Min[1]; lat <= IndiaBounds.Max[1]; lat += 5 {
		_, y := toXY(IndiaBounds.Min[0], lat)
		dc.DrawStringAnchored(fmt.Sprintf("%.0f", lat), marginLeft-20, y, 0.5, 0.5)
	}
	dc.DrawStringAnchored("Predicted Surface-Level PM2.5 Across India", float64(canvasWidth)/2, marginTop/2, 0.5, 0.5)
	dc.DrawStringAnchored("Longitude", marginLeft+plotW/2, float64(canvasHeight)-marginBottom/3, 0.5, 0.5)
	dc.Push()
	dc.RotateAbout(gg.Radians(-90), marginLeft/3, marginTop+plotH/2)
	dc.DrawStringAnchored("Latitude", marginLeft/3, marginTop+plotH/2, 0.5, 0.5)
	dc.Pop()

	// Frame.
	dc.SetLineWidth(1.5)
	dc.DrawRectangle(marginLeft, marginTop, plotW, plotH)
	dc.Stroke()

	// Scatter points.
	span := maxV - minV
	for _, p := range points {
		t := 0.5
		if span > 0 {
			t = (p.Value - minV) / span
		}
		x, y := toXY(p.Lon, p.Lat)
		dc.SetRGB(RampColor(t))
		dc.DrawCircle(x, y, 4)
		dc.Fill()
	}

	drawColorBar(dc, minV, maxV, plotH)

	if err := properties.EnsureParentDir(path); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("failed to save map image: %w", err)
	}
	return nil
}

func drawColorBar(dc *gg.Context, minV, maxV, plotH float64) {
	barX := float64(canvasWidth) - marginRight + 30
	barW := 18.0
	steps := int(plotH)
	for i := 0; i < steps; i++ {
		t := 1 - float64(i)/float64(steps-1)
		dc.SetRGB(RampColor(t))
		dc.DrawRectangle(barX, marginTop+float64(i), barW, 1)
		dc.Fill()
	}
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1)
	dc.DrawRectangle(barX, marginTop, barW, plotH)
	dc.Stroke()
	dc.DrawStringAnchored(fmt.Sprintf("%.0f", maxV), barX+barW+22, marginTop, 0.5, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%.0f", minV), barX+barW+22, marginTop+plotH, 0.5, 0.5)
	dc.DrawStringAnchored("µg/m³", barX+barW/2, marginTop-15, 0.5, 0.5)
}
