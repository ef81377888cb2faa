package uwimg

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	zoneEdgeFraction = 1.0 / 3.0
	// movingSpeed is the speed, in pixels per frame, above which a sample
	// counts as moving.
	movingSpeed = 0.5
)

// ZonePosition identifies a zone in the 3x3 motion grid.
type ZonePosition int

const (
	ZoneTopLeft ZonePosition = iota
	ZoneTop
	ZoneTopRight
	ZoneLeft
	ZoneCenter
	ZoneRight
	ZoneBottomLeft
	ZoneBottom
	ZoneBottomRight
)

// ZoneOrder lists the zones row by row.
var ZoneOrder = []ZonePosition{
	ZoneTopLeft, ZoneTop, ZoneTopRight,
	ZoneLeft, ZoneCenter, ZoneRight,
	ZoneBottomLeft, ZoneBottom, ZoneBottomRight,
}

var zoneLabels = map[ZonePosition]string{
	ZoneTopLeft:     "TL",
	ZoneTop:         "T",
	ZoneTopRight:    "TR",
	ZoneLeft:        "L",
	ZoneCenter:      "Center",
	ZoneRight:       "R",
	ZoneBottomLeft:  "BL",
	ZoneBottom:      "B",
	ZoneBottomRight: "BR",
}

func (z ZonePosition) String() string {
	return zoneLabels[z]
}

// ZoneMotion holds the motion statistics of one zone.
type ZoneMotion struct {
	Label       string
	SampleCount int
	MeanVX      float64
	MeanVY      float64
	MeanSpeed   float64
}

// MotionAnalysis summarises a velocity field.
type MotionAnalysis struct {
	Zones map[ZonePosition]ZoneMotion

	MeanVX      float64
	MeanVY      float64
	MeanSpeed   float64
	MaxSpeed    float64
	SpeedStdDev float64
	// DominantAngle is the direction of the mean velocity in radians.
	DominantAngle float64
	// MovingFraction is the share of samples faster than half a pixel per frame.
	MovingFraction float64
	// BusiestZone is the label of the zone with the highest mean speed.
	BusiestZone string
}

// AnalyzeMotion divides v into a 3x3 grid and computes per-zone and global
// velocity statistics. It returns nil for an empty field.
func AnalyzeMotion(v *Image) *MotionAnalysis {
	if v.Empty() || v.C < 2 {
		return nil
	}

	n := v.W * v.H
	vx := make([]float64, n)
	vy := make([]float64, n)
	speed := make([]float64, n)
	zoneSamples := make(map[ZonePosition][]int)

	xLo := float64(v.W) * zoneEdgeFraction
	xHi := float64(v.W) * (1.0 - zoneEdgeFraction)
	yLo := float64(v.H) * zoneEdgeFraction
	yHi := float64(v.H) * (1.0 - zoneEdgeFraction)

	moving := 0
	for y := 0; y < v.H; y++ {
		for x := 0; x < v.W; x++ {
			i := y*v.W + x
			vx[i] = float64(v.Get(x, y, 0))
			vy[i] = float64(v.Get(x, y, 1))
			speed[i] = math.Hypot(vx[i], vy[i])
			if speed[i] > movingSpeed {
				moving++
			}
			pos := classifyZone(float64(x)+0.5, float64(y)+0.5, xLo, xHi, yLo, yHi)
			zoneSamples[pos] = append(zoneSamples[pos], i)
		}
	}

	result := &MotionAnalysis{
		Zones:          make(map[ZonePosition]ZoneMotion),
		MeanVX:         stat.Mean(vx, nil),
		MeanVY:         stat.Mean(vy, nil),
		MeanSpeed:      stat.Mean(speed, nil),
		MaxSpeed:       floats.Max(speed),
		MovingFraction: float64(moving) / float64(n),
	}
	if n > 1 {
		result.SpeedStdDev = stat.StdDev(speed, nil)
	}
	result.DominantAngle = math.Atan2(result.MeanVY, result.MeanVX)

	busiest := -1.0
	for _, pos := range ZoneOrder {
		zm := computeZoneMotion(pos, zoneSamples[pos], vx, vy, speed)
		result.Zones[pos] = zm
		if zm.SampleCount > 0 && zm.MeanSpeed > busiest {
			busiest = zm.MeanSpeed
			result.BusiestZone = zm.Label
		}
	}
	return result
}

func classifyZone(x, y, xLo, xHi, yLo, yHi float64) ZonePosition {
	var col, row int
	if x < xLo {
		col = 0
	} else if x < xHi {
		col = 1
	} else {
		col = 2
	}
	if y < yLo {
		row = 0
	} else if y < yHi {
		row = 1
	} else {
		row = 2
	}
	return ZoneOrder[row*3+col]
}

func computeZoneMotion(pos ZonePosition, samples []int, vx, vy, speed []float64) ZoneMotion {
	zm := ZoneMotion{
		Label:       zoneLabels[pos],
		SampleCount: len(samples),
	}
	if len(samples) == 0 {
		return zm
	}
	var sx, sy, ss float64
	for _, i := range samples {
		sx += vx[i]
		sy += vy[i]
		ss += speed[i]
	}
	k := float64(len(samples))
	zm.MeanVX = sx / k
	zm.MeanVY = sy / k
	zm.MeanSpeed = ss / k
	return zm
}
