//go:build js && wasm

package main

import (
	"bytes"
	"syscall/js"

	"github.com/tzuan16/uwimg/pkg/uwimg"
)

var (
	lastFrame *uwimg.Image
	lastFlow  *uwimg.Image
	lastScale float32
)

func main() {
	js.Global().Set("opticalFlow", js.FuncOf(opticalFlow))
	js.Global().Set("renderOverlay", js.FuncOf(renderOverlay))
	select {} // block forever
}

func opticalFlow(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("usage: opticalFlow(frameBytes, prevBytes, options)")
	}

	frame, err := uwimg.DecodeImage(bytes.NewReader(copyBytes(args[0])))
	if err != nil {
		return errorResult("frame decode error: " + err.Error())
	}
	prev, err := uwimg.DecodeImage(bytes.NewReader(copyBytes(args[1])))
	if err != nil {
		return errorResult("previous frame decode error: " + err.Error())
	}
	defer prev.Close()

	params := uwimg.NewFlowParams()
	scale := float32(0)
	if len(args) >= 3 && args[2].Type() == js.TypeObject {
		opts := args[2]
		if v := opts.Get("smoothing"); v.Type() == js.TypeNumber {
			params.Smoothing = v.Int()
		}
		if v := opts.Get("stride"); v.Type() == js.TypeNumber {
			params.Stride = v.Int()
		}
		if v := opts.Get("limit"); v.Type() == js.TypeNumber {
			params.Limit = float32(v.Float())
		}
		if v := opts.Get("scale"); v.Type() == js.TypeNumber {
			scale = float32(v.Float())
		}
	}
	if scale <= 0 {
		scale = float32(params.Smoothing)
	}

	v, err := uwimg.OpticalFlowWithParams(frame, prev, params)
	if err != nil {
		frame.Close()
		return errorResult("flow error: " + err.Error())
	}

	lastFrame.Close()
	lastFlow.Close()
	lastFrame, lastFlow, lastScale = frame, v, scale

	jsResult := map[string]interface{}{
		"width":      frame.W,
		"height":     frame.H,
		"flowWidth":  v.W,
		"flowHeight": v.H,
	}

	m := uwimg.AnalyzeMotion(v)
	if m != nil {
		jsZones := make([]interface{}, len(uwimg.ZoneOrder))
		for i, pos := range uwimg.ZoneOrder {
			z := m.Zones[pos]
			jsZones[i] = map[string]interface{}{
				"label":     z.Label,
				"samples":   z.SampleCount,
				"meanVX":    z.MeanVX,
				"meanVY":    z.MeanVY,
				"meanSpeed": z.MeanSpeed,
			}
		}
		jsResult["motion"] = map[string]interface{}{
			"meanVX":         m.MeanVX,
			"meanVY":         m.MeanVY,
			"meanSpeed":      m.MeanSpeed,
			"maxSpeed":       m.MaxSpeed,
			"speedStdDev":    m.SpeedStdDev,
			"dominantAngle":  m.DominantAngle,
			"movingFraction": m.MovingFraction,
			"busiestZone":    m.BusiestZone,
			"zones":          jsZones,
		}
	}

	return js.ValueOf(jsResult)
}

func renderOverlay(this js.Value, args []js.Value) interface{} {
	if lastFlow == nil {
		return js.Null()
	}

	jpegBytes, err := uwimg.RenderFlowOverlayBytes(lastFrame, lastFlow, lastScale)
	if err != nil {
		return js.Null()
	}

	// Create Uint8Array and copy bytes
	uint8Array := js.Global().Get("Uint8Array").New(len(jpegBytes))
	js.CopyBytesToJS(uint8Array, jpegBytes)
	return uint8Array
}

func copyBytes(v js.Value) []byte {
	b := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(b, v)
	return b
}

func errorResult(msg string) interface{} {
	return js.ValueOf(map[string]interface{}{
		"error": msg,
	})
}
