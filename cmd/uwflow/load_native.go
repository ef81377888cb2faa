//go:build gocv

package main

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/tzuan16/uwimg/pkg/uwimg"
)

func loadImage(path string) (*uwimg.Image, error) {
	src := gocv.IMRead(path, gocv.IMReadUnchanged)
	if src.Empty() {
		return nil, fmt.Errorf("could not load image: %s", path)
	}
	defer src.Close()
	return uwimg.MatToImage(src)
}
