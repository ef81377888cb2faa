//go:build !gocv

package main

import "github.com/tzuan16/uwimg/pkg/uwimg"

func loadImage(path string) (*uwimg.Image, error) {
	return uwimg.LoadImage(path)
}
