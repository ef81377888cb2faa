package uwimg

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// floMagic is the "PIEH" tag that opens every Middlebury .flo file, stored
// as a little-endian float32.
const floMagic float32 = 202021.25

// floMaxDim rejects headers that would allocate absurd buffers.
const floMaxDim = 1 << 15

var ErrInvalidFlo = errors.New("invalid .flo data")

// ReadFlo reads a Middlebury .flo file into a 2-channel velocity field.
func ReadFlo(filePath string) (*Image, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening flo file: %w", err)
	}
	defer f.Close()
	return readFloFromReader(bufio.NewReader(f))
}

// ReadFloFromBytes parses .flo data held in memory.
func ReadFloFromBytes(data []byte) (*Image, error) {
	return readFloFromReader(bytes.NewReader(data))
}

func readFloFromReader(r io.Reader) (*Image, error) {
	var header struct {
		Magic  float32
		Width  int32
		Height int32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("reading flo header: %w", err)
	}
	if header.Magic != floMagic {
		return nil, fmt.Errorf("bad magic %v: %w", header.Magic, ErrInvalidFlo)
	}
	if header.Width <= 0 || header.Height <= 0 || header.Width > floMaxDim || header.Height > floMaxDim {
		return nil, fmt.Errorf("bad dimensions %dx%d: %w", header.Width, header.Height, ErrInvalidFlo)
	}

	w, h := int(header.Width), int(header.Height)
	raw := make([]float32, w*h*2)
	if err := binary.Read(r, binary.LittleEndian, raw); err != nil {
		return nil, fmt.Errorf("reading flo samples: %w", err)
	}

	v := NewImage(w, h, 2)
	vx, vy := v.Channel(0), v.Channel(1)
	for i := 0; i < w*h; i++ {
		vx[i] = raw[2*i]
		vy[i] = raw[2*i+1]
	}
	return v, nil
}

// WriteFlo writes the first two channels of v as a Middlebury .flo file.
func WriteFlo(filePath string, v *Image) error {
	f, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("create flo file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := EncodeFlo(w, v); err != nil {
		return err
	}
	return w.Flush()
}

// EncodeFlo writes the .flo representation of v to w.
func EncodeFlo(w io.Writer, v *Image) error {
	if v.C < 2 {
		return fmt.Errorf("encode flo %v: %w", v, ErrChannelCount)
	}
	if v.W > math.MaxInt32 || v.H > math.MaxInt32 {
		return fmt.Errorf("encode flo %v: %w", v, ErrInvalidFlo)
	}

	header := []any{floMagic, int32(v.W), int32(v.H)}
	for _, field := range header {
		if err := binary.Write(w, binary.LittleEndian, field); err != nil {
			return fmt.Errorf("writing flo header: %w", err)
		}
	}

	vx, vy := v.Channel(0), v.Channel(1)
	raw := make([]float32, 2*len(vx))
	for i := range vx {
		raw[2*i] = vx[i]
		raw[2*i+1] = vy[i]
	}
	if err := binary.Write(w, binary.LittleEndian, raw); err != nil {
		return fmt.Errorf("writing flo samples: %w", err)
	}
	return nil
}
