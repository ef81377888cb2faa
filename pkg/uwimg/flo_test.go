package uwimg

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloRoundTrip(t *testing.T) {
	v := newImageFrom(5, 3, 3, func(x, y, c int) float32 {
		switch c {
		case 0:
			return float32(x) - 2.5
		case 1:
			return float32(y) * 0.75
		}
		return 42
	})

	var buf bytes.Buffer
	require.NoError(t, EncodeFlo(&buf, v))
	assert.Equal(t, 12+5*3*2*4, buf.Len())
	assert.Equal(t, []byte("PIEH"), buf.Bytes()[:4])

	got, err := ReadFloFromBytes(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 2, got.C)
	if diff := cmp.Diff(v.Data[:2*5*3], got.Data); diff != "" {
		t.Errorf("flo round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFloFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "field.flo")
	v := newImageFrom(4, 4, 2, func(x, y, c int) float32 { return float32(x*10 + y + c*100) })
	require.NoError(t, WriteFlo(path, v))

	got, err := ReadFlo(path)
	require.NoError(t, err)
	assert.Equal(t, v.Data, got.Data)
}

func TestFloRejectsBadInput(t *testing.T) {
	header := func(magic float32, w, h int32) []byte {
		var buf bytes.Buffer
		binary.Write(&buf, binary.LittleEndian, magic)
		binary.Write(&buf, binary.LittleEndian, w)
		binary.Write(&buf, binary.LittleEndian, h)
		return buf.Bytes()
	}

	_, err := ReadFloFromBytes(header(1.5, 2, 2))
	assert.ErrorIs(t, err, ErrInvalidFlo)

	_, err = ReadFloFromBytes(header(floMagic, -1, 2))
	assert.ErrorIs(t, err, ErrInvalidFlo)

	_, err = ReadFloFromBytes(header(floMagic, 2, 2))
	assert.Error(t, err, "missing samples")

	_, err = ReadFloFromBytes([]byte("PI"))
	assert.Error(t, err)

	assert.ErrorIs(t, EncodeFlo(&bytes.Buffer{}, NewImage(2, 2, 1)), ErrChannelCount)
}
