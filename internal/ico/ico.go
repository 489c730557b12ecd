// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package ico writes Windows icon files.
//
// Every image is stored PNG-compressed, which all browsers and Windows Vista
// and later understand.
package ico

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"

	"go.astrophena.name/logokit/internal/raster"
)

const (
	headerSize = 6
	entrySize  = 16
	maxSize    = 256
)

var (
	errNoImages     = errors.New("icon must contain at least one image")
	errSizeTooLarge = errors.New("icon images can't be larger than 256x256")
)

type header struct {
	Reserved uint16
	Type     uint16 // 1 for icons
	Count    uint16
}

type entry struct {
	Width    uint8 // 0 means 256
	Height   uint8 // 0 means 256
	Colors   uint8
	Reserved uint8
	Planes   uint16
	BPP      uint16
	Size     uint32
	Offset   uint32
}

// Encode writes imgs to w as a single icon file.
func Encode(w io.Writer, imgs ...image.Image) error {
	if len(imgs) == 0 {
		return errNoImages
	}

	data := make([][]byte, len(imgs))
	for i, img := range imgs {
		b := img.Bounds()
		if b.Dx() > maxSize || b.Dy() > maxSize {
			return fmt.Errorf("%w: got %dx%d", errSizeTooLarge, b.Dx(), b.Dy())
		}
		p, err := raster.EncodeBytes(img)
		if err != nil {
			return err
		}
		data[i] = p
	}

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, header{Type: 1, Count: uint16(len(imgs))})

	offset := uint32(headerSize + entrySize*len(imgs))
	for i, img := range imgs {
		b := img.Bounds()
		binary.Write(&buf, binary.LittleEndian, entry{
			Width:  dim(b.Dx()),
			Height: dim(b.Dy()),
			Planes: 1,
			BPP:    32,
			Size:   uint32(len(data[i])),
			Offset: offset,
		})
		offset += uint32(len(data[i]))
	}
	for _, p := range data {
		buf.Write(p)
	}

	_, err := w.Write(buf.Bytes())
	return err
}

func dim(n int) uint8 {
	if n >= maxSize {
		return 0
	}
	return uint8(n)
}
