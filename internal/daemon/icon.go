package daemon

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
)

const iconSize = 32

// trayIcon returns a small fish drawn into a PNG-compressed ICO container
func trayIcon() []byte {
	img := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))
	body := color.NRGBA{R: 0x2e, G: 0x9c, B: 0xd6, A: 0xff}
	eye := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			dx := float64(x-13) / 11
			dy := float64(y-16) / 7
			inBody := dx*dx+dy*dy <= 1
			inTail := x >= 22 && x <= 30 && abs(y-16) <= (x-22)
			if inBody || inTail {
				img.SetNRGBA(x, y, body)
			}
		}
	}
	img.SetNRGBA(8, 14, eye)
	img.SetNRGBA(9, 14, eye)

	var pngData bytes.Buffer
	if err := png.Encode(&pngData, img); err != nil {
		return nil
	}

	var ico bytes.Buffer
	// ICONDIR
	binary.Write(&ico, binary.LittleEndian, []uint16{0, 1, 1})
	// ICONDIRENTRY
	ico.Write([]byte{iconSize, iconSize, 0, 0})
	binary.Write(&ico, binary.LittleEndian, []uint16{1, 32})
	binary.Write(&ico, binary.LittleEndian, []uint32{uint32(pngData.Len()), 6 + 16})
	ico.Write(pngData.Bytes())

	return ico.Bytes()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
