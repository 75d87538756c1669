package preprocess

import (
	"bytes"
	"fmt"
	"image"
	"strconv"

	"github.com/bep/imagemeta"
	"github.com/disintegration/imaging"
)

// correctOrientation applies the EXIF Orientation tag, if present, to the
// decoded image. Best-effort: any metadata failure leaves the image as-is
// and reports corrected=false.
func correctOrientation(img image.Image, raw []byte) (image.Image, bool) {
	orient, err := orientationOf(raw)
	if err != nil {
		return img, false
	}

	switch orient {
	case 1:
		// Normal orientation, nothing to do.
	case 2:
		img = imaging.FlipH(img)
	case 3:
		img = imaging.Rotate180(img)
	case 4:
		img = imaging.FlipV(img)
	case 5:
		img = imaging.Transpose(img)
	case 6:
		img = imaging.Rotate270(img)
	case 7:
		img = imaging.Transverse(img)
	case 8:
		img = imaging.Rotate90(img)
	default:
		return img, false
	}
	return img, true
}

// orientationOf reads the EXIF Orientation tag (1-8) from raw image bytes.
func orientationOf(raw []byte) (int, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("no image data")
	}

	orient := 0
	_, err := imagemeta.Decode(imagemeta.Options{
		R:       bytes.NewReader(raw),
		Sources: imagemeta.EXIF,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			return ti.Tag == "Orientation"
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			orient = tagValueInt(ti.Value)
			return nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("decode exif: %w", err)
	}
	if orient < 1 || orient > 8 {
		return 0, fmt.Errorf("no usable orientation tag")
	}
	return orient, nil
}

// tagValueInt coerces the dynamically typed tag value into an int.
func tagValueInt(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case uint16:
		return int(t)
	case uint32:
		return int(t)
	case float64:
		return int(t)
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}
