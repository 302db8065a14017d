//go:build !ocr

package ocr

func newTesseract(Options) (recognizer, error) {
	return nil, ErrUnavailable
}

// Available reports whether Tesseract support is compiled in.
func Available() bool {
	return false
}

// GetInfo reports that OCR is unavailable.
func GetInfo() Info {
	return Info{
		Available: false,
		Error:     ErrUnavailable.Error(),
		Backend:   "none",
	}
}
