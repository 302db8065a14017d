// Package ocr reads the text under changed clusters using Tesseract.
//
// Annotator implements compare.Annotator: every cluster of a changed page is
// cropped, upscaled and passed to Tesseract, and the recognized text is
// attached to the page result. The report shows it next to the page and the
// MCP tools return it with each cluster.
//
// # Build Tags
//
// Tesseract bindings (gosseract/v2) need cgo and the Tesseract and Leptonica
// libraries. They are only compiled with the "ocr" build tag:
//
//	go build -tags ocr ./...
//
// Without the tag, NewAnnotator succeeds but every Annotate call returns
// ErrUnavailable, and Available reports false.
//
// # Prerequisites
//
// Tesseract must be installed on the system together with the data files of
// every configured language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng libtesseract-dev
//   - macOS: brew install tesseract
//
// Options.TessdataPrefix points Tesseract at a non-standard data directory.
//
// # Performance Considerations
//
// One Tesseract client is created per Annotate call and reused for all of the
// page's clusters. Clients are not shared between goroutines, so pages can be
// annotated concurrently.
package ocr
