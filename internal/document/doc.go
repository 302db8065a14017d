// Package document turns PDF files into page images ready for comparison.
//
// # Rasterization
//
// Rasterizer is the seam between a document and its page images. Poppler is
// the production implementation: it runs the pdftoppm binary from poppler-utils
// once per document and decodes the PNG files it writes into a temporary
// directory. The directory is removed before Rasterize returns, so the caller
// only ever holds decoded images.
//
// # Inspection
//
// Inspect reads the PDF structure directly with rsc.io/pdf, without rendering.
// It reports the page count, the page size in points and the text layer of
// every page. The text layer lets a report flag pages whose wording changed
// even when the rendered difference is small.
//
// # Page Equalization
//
// Two revisions of a document rarely have the same number of pages. Equalize
// pads the shorter sequence with blank white pages so every page of the longer
// document has a counterpart. Added or removed pages then show up as a fully
// changed page rather than being skipped.
package document
