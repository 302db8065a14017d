// Package imaging provides the raster helpers around change detection: loading
// and caching page images, encoding and saving them, cropping regions and
// drawing cluster outlines.
//
// All operations work with standard Go image.Image types and use a coordinate
// system where (0,0) is at the top-left corner, X increases rightward, and Y
// increases downward.
//
// # Coordinate System
//
// Rectangles are image.Rectangle values: Min is inclusive, Max is exclusive.
// Rectangles may extend past the image, which happens for padded regions near
// the page edge. Drawing and cropping clip them silently.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Every other function is
// stateless and never mutates its input image: DrawOutlines draws onto a copy.
//
// # Supported Formats
//
// Loading accepts PNG, JPEG, GIF, BMP and TIFF. Output is always PNG.
//
// # Colors
//
// Outline colors are hex strings in "#RRGGBB" or "#RGB" form, parsed with
// go-colorful. The default outline is pure red, 3 pixels wide.
package imaging
