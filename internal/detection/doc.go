// Package detection finds and groups the regions that changed between two
// renderings of the same page.
//
// This package implements the change-detection core of the visual diff: it turns
// two equally sized images into a binary change mask, extracts one padded
// bounding rectangle per connected blob of change, and merges rectangles that
// overlap (directly or through a chain of other rectangles) into clusters.
//
// # Pipeline
//
// Change detection follows a fixed pipeline:
//
//  1. Difference mask: grayscale both images (ITU-R BT.601 weights), take the
//     absolute per-pixel difference, binarize with an Otsu threshold
//  2. Region extraction: 8-connected external components of the mask, each
//     bounding box grown by a padding margin
//  3. Clustering: union-find over strictly overlapping rectangle pairs, one
//     enclosing rectangle per cluster
//
// Drawing the clusters onto the output image lives in the imaging package.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Rect is {X, Y, Width, Height}; the right edge X+Width is exclusive
//
// Padded rectangles may start at negative coordinates or extend past the image.
// They are never clamped, since they are only used for overlap and enclosing-box
// math.
//
// # Determinism
//
// Cluster membership does not depend on the order of the input rectangles.
// The order in which clusters are returned follows the lowest input index of
// each cluster and carries no meaning.
//
// # Backends
//
// GoFinder is the default, pure Go implementation. Building with the withcv tag
// enables CVFinder, which runs the same pipeline through OpenCV via gocv.
package detection
