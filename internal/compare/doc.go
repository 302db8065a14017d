// Package compare runs the change detection pipeline over page pairs.
//
// ComparePages handles one pair of equally sized images:
//
//  1. RegionFinder: difference mask and padded regions
//  2. detection.ClusterRects: overlapping regions merged into clusters
//  3. detection.CountChanged: changed pixels per cluster
//  4. imaging.DrawOutlines: cluster bounds outlined on a copy of the second image
//
// CompareDocuments equalizes two page sequences and compares every pair
// concurrently, bounded by Options.Workers. A failure on one page is recorded
// on its PageResult and does not stop the other pages. Finished pages are
// handed to a PageSink, typically the report writer, as soon as they are ready.
package compare
