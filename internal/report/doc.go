// Package report writes the on-disk result of a document comparison.
//
// # Layout
//
// A report directory holds:
//
//	images/pdf1_page{N}.png    page N of the original document
//	images/pdf2_page{N}.png    page N of the changed document
//	images/output_page{N}.png  page N of the changed document with clusters outlined
//	comparison.html            both documents side by side, one row per page
//	summary.json               per-page clusters and document totals
//
// Writer.WritePage is a compare.PageSink, so page images are written while
// other pages are still being compared. Writer.Finish writes the HTML and
// JSON files once every page is done.
package report
