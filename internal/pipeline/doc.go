// Package pipeline compares two PDF documents end to end.
//
// Run rasterizes both documents concurrently, reads their text layers,
// compares every page pair and writes a report directory. The CLI and the
// diff_documents MCP tool both go through Run, so they produce identical
// reports for identical settings.
package pipeline
