// Package server implements the MCP (Model Context Protocol) server for visual
// document comparison.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Images:
//   - image_info: Dimensions, format and file size of an image
//   - diff_images: Clusters and outlined overlay for an image pair
//   - detect_change_regions: Padded changed regions before clustering
//   - cluster_rectangles: Merge overlapping rectangles
//
// Documents:
//   - diff_documents: Full PDF comparison with an HTML report on disk
//
// Diagnostics:
//   - ocr_status: Whether cluster text recognition is compiled in
//
// Tool arguments override the server configuration for a single call.
//
// # Image Caching
//
// Images passed by path are cached and reused across tool calls, so repeated
// comparisons against the same baseline do not decode it again.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
package server
