package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/pdf-visual-diff/internal/compare"
	"github.com/ironsheep/pdf-visual-diff/internal/detection"
	"github.com/ironsheep/pdf-visual-diff/internal/imaging"
	"github.com/ironsheep/pdf-visual-diff/internal/ocr"
	"github.com/ironsheep/pdf-visual-diff/internal/pipeline"
	"github.com/ironsheep/pdf-visual-diff/internal/report"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "diff_images", "diff_documents").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// imageContent is implemented by results that carry an inline image.
type imageContent interface {
	inlineImage() (data, mimeType string)
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Results with an inline image get a second {"type": "image"} entry.
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.WithError(err).WithField("tool", params.Name).Warn("Tool execution failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	content := []map[string]interface{}{
		{
			"type": "text",
			"text": mustMarshalJSON(result),
		},
	}
	if img, ok := result.(imageContent); ok {
		if data, mime := img.inlineImage(); data != "" {
			content = append(content, map[string]interface{}{
				"type":     "image",
				"data":     data,
				"mimeType": mime,
			})
		}
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": content,
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_info":
		return s.handleImageInfo(args)

	// Change detection
	case "diff_images":
		return s.handleDiffImages(ctx, args)
	case "detect_change_regions":
		return s.handleDetectChangeRegions(args)
	case "cluster_rectangles":
		return s.handleClusterRectangles(args)

	// Documents
	case "diff_documents":
		return s.handleDiffDocuments(ctx, args)

	case "ocr_status":
		return ocr.GetInfo(), nil

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

type imageInfoArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageInfo(args json.RawMessage) (interface{}, error) {
	var a imageInfoArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// === Change Detection Handlers ===

// tuningArgs are the optional overrides shared by the detection tools.
// Missing fields keep the server configuration.
type tuningArgs struct {
	Padding   *int     `json:"padding"`
	Threshold *int     `json:"threshold"`
	BlurSigma *float64 `json:"blur_sigma"`
}

func (t tuningArgs) apply(padding int, mask detection.MaskOptions) (int, detection.MaskOptions) {
	if t.Padding != nil {
		padding = *t.Padding
	}
	if t.Threshold != nil {
		mask.Threshold = t.Threshold
	}
	if t.BlurSigma != nil {
		mask.BlurSigma = *t.BlurSigma
	}
	return padding, mask
}

type imagePairArgs struct {
	Original string `json:"original"`
	Changed  string `json:"changed"`
	tuningArgs
}

func (s *Server) loadPair(a imagePairArgs) (image.Image, image.Image, error) {
	if a.Original == "" || a.Changed == "" {
		return nil, nil, errors.New("original and changed are required")
	}
	imgA, err := s.cache.Load(a.Original)
	if err != nil {
		return nil, nil, err
	}
	imgB, err := s.cache.Load(a.Changed)
	if err != nil {
		return nil, nil, err
	}
	return imgA, imgB, nil
}

type diffImagesArgs struct {
	imagePairArgs
	OutlineColor string `json:"outline_color"`
	OutlineWidth int    `json:"outline_width"`
	OutputPath   string `json:"output_path"`
	IncludeImage bool   `json:"include_image"`
}

// DiffImagesResult is returned by the diff_images tool.
type DiffImagesResult struct {
	Width        int                 `json:"width"`
	Height       int                 `json:"height"`
	Regions      int                 `json:"regions"`
	ClusterCount int                 `json:"cluster_count"`
	Clusters     []detection.Cluster `json:"clusters"`
	ClusterText  []string            `json:"cluster_text,omitempty"`
	OutputPath   string              `json:"output_path,omitempty"`

	overlay string
}

func (r *DiffImagesResult) inlineImage() (string, string) {
	return r.overlay, imaging.PNGMimeType
}

func (s *Server) handleDiffImages(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a diffImagesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	imgA, imgB, err := s.loadPair(a.imagePairArgs)
	if err != nil {
		return nil, err
	}

	opts := compare.DefaultOptions()
	opts.Padding, opts.Mask = a.apply(s.cfg.Padding, s.cfg.MaskOptions())
	opts.Style = s.cfg.OutlineStyle()
	if a.OutlineColor != "" || a.OutlineWidth != 0 {
		color, width := s.cfg.OutlineColor, s.cfg.OutlineWidth
		if a.OutlineColor != "" {
			color = a.OutlineColor
		}
		if a.OutlineWidth != 0 {
			width = a.OutlineWidth
		}
		if opts.Style, err = imaging.NewOutlineStyle(color, width); err != nil {
			return nil, err
		}
	}
	if s.cfg.Backend != detection.BackendGo {
		if opts.Finder, err = detection.NewFinder(s.cfg.Backend, opts.Mask); err != nil {
			return nil, err
		}
	}

	res, err := compare.ComparePages(imgA, imgB, opts)
	if err != nil {
		return nil, err
	}

	bounds := imgB.Bounds()
	out := &DiffImagesResult{
		Width:        bounds.Dx(),
		Height:       bounds.Dy(),
		Regions:      res.Regions,
		ClusterCount: len(res.Clusters),
		Clusters:     res.Clusters,
	}

	if s.cfg.OCR && res.HasChanges() {
		ann := ocr.NewAnnotator(ocr.Options{Languages: s.cfg.OCRLanguages, Logger: s.logger})
		if text, err := ann.Annotate(ctx, imgB, res.Clusters); err == nil {
			out.ClusterText = text
		} else {
			s.logger.WithError(err).Warn("Cluster annotation failed")
		}
	}

	if a.OutputPath != "" {
		if err := imaging.SavePNG(a.OutputPath, res.Overlay); err != nil {
			return nil, err
		}
		out.OutputPath = a.OutputPath
	}
	if a.IncludeImage {
		if out.overlay, err = imaging.EncodePNGBase64(res.Overlay); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// RegionsResult is returned by the detect_change_regions tool.
type RegionsResult struct {
	Count   int              `json:"count"`
	Regions []detection.Rect `json:"regions"`
}

func (s *Server) handleDetectChangeRegions(args json.RawMessage) (interface{}, error) {
	var a imagePairArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	imgA, imgB, err := s.loadPair(a)
	if err != nil {
		return nil, err
	}

	padding, mask := a.apply(s.cfg.Padding, s.cfg.MaskOptions())
	finder, err := detection.NewFinder(s.cfg.Backend, mask)
	if err != nil {
		return nil, err
	}
	changes, err := finder.FindChanges(imgA, imgB, padding)
	if err != nil {
		return nil, err
	}
	return &RegionsResult{Count: len(changes.Regions), Regions: changes.Regions}, nil
}

type clusterRectanglesArgs struct {
	Rectangles []detection.Rect `json:"rectangles"`
}

// ClustersResult is returned by the cluster_rectangles tool.
type ClustersResult struct {
	Count    int                 `json:"count"`
	Clusters []detection.Cluster `json:"clusters"`
}

func (s *Server) handleClusterRectangles(args json.RawMessage) (interface{}, error) {
	var a clusterRectanglesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	clusters := detection.ClusterRects(a.Rectangles)
	return &ClustersResult{Count: len(clusters), Clusters: clusters}, nil
}

// === Document Handlers ===

type diffDocumentsArgs struct {
	Original  string `json:"original"`
	Changed   string `json:"changed"`
	OutputDir string `json:"output_dir"`
	DPI       int    `json:"dpi"`
	tuningArgs
}

// DiffDocumentsResult is returned by the diff_documents tool.
type DiffDocumentsResult struct {
	Dir      string             `json:"dir"`
	HTMLPath string             `json:"html_path"`
	Summary  report.Summary     `json:"summary"`
	Pages    []report.PageEntry `json:"pages"`
}

func (s *Server) handleDiffDocuments(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a diffDocumentsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Original == "" || a.Changed == "" {
		return nil, errors.New("original and changed are required")
	}

	cfg := *s.cfg
	if a.DPI != 0 {
		cfg.DPI = a.DPI
	}
	mask := cfg.MaskOptions()
	cfg.Padding, mask = a.apply(cfg.Padding, mask)
	cfg.Threshold, cfg.BlurSigma = mask.Threshold, mask.BlurSigma

	res, err := pipeline.New(&cfg, s.rasterizer, s.logger).Run(ctx, pipeline.Request{
		Original:  a.Original,
		Changed:   a.Changed,
		OutputDir: a.OutputDir,
	})
	if err != nil {
		return nil, err
	}
	return &DiffDocumentsResult{
		Dir:      res.Dir,
		HTMLPath: res.HTMLPath,
		Summary:  res.Report.Summary,
		Pages:    res.Report.Pages,
	}, nil
}
