package report

import (
	"github.com/montanaflynn/stats"

	"github.com/ironsheep/pdf-visual-diff/internal/compare"
)

// Summary totals a document comparison.
type Summary struct {
	Pages              int     `json:"pages"`
	ChangedPages       int     `json:"changed_pages"`
	FailedPages        int     `json:"failed_pages"`
	TotalClusters      int     `json:"total_clusters"`
	MeanClusters       float64 `json:"mean_clusters_per_page"`
	MaxClusters        int     `json:"max_clusters_per_page"`

	// TotalChangedPixels sums the changed mask pixels of every compared page.
	TotalChangedPixels int `json:"total_changed_pixels"`

	// TextChangedPages lists pages whose text layer differs. Filled by the caller.
	TextChangedPages []int `json:"text_changed_pages,omitempty"`
}

// Summarize computes document totals from page results. Failed pages count
// towards Pages and FailedPages only.
func Summarize(results []compare.PageResult) Summary {
	s := Summary{Pages: len(results)}

	counts := make(stats.Float64Data, 0, len(results))
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			s.FailedPages++
			continue
		}
		if r.HasChanges() {
			s.ChangedPages++
		}
		s.TotalClusters += len(r.Clusters)
		s.TotalChangedPixels += r.ChangedPixels
		counts = append(counts, float64(len(r.Clusters)))
	}

	// Both return an error only for empty input.
	if mean, err := stats.Mean(counts); err == nil {
		s.MeanClusters = mean
	}
	if m, err := stats.Max(counts); err == nil {
		s.MaxClusters = int(m)
	}
	return s
}

// Failed reports whether any page could not be compared.
func (s Summary) Failed() bool {
	return s.FailedPages > 0
}
