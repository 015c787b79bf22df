package types

import "time"

// SumRequest is the payload for POST /api/sum.
type SumRequest struct {
	Inputs []string `json:"inputs"`
}

// SumResult is the outcome for one input string.
type SumResult struct {
	Input      string   `json:"input"`
	Sum        int      `json:"sum"`
	Delimiters []string `json:"delimiters"`
	Source     string   `json:"source"`      // "cache" or "computed"
	ComputedAt string   `json:"computed_at"` // RFC3339
}

// ErrorEntry captures why an input could not be summed.
type ErrorEntry struct {
	Input string `json:"input"`
	Error string `json:"error"`
}

// SumResponse is the JSON response for the sum endpoint. Total adds up every
// successful result.
type SumResponse struct {
	Results []SumResult  `json:"results"`
	Errors  []ErrorEntry `json:"errors"`
	Total   int          `json:"total"`
}

// NewSumResult builds a SumResult stamped with ts in UTC.
func NewSumResult(input string, sum int, delims []string, source string, ts time.Time) SumResult {
	return SumResult{
		Input:      input,
		Sum:        sum,
		Delimiters: delims,
		Source:     source,
		ComputedAt: ts.UTC().Format(time.RFC3339),
	}
}

// TotalOf sums the results.
func TotalOf(results []SumResult) int {
	total := 0
	for i := range results {
		total += results[i].Sum
	}
	return total
}
