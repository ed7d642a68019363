package types

// BatchProgress is emitted once per processed link.
// FilteredResults holds every result of the batch so far, in input order.
type BatchProgress struct {
	Message         string             `json:"message"`
	TotalGreenPrice int64              `json:"total_green_price"`
	FilteredResults []ClassifiedResult `json:"filtered_results"`
	Progress        string             `json:"progress"`
}

// ProcessLinksRequest is the body accepted by the link processing endpoints.
type ProcessLinksRequest struct {
	Links []string `json:"links" binding:"required"`
	Mode  string   `json:"mode,omitempty"`
}
