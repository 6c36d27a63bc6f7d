package models

// ListItemsResponse is the body returned by the list source for a list read.
type ListItemsResponse struct {
	Items []string `json:"items"`
}

// ListOperationsRequest is the body of a batch change sent to the list source.
type ListOperationsRequest struct {
	Add    []string `json:"add"`
	Remove []string `json:"remove"`
}

// ListOperationsResponse is returned for a batch change. Failed lists the
// items that could not be added or removed.
type ListOperationsResponse struct {
	Failed []string `json:"failed,omitempty"`
}
