package entity

// CellRef points at a spreadsheet cell the pricing engine should read back
type CellRef struct {
	Sheet string `json:"sheet" yaml:"sheet"`
	Cell  string `json:"cell" yaml:"cell"`
}

// PricingRequest is the body sent to the pricing engine
type PricingRequest struct {
	InputCells    map[string]string  `json:"input_cells"`
	CellsToReturn map[string]CellRef `json:"cells_to_return"`
	GenerateKP    bool               `json:"generate_kp,omitempty"`
}

// PricingResult is the normalized pricing engine response
type PricingResult struct {
	Price       float64
	DocumentRef string // Empty if the engine returned no document
}

// HasDocument reports whether the engine returned a document reference
func (r *PricingResult) HasDocument() bool {
	return r != nil && r.DocumentRef != ""
}
