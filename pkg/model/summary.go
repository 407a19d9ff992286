package model

// Summary aggregates an inventory
type Summary struct {
	Products   int     `json:"products"`
	Units      int     `json:"units"`
	TotalValue float64 `json:"total_value"`
	LowStock   int     `json:"low_stock"`
	Threshold  int     `json:"low_stock_threshold"`
}

// Add folds p into the summary
func (s *Summary) Add(p Product) {
	s.Products++
	s.Units += p.Quantity
	s.TotalValue += p.TotalValue()
	if p.IsLowStock(s.Threshold) {
		s.LowStock++
	}
}
