package domain

// TradeOffs holds the balanced view of a product.
type TradeOffs struct {
	Positives []string `json:"positives"`
	Negatives []string `json:"negatives"`
}

// InsightCard is the structured decision-support output produced by the
// reasoning collaborator for an analyzed product.
type InsightCard struct {
	AIInsightTitle string    `json:"ai_insight_title"`
	QuickVerdict   string    `json:"quick_verdict"`
	WhyThisMatters []string  `json:"why_this_matters"`
	TradeOffs      TradeOffs `json:"trade_offs"`
	Uncertainty    string    `json:"uncertainty"`
	AIAdvice       string    `json:"ai_advice"`
	Barcode        string    `json:"barcode,omitempty"`
}
