// internal/workers/assistant/classify-intent/models.go
package classifyintent

type Input struct {
	Message string `json:"message"`
}

type Output struct {
	Intent     string   `json:"intent"`
	Confidence float64  `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
	Strategy   string   `json:"strategy"`
	Entities   []string `json:"entities,omitempty"`
}
