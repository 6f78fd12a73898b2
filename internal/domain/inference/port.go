package inference

import "context"

// Classification hasil dari model klasifikasi
type Classification struct {
	TumorType  string  `json:"tumor_type"`
	Confidence float64 `json:"confidence"`
}

// Result normalized response from the remote model service
type Result struct {
	Classification Classification
	// Mask is the decoded segmentation mask (PNG bytes). Empty when the
	// model produced no mask.
	Mask []byte
}

// Client port (interface untuk remote inference service)
// Stateless; no retries. Retry policy, if any, belongs to the caller.
type Client interface {
	Analyze(ctx context.Context, image []byte, mimeType string) (Result, error)
}
