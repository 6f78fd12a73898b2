package httpclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/inference"
	domain "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/scans"
)

// maxImageSize matches the model service's request limit (16 MiB).
const maxImageSize = 16 << 20

// Client calls the remote model service over HTTP. The service accepts a
// multipart upload and answers with
// {classification:{class,confidence}, segmentation_mask:<base64>, error}.
type Client struct {
	baseURL string
	http    *http.Client
}

// New buat client ke model service; timeout bounds the whole call.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type analyzeResponse struct {
	Classification struct {
		Class      string  `json:"class"`
		Confidence float64 `json:"confidence"`
	} `json:"classification"`
	SegmentationMask string `json:"segmentation_mask"`
	Error            string `json:"error"`
}

// classLabels maps model output labels to the domain enum.
var classLabels = map[string]domain.TumorType{
	"Glioma":     domain.TumorGlioma,
	"Meningioma": domain.TumorMeningioma,
	"Pituitary":  domain.TumorPituitary,
	"No Tumour":  domain.TumorNone,
	"No Tumor":   domain.TumorNone,
	"NoTumor":    domain.TumorNone,
}

// Analyze implements inference.Client. Oversized or empty input fails fast
// without touching the network. Never retried here; retry policy belongs to
// the caller.
func (c *Client) Analyze(ctx context.Context, image []byte, mimeType string) (inference.Result, error) {
	if len(image) == 0 {
		return inference.Result{}, fmt.Errorf("%w: empty image", domain.ErrInvalidInput)
	}
	if len(image) > maxImageSize {
		return inference.Result{}, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrInvalidInput, maxImageSize)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", fileName(mimeType))
	if err != nil {
		return inference.Result{}, err
	}
	if _, err := part.Write(image); err != nil {
		return inference.Result{}, err
	}
	if err := mw.Close(); err != nil {
		return inference.Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", &body)
	if err != nil {
		return inference.Result{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// connection refused / timeout / context deadline
		return inference.Result{}, fmt.Errorf("%w: %v", inference.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return inference.Result{}, fmt.Errorf("%w: reading response: %v", inference.ErrUnavailable, err)
	}

	if resp.StatusCode >= 500 {
		return inference.Result{}, fmt.Errorf("%w: status %d: %s", inference.ErrUnavailable, resp.StatusCode, detail(raw))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return inference.Result{}, fmt.Errorf("%w: status %d: %s", inference.ErrInference, resp.StatusCode, detail(raw))
	}

	var out analyzeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return inference.Result{}, fmt.Errorf("%w: malformed response body: %v", inference.ErrInference, err)
	}
	if out.Error != "" {
		return inference.Result{}, fmt.Errorf("%w: %s", inference.ErrInference, out.Error)
	}

	tumorType, ok := classLabels[out.Classification.Class]
	if !ok {
		return inference.Result{}, fmt.Errorf("%w: unknown class %q", inference.ErrInference, out.Classification.Class)
	}

	var mask []byte
	if out.SegmentationMask != "" {
		mask, err = base64.StdEncoding.DecodeString(out.SegmentationMask)
		if err != nil {
			return inference.Result{}, fmt.Errorf("%w: decoding mask: %v", inference.ErrInference, err)
		}
	}

	return inference.Result{
		Classification: inference.Classification{
			TumorType:  string(tumorType),
			Confidence: out.Classification.Confidence,
		},
		Mask: mask,
	}, nil
}

// Check pings the model service status endpoint; used by the health handler.
func (c *Client) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model service status %d", resp.StatusCode)
	}
	return nil
}

func fileName(mimeType string) string {
	switch mimeType {
	case "image/png":
		return "scan.png"
	case "image/jpeg", "image/jpg":
		return "scan.jpg"
	default:
		return "scan.bin"
	}
}

// detail trims an upstream body into an error message.
func detail(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &e) == nil && e.Error != "" {
		s = e.Error
	}
	if len(s) > 300 {
		s = s[:300] + "..."
	}
	return s
}
