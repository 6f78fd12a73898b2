package httpclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/inference"
	domain "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/scans"
)

var testImage = []byte("\x89PNG\r\n\x1a\nfake")

func TestAnalyzeSuccess(t *testing.T) {
	mask := []byte("mask-png-bytes")
	var gotField string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/analyze" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
		} else {
			file.Close()
			gotField = header.Filename
		}
		json.NewEncoder(w).Encode(map[string]any{
			"classification": map[string]any{
				"class":      "Glioma",
				"confidence": 0.93,
			},
			"segmentation_mask": base64.StdEncoding.EncodeToString(mask),
		})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	res, err := c.Analyze(context.Background(), testImage, "image/png")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Classification.TumorType != "Glioma" || res.Classification.Confidence != 0.93 {
		t.Fatalf("classification = %+v", res.Classification)
	}
	if string(res.Mask) != string(mask) {
		t.Fatalf("mask = %q", res.Mask)
	}
	if gotField != "scan.png" {
		t.Fatalf("uploaded filename = %q", gotField)
	}
}

func TestAnalyzeLabelMapping(t *testing.T) {
	cases := []struct {
		label string
		want  domain.TumorType
	}{
		{"Glioma", domain.TumorGlioma},
		{"Meningioma", domain.TumorMeningioma},
		{"Pituitary", domain.TumorPituitary},
		{"No Tumour", domain.TumorNone},
		{"No Tumor", domain.TumorNone},
		{"NoTumor", domain.TumorNone},
	}
	for _, tc := range cases {
		t.Run(tc.label, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{
					"classification": map[string]any{"class": tc.label, "confidence": 0.5},
				})
			}))
			defer srv.Close()

			res, err := New(srv.URL, time.Second).Analyze(context.Background(), testImage, "image/png")
			if err != nil {
				t.Fatalf("Analyze: %v", err)
			}
			if res.Classification.TumorType != string(tc.want) {
				t.Fatalf("TumorType = %s, want %s", res.Classification.TumorType, tc.want)
			}
		})
	}
}

func TestAnalyzeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model blew up", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Analyze(context.Background(), testImage, "image/png")
	if !errors.Is(err, inference.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable for 5xx", err)
	}
}

func TestAnalyzeClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "no file provided"})
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Analyze(context.Background(), testImage, "image/png")
	if !errors.Is(err, inference.ErrInference) {
		t.Fatalf("err = %v, want ErrInference for 4xx", err)
	}
}

func TestAnalyzeErrorField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"error": "could not read image"})
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Analyze(context.Background(), testImage, "image/png")
	if !errors.Is(err, inference.ErrInference) {
		t.Fatalf("err = %v, want ErrInference for error field", err)
	}
}

func TestAnalyzeMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Analyze(context.Background(), testImage, "image/png")
	if !errors.Is(err, inference.ErrInference) {
		t.Fatalf("err = %v, want ErrInference for malformed body", err)
	}
}

func TestAnalyzeUnknownClass(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"classification": map[string]any{"class": "Sarcoma", "confidence": 0.5},
		})
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Analyze(context.Background(), testImage, "image/png")
	if !errors.Is(err, inference.ErrInference) {
		t.Fatalf("err = %v, want ErrInference for unknown class", err)
	}
}

func TestAnalyzeConnectionRefused(t *testing.T) {
	// server closed before the call: connection refused
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := New(srv.URL, time.Second).Analyze(context.Background(), testImage, "image/png")
	if !errors.Is(err, inference.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestAnalyzeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := New(srv.URL, 20*time.Millisecond).Analyze(context.Background(), testImage, "image/png")
	if !errors.Is(err, inference.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable on timeout", err)
	}
}

func TestAnalyzeRejectsBadInputLocally(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	if _, err := c.Analyze(context.Background(), nil, "image/png"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput for empty image", err)
	}
	if _, err := c.Analyze(context.Background(), make([]byte, maxImageSize+1), "image/png"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput for oversized image", err)
	}
	if called {
		t.Fatal("network was touched for locally invalid input")
	}
}

func TestCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer srv.Close()

	if err := New(srv.URL, time.Second).Check(context.Background()); err != nil {
		t.Fatalf("Check: %v", err)
	}

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	if err := New(down.URL, time.Second).Check(context.Background()); err == nil {
		t.Fatal("Check should fail on non-200")
	}
}
