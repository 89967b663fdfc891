package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bharat-ai/bharatai/internal/config"
	"github.com/bharat-ai/bharatai/internal/domain"
	"github.com/bharat-ai/bharatai/internal/middleware"
	"github.com/bharat-ai/bharatai/internal/service"
)

func TestGenerateImageRejectedInputDoesNotAlert(t *testing.T) {
	models, err := service.LoadModelCatalog("")
	if err != nil {
		t.Fatalf("loading default catalog: %v", err)
	}
	sink := &recordingSink{}
	h := New(Deps{
		Cfg:      &config.Config{},
		ImageGen: service.NewImageGenService("", "", nil, models),
		Alerts:   sink,
	})

	tests := []struct {
		name string
		body string
	}{
		{"empty prompt", `{"prompt":""}`},
		{"banned word", `{"prompt":"a nude figure"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/generate-image", strings.NewReader(tt.body))
			req = req.WithContext(middleware.WithUser(req.Context(), &domain.User{ID: "u1"}))
			rec := httptest.NewRecorder()
			h.generateImage(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("got %d, want 400", rec.Code)
			}
			if len(sink.failures) != 0 {
				t.Errorf("user input must not raise provider alerts, got %v", sink.failures)
			}
		})
	}
}
