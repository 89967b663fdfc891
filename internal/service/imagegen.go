package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/bharat-ai/bharatai/internal/config"
	"github.com/bharat-ai/bharatai/internal/domain"
)

const cloudflareAPIBase = "https://api.cloudflare.com/client/v4"

// ImageGenService generates images through Cloudflare Workers AI and
// stores the result on the image CDN for a permanent URL.
type ImageGenService struct {
	accountID  string
	apiToken   string
	httpClient *http.Client
	uploader   *UploaderService
	models     *ModelCatalog
}

func NewImageGenService(accountID, apiToken string, uploader *UploaderService, models *ModelCatalog) *ImageGenService {
	return &ImageGenService{
		accountID:  accountID,
		apiToken:   apiToken,
		httpClient: &http.Client{Timeout: config.ImageGenTimeout},
		uploader:   uploader,
		models:     models,
	}
}

// GenerateOptions are per-request generation knobs. Zero values fall
// back to the configured defaults.
type GenerateOptions struct {
	Model    string
	Size     string
	Steps    int
	Guidance float64
}

var (
	artworkRe = regexp.MustCompile(`(?i)art|painting|drawing|illustration|artistic|creative|fantasy|abstract`)
	photoRe   = regexp.MustCompile(`(?i)photo|photograph|realistic|portrait|landscape|street|documentary`)
)

// EnhancePrompt appends style cues matched to the prompt's apparent
// intent before it reaches the model.
func EnhancePrompt(prompt string) string {
	switch {
	case artworkRe.MatchString(prompt):
		return prompt + ", digital art, trending on artstation, masterpiece, highly detailed, vibrant colors, dramatic lighting"
	case photoRe.MatchString(prompt):
		return prompt + ", professional photography, DSLR, studio lighting, bokeh effect, cinematic composition"
	default:
		return prompt + ", high quality, detailed, professional, 8k resolution"
	}
}

// CheckPrompt rejects prompts containing banned words.
func CheckPrompt(prompt string) error {
	lower := strings.ToLower(prompt)
	for _, word := range config.BannedPromptWords {
		if strings.Contains(lower, word) {
			return domain.ErrContentPolicy
		}
	}
	return nil
}

// Generate produces one image and uploads it to the CDN.
func (s *ImageGenService) Generate(ctx context.Context, prompt string, opts GenerateOptions) (*domain.GeneratedImage, error) {
	if prompt == "" {
		return nil, domain.ErrEmptyPrompt
	}
	if err := CheckPrompt(prompt); err != nil {
		return nil, err
	}

	if opts.Model == "" {
		opts.Model = config.DefaultImageModel
	}
	if opts.Size == "" {
		opts.Size = config.DefaultImageSize
	}
	if opts.Steps == 0 {
		opts.Steps = config.DefaultImageSteps
	}
	if opts.Guidance == 0 {
		opts.Guidance = config.DefaultGuidance
	}

	raw, err := s.run(ctx, EnhancePrompt(prompt), opts)
	if err != nil {
		return nil, err
	}

	image, err := s.uploader.UploadImage(ctx, base64.StdEncoding.EncodeToString(raw), "bharat-ai/generated-images")
	if err != nil {
		return nil, fmt.Errorf("store generated image: %w", err)
	}
	return image, nil
}

func (s *ImageGenService) run(ctx context.Context, prompt string, opts GenerateOptions) ([]byte, error) {
	model, err := s.models.Resolve(opts.Model)
	if err != nil {
		return nil, err
	}

	width, height := parseSize(opts.Size)
	body, err := json.Marshal(map[string]any{
		"prompt":    prompt,
		"num_steps": opts.Steps,
		"guidance":  opts.Guidance,
		"width":     width,
		"height":    height,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal generation request: %w", err)
	}

	url := fmt.Sprintf("%s/accounts/%s/ai/run/%s", cloudflareAPIBase, s.accountID, model.Upstream)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generate image: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read generation response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("cloudflare api error: %d - %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}

func parseSize(size string) (width, height int) {
	width, height = 1024, 1024
	parts := strings.SplitN(size, "x", 2)
	if len(parts) != 2 {
		return
	}
	if w, err := strconv.Atoi(parts[0]); err == nil && w > 0 {
		width = w
	}
	if h, err := strconv.Atoi(parts[1]); err == nil && h > 0 {
		height = h
	}
	return
}
