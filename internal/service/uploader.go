package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bharat-ai/bharatai/internal/domain"
)

const cloudinaryAPIBase = "https://api.cloudinary.com/v1_1"

// UploaderService stores images on Cloudinary and returns their
// permanent CDN location.
type UploaderService struct {
	cloudName  string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
}

func NewUploaderService(cloudName, apiKey, apiSecret string) *UploaderService {
	return &UploaderService{
		cloudName:  cloudName,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// UploadImage stores a base64 PNG/JPEG payload under folder and returns
// the stored image's CDN reference.
func (s *UploaderService) UploadImage(ctx context.Context, base64Data, folder string) (*domain.GeneratedImage, error) {
	params := map[string]string{
		"folder":    folder,
		"timestamp": strconv.FormatInt(time.Now().Unix(), 10),
	}

	form := url.Values{}
	form.Set("file", "data:image/png;base64,"+base64Data)
	form.Set("api_key", s.apiKey)
	form.Set("signature", s.sign(params))
	for k, v := range params {
		form.Set(k, v)
	}

	endpoint := fmt.Sprintf("%s/%s/image/upload", cloudinaryAPIBase, s.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upload response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("cloudinary error: %d - %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var result struct {
		PublicID  string `json:"public_id"`
		SecureURL string `json:"secure_url"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse upload response: %w", err)
	}

	return &domain.GeneratedImage{
		URL:      result.SecureURL,
		PublicID: result.PublicID,
		Width:    result.Width,
		Height:   result.Height,
	}, nil
}

// Destroy removes a stored image. Used when a user replaces or deletes
// their avatar.
func (s *UploaderService) Destroy(ctx context.Context, publicID string) error {
	params := map[string]string{
		"public_id": publicID,
		"timestamp": strconv.FormatInt(time.Now().Unix(), 10),
	}

	form := url.Values{}
	form.Set("api_key", s.apiKey)
	form.Set("signature", s.sign(params))
	for k, v := range params {
		form.Set(k, v)
	}

	endpoint := fmt.Sprintf("%s/%s/image/destroy", cloudinaryAPIBase, s.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("destroy image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("cloudinary error: %d - %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// sign builds the request signature: sorted params joined as a query
// string, concatenated with the API secret, SHA-1 hex encoded.
func (s *UploaderService) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + s.apiSecret))
	return hex.EncodeToString(sum[:])
}
