package service

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/bharat-ai/bharatai/internal/domain"
)

// defaultModelsYAML is the built-in image model catalog, overridable
// with IMAGE_MODELS_PATH.
const defaultModelsYAML = `
models:
  - id: stable-diffusion
    name: Stable Diffusion XL
    upstream: "@cf/stabilityai/stable-diffusion-xl-base-1.0"
    description: High-quality, versatile image generation
    max_size: 1024x1024
    recommended: true
  - id: flux
    name: FLUX.1 Schnell
    upstream: "@cf/black-forest-labs/flux-1-schnell"
    description: Fast, high-quality image generation
    max_size: 1024x1024
  - id: dreamshaper
    name: DreamShaper 8 LCM
    upstream: "@cf/lykon/dreamshaper-8-lcm"
    description: Artistic and creative image generation
    max_size: 1024x1024
`

// ModelCatalog holds the image model list and resolves client model ids
// to upstream provider paths.
type ModelCatalog struct {
	mu     sync.RWMutex
	models []domain.ImageModel
	byID   map[string]domain.ImageModel
}

type modelsFile struct {
	Models []domain.ImageModel `yaml:"models"`
}

// LoadModelCatalog parses the catalog, reading path when set and the
// built-in list otherwise.
func LoadModelCatalog(path string) (*ModelCatalog, error) {
	data := []byte(defaultModelsYAML)
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read model catalog: %w", err)
		}
		data = fileData
	}

	var parsed modelsFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse model catalog: %w", err)
	}
	if len(parsed.Models) == 0 {
		return nil, fmt.Errorf("model catalog is empty")
	}

	c := &ModelCatalog{}
	c.set(parsed.Models)
	return c, nil
}

func (c *ModelCatalog) set(models []domain.ImageModel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.models = models
	c.byID = make(map[string]domain.ImageModel, len(models))
	for _, m := range models {
		c.byID[m.ID] = m
	}
}

// List returns the catalog in declaration order.
func (c *ModelCatalog) List() []domain.ImageModel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.ImageModel, len(c.models))
	copy(out, c.models)
	return out
}

// Resolve maps a client model id to its catalog entry, falling back to
// the default model for unknown ids.
func (c *ModelCatalog) Resolve(id string) (domain.ImageModel, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if m, ok := c.byID[id]; ok {
		return m, nil
	}
	if m, ok := c.byID["stable-diffusion"]; ok {
		return m, nil
	}
	return domain.ImageModel{}, domain.ErrModelNotFound
}
