package domain

// ImageModel describes one image-generation backend model.
type ImageModel struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Upstream    string `yaml:"upstream"` // provider model path
	Description string `yaml:"description"`
	MaxSize     string `yaml:"max_size"`
	Recommended bool   `yaml:"recommended"`
}

// GeneratedImage is the result of an image-generation turn after the
// image has been persisted to the CDN.
type GeneratedImage struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}
