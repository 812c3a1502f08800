package dto

// GenerateImageRequest asks for a promotional image for a creation
type GenerateImageRequest struct {
	CreationUUID string `json:"creation_id" validate:"required,uuid4"`
}

// GenerateImageResponse represents the image generation outcome. A missing
// image is a valid terminal state: Success stays true and Warning explains.
type GenerateImageResponse struct {
	Success  bool    `json:"success"`
	ImageURL *string `json:"image_url"`
	Warning  string  `json:"warning,omitempty"`
}

// BackfillImagesResponse reports the outcome of an admin image backfill run
type BackfillImagesResponse struct {
	Message   string   `json:"message"`
	Scanned   int      `json:"scanned"`
	Generated int      `json:"generated"`
	Failed    []string `json:"failed,omitempty"`
}
