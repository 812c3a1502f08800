// Package businessflow contains the core business logic and use cases for image generation workflows
package businessflow

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/jpeg"
	_ "image/png"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/juicebox-at/limited-builder/app/dto"
	"github.com/juicebox-at/limited-builder/app/services"
	"github.com/juicebox-at/limited-builder/config"
	"github.com/juicebox-at/limited-builder/models"
	"github.com/juicebox-at/limited-builder/repository"
	"github.com/juicebox-at/limited-builder/utils"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ImageFlow handles promotional image generation for creations
type ImageFlow interface {
	GenerateImage(ctx context.Context, req *dto.GenerateImageRequest) (*dto.GenerateImageResponse, error)
	GenerateForCreation(ctx context.Context, creation *models.Creation) (*dto.GenerateImageResponse, error)
}

// ImageFlowImpl implements the image generation flow
type ImageFlowImpl struct {
	creationRepo  repository.CreationRepository
	imageGen      services.ImageGenService
	storage       services.StorageService
	imageConfig   *config.ImageGenConfig
	storageConfig *config.StorageConfig
	fetcher       *http.Client
}

// NewImageFlow creates a new image flow instance
func NewImageFlow(
	creationRepo repository.CreationRepository,
	imageGen services.ImageGenService,
	storage services.StorageService,
	imageConfig *config.ImageGenConfig,
	storageConfig *config.StorageConfig,
) ImageFlow {
	return &ImageFlowImpl{
		creationRepo:  creationRepo,
		imageGen:      imageGen,
		storage:       storage,
		imageConfig:   imageConfig,
		storageConfig: storageConfig,
		fetcher:       &http.Client{Timeout: imageConfig.Timeout},
	}
}

// GenerateImage renders and stores a promotional image for a creation.
// Any pipeline failure downgrades to a successful response with a null image
// and a warning: a missing image never blocks a creation.
func (s *ImageFlowImpl) GenerateImage(ctx context.Context, req *dto.GenerateImageRequest) (*dto.GenerateImageResponse, error) {
	creation, err := s.creationRepo.ByUUID(ctx, req.CreationUUID)
	if err != nil {
		return nil, NewBusinessError("INTERNAL_ERROR", "Failed to load creation", err)
	}
	if creation == nil {
		return nil, NewBusinessError("CREATION_NOT_FOUND", "Creation not found", ErrCreationNotFound)
	}
	return s.GenerateForCreation(ctx, creation)
}

// GenerateForCreation runs the full pipeline for an already-loaded creation
func (s *ImageFlowImpl) GenerateForCreation(ctx context.Context, creation *models.Creation) (*dto.GenerateImageResponse, error) {
	genCtx, cancel := context.WithTimeout(ctx, s.imageConfig.Timeout)
	defer cancel()

	prompt := buildPrompt(creation)

	raw, err := s.imageGen.GenerateImage(genCtx, prompt)
	if err != nil {
		log.Printf("image generation failed for %s: %v", creation.UUID, err)
		return &dto.GenerateImageResponse{
			Success:  true,
			ImageURL: nil,
			Warning:  "image generation failed",
		}, nil
	}

	data, remoteURL := s.materialize(genCtx, raw)
	if data == nil && remoteURL != "" {
		// Could not download the remote image; persist its URL as-is.
		if err := s.creationRepo.UpdateImageURL(ctx, creation.ID, &remoteURL); err != nil {
			log.Printf("failed to persist image URL for %s: %v", creation.UUID, err)
		}
		return &dto.GenerateImageResponse{Success: true, ImageURL: &remoteURL}, nil
	}
	if data == nil {
		return &dto.GenerateImageResponse{
			Success:  true,
			ImageURL: nil,
			Warning:  "no usable image in generation response",
		}, nil
	}

	final := reencodeJPEG(data)

	key := fmt.Sprintf("%s-%d.jpg", utils.Slugify(creation.Name), utils.UTCNowUnix())
	publicURL, err := s.storage.Upload(ctx, key, final, "image/jpeg")
	if err != nil {
		log.Printf("image upload failed for %s: %v", creation.UUID, err)
		return s.inlineFallback(ctx, creation, final)
	}

	if err := s.creationRepo.UpdateImageURL(ctx, creation.ID, &publicURL); err != nil {
		log.Printf("failed to persist image URL for %s: %v", creation.UUID, err)
	}

	return &dto.GenerateImageResponse{Success: true, ImageURL: &publicURL}, nil
}

// inlineFallback returns the image as a data URI when storage is down, but
// only below the configured ceiling; above it, a null image beats an
// oversized payload.
func (s *ImageFlowImpl) inlineFallback(ctx context.Context, creation *models.Creation, data []byte) (*dto.GenerateImageResponse, error) {
	encoded := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data)
	if len(encoded) > s.storageConfig.InlineCeiling {
		return &dto.GenerateImageResponse{
			Success:  true,
			ImageURL: nil,
			Warning:  "image upload failed and result too large to inline",
		}, nil
	}

	if err := s.creationRepo.UpdateImageURL(ctx, creation.ID, &encoded); err != nil {
		log.Printf("failed to persist inline image for %s: %v", creation.UUID, err)
	}

	return &dto.GenerateImageResponse{
		Success:  true,
		ImageURL: &encoded,
		Warning:  "image stored inline; upload unavailable",
	}, nil
}

// materialize turns the extracted result into raw bytes. For remote URLs that
// cannot be downloaded it returns (nil, url) so the URL can be stored as-is.
func (s *ImageFlowImpl) materialize(ctx context.Context, raw string) ([]byte, string) {
	if strings.HasPrefix(raw, "data:") {
		idx := strings.Index(raw, ";base64,")
		if idx < 0 {
			return nil, ""
		}
		decoded, err := base64.StdEncoding.DecodeString(raw[idx+len(";base64,"):])
		if err != nil {
			return nil, ""
		}
		return decoded, ""
	}

	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return nil, ""
	}

	req, err := http.NewRequestWithContext(ctx, "GET", raw, nil)
	if err != nil {
		return nil, raw
	}
	resp, err := s.fetcher.Do(req)
	if err != nil {
		return nil, raw
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, raw
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 32*1024*1024))
	if err != nil {
		return nil, raw
	}
	return data, ""
}

// reencodeJPEG downscales and re-encodes the image to bound its size. Any
// failure in this step falls back to the original bytes unmodified.
func reencodeJPEG(data []byte) []byte {
	if len(data) <= utils.ImageTargetBytes {
		return data
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}

	resized := downscale(img, utils.ImageMaxDimension)
	buf := &bytes.Buffer{}
	if err := jpeg.Encode(buf, resized, &jpeg.Options{Quality: utils.ImageJPEGQuality}); err != nil {
		return data
	}
	if buf.Len() >= len(data) {
		return data
	}
	return buf.Bytes()
}

func downscale(src image.Image, maxDim int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return src
	}

	var nw, nh int
	if w >= h {
		nw = maxDim
		nh = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		nh = maxDim
		nw = int(float64(w) * float64(maxDim) / float64(h))
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	imagedraw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, imagedraw.Src)
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}

// buildPrompt composes the advertising-poster prompt from the creation's
// flavors, accent and variant.
func buildPrompt(c *models.Creation) string {
	accentText := ""
	if c.Accent != nil {
		accentText = fmt.Sprintf(" with %s accent", c.Accent.String())
	}

	baseText := "Classic"
	if c.BaseType == models.BaseTypeEistee {
		baseText = "Iced Tea"
	}
	variantText := "Original"
	if c.Variant == models.VariantLight {
		variantText = "Light"
	}

	beverageColor := models.BeverageColor(c.DominantFlavor())

	garnishes := make([]string, 0, len(c.PrimaryFlavors))
	for _, id := range c.PrimaryFlavors {
		garnishes = append(garnishes, models.Garnish(id))
	}

	return fmt.Sprintf(`Generate an image: Professional product promotional poster for JuiceBox %q Limited Edition%s (%s %s).

Scene: elegant garden terrace, bright daylight, sun-drenched outdoor luxury atmosphere, vibrant natural light, refreshing premium exclusive summery mood.

Central subject: A tall faceted glass with %s %q beverage with ice cubes, dynamic splash effect. Floating garnishes: %s around the glass. Behind it, a tilted dark grey JuiceBox bag-in-box container with white branding.

Style: professional advertising photography, 4K quality, appetizing, premium feel, clean composition.`,
		c.Name, accentText, baseText, variantText,
		beverageColor, c.Name,
		strings.Join(garnishes, ", "),
	)
}
