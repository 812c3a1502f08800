package businessflow

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juicebox-at/limited-builder/app/services"
	"github.com/juicebox-at/limited-builder/config"
	"github.com/juicebox-at/limited-builder/models"
	"github.com/juicebox-at/limited-builder/repository"
	"github.com/juicebox-at/limited-builder/utils"
)

func TestValidateCreationName(t *testing.T) {
	valid := []string{
		"Sommer Traum",
		"Süße Überraschung",
		"Mix-123",
		"abc",
		"  Beeren Blitz  ", // trimmed before length check
	}
	for _, name := range valid {
		assert.NoError(t, ValidateCreationName(name), "expected %q to be valid", name)
	}

	invalid := []string{
		"",
		"ab",
		"   ab   ",
		strings.Repeat("a", 31),
		"Mix! With? Symbols",
		"emoji 🧃 name",
	}
	for _, name := range invalid {
		assert.ErrorIs(t, ValidateCreationName(name), ErrNameInvalid, "expected %q to be invalid", name)
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Run("IncludesColorGarnishAndName", func(t *testing.T) {
		c := &models.Creation{
			Name:           "Beeren Blitz",
			PrimaryFlavors: []string{"erdbeere", "minze"},
			BaseType:       models.BaseTypeNormal,
			Variant:        models.VariantOriginal,
		}

		prompt := buildPrompt(c)
		assert.Contains(t, prompt, `"Beeren Blitz" Limited Edition`)
		assert.Contains(t, prompt, "vibrant red")
		assert.Contains(t, prompt, "fresh strawberry slices, fresh mint leaves")
		assert.Contains(t, prompt, "Classic Original")
		assert.NotContains(t, prompt, "accent")
	})

	t.Run("AccentAndVariantText", func(t *testing.T) {
		accent := models.AccentEistee
		c := &models.Creation{
			Name:           "Pfirsich Frost",
			PrimaryFlavors: []string{"pfirsich"},
			Accent:         &accent,
			BaseType:       models.BaseTypeEistee,
			Variant:        models.VariantLight,
		}

		prompt := buildPrompt(c)
		assert.Contains(t, prompt, "with eistee accent")
		assert.Contains(t, prompt, "Iced Tea Light")
		assert.Contains(t, prompt, "peachy orange")
	})

	t.Run("UnknownFlavorFallsBack", func(t *testing.T) {
		c := &models.Creation{
			Name:           "Mystery Mix",
			PrimaryFlavors: []string{"vanille"},
		}

		prompt := buildPrompt(c)
		assert.Contains(t, prompt, "creamy vanilla")
		// vanille has no dedicated garnish; the id itself is used
		assert.Contains(t, prompt, "Floating garnishes: vanille")
	})
}

func TestReencodeJPEG(t *testing.T) {
	t.Run("SmallImagePassesThrough", func(t *testing.T) {
		data := []byte("tiny")
		assert.Equal(t, data, reencodeJPEG(data))
	})

	t.Run("UndecodableDataPassesThrough", func(t *testing.T) {
		data := bytes.Repeat([]byte{0xde, 0xad}, utils.ImageTargetBytes)
		assert.Equal(t, data, reencodeJPEG(data))
	})

	t.Run("LargeImageShrinks", func(t *testing.T) {
		// A large noisy PNG compresses poorly, so it exceeds the target and
		// gets downscaled and re-encoded as JPEG.
		rng := rand.New(rand.NewSource(42))
		src := image.NewRGBA(image.Rect(0, 0, 2048, 1536))
		for y := 0; y < 1536; y++ {
			for x := 0; x < 2048; x++ {
				src.Set(x, y, color.RGBA{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)), 255})
			}
		}
		buf := &bytes.Buffer{}
		require.NoError(t, png.Encode(buf, src))
		require.Greater(t, buf.Len(), utils.ImageTargetBytes)

		out := reencodeJPEG(buf.Bytes())
		assert.Less(t, len(out), buf.Len())

		decoded, format, err := image.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, "jpeg", format)
		assert.LessOrEqual(t, decoded.Bounds().Dx(), utils.ImageMaxDimension)
		assert.LessOrEqual(t, decoded.Bounds().Dy(), utils.ImageMaxDimension)
	})
}

func TestDownscale(t *testing.T) {
	t.Run("KeepsSmallImages", func(t *testing.T) {
		src := image.NewRGBA(image.Rect(0, 0, 400, 300))
		assert.Equal(t, src.Bounds(), downscale(src, 1024).Bounds())
	})

	t.Run("PreservesAspectRatio", func(t *testing.T) {
		src := image.NewRGBA(image.Rect(0, 0, 2048, 1024))
		out := downscale(src, 1024)
		assert.Equal(t, 1024, out.Bounds().Dx())
		assert.Equal(t, 512, out.Bounds().Dy())
	})

	t.Run("PortraitOrientation", func(t *testing.T) {
		src := image.NewRGBA(image.Rect(0, 0, 1024, 2048))
		out := downscale(src, 1024)
		assert.Equal(t, 512, out.Bounds().Dx())
		assert.Equal(t, 1024, out.Bounds().Dy())
	})
}

// imageRepoStub records every image URL the flow persists.
type imageRepoStub struct {
	repository.CreationRepository
	saved []string
}

func (r *imageRepoStub) UpdateImageURL(ctx context.Context, id uint, imageURL *string) error {
	if imageURL != nil {
		r.saved = append(r.saved, *imageURL)
	}
	return nil
}

func newImageFlowUnderTest(gen *services.MockImageGenService, store *services.MockStorageService, inlineCeiling int) (ImageFlow, *imageRepoStub) {
	repo := &imageRepoStub{}
	flow := NewImageFlow(repo, gen, store,
		&config.ImageGenConfig{Timeout: 5 * time.Second},
		&config.StorageConfig{InlineCeiling: inlineCeiling},
	)
	return flow, repo
}

func smallPNGDataURI(t *testing.T) string {
	t.Helper()
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestGenerateForCreation(t *testing.T) {
	creation := &models.Creation{
		ID:             7,
		Name:           "Beeren Blitz",
		PrimaryFlavors: []string{"erdbeere"},
	}

	t.Run("GenerationFailureDowngradesToWarning", func(t *testing.T) {
		gen := &services.MockImageGenService{Err: errors.New("upstream down")}
		store := &services.MockStorageService{}
		flow, repo := newImageFlowUnderTest(gen, store, 1<<20)

		resp, err := flow.GenerateForCreation(context.Background(), creation)
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Nil(t, resp.ImageURL)
		assert.Equal(t, "image generation failed", resp.Warning)
		assert.Empty(t, repo.saved)
		assert.Empty(t, store.Uploads)
	})

	t.Run("UploadSuccessPersistsPublicURL", func(t *testing.T) {
		gen := &services.MockImageGenService{Result: smallPNGDataURI(t)}
		store := &services.MockStorageService{}
		flow, repo := newImageFlowUnderTest(gen, store, 1<<20)

		resp, err := flow.GenerateForCreation(context.Background(), creation)
		require.NoError(t, err)
		assert.True(t, resp.Success)
		require.NotNil(t, resp.ImageURL)
		assert.True(t, strings.HasPrefix(*resp.ImageURL, "https://storage.example.com/beeren-blitz-"))
		assert.Empty(t, resp.Warning)
		assert.Equal(t, []string{*resp.ImageURL}, repo.saved)
		assert.Equal(t, "image/jpeg", store.LastType)
	})

	t.Run("UploadFailureFallsBackToInlineURI", func(t *testing.T) {
		gen := &services.MockImageGenService{Result: smallPNGDataURI(t)}
		store := &services.MockStorageService{Err: errors.New("bucket unreachable")}
		flow, repo := newImageFlowUnderTest(gen, store, 1<<20)

		resp, err := flow.GenerateForCreation(context.Background(), creation)
		require.NoError(t, err)
		assert.True(t, resp.Success)
		require.NotNil(t, resp.ImageURL)
		assert.True(t, strings.HasPrefix(*resp.ImageURL, "data:image/jpeg;base64,"))
		assert.Equal(t, "image stored inline; upload unavailable", resp.Warning)
		assert.Equal(t, []string{*resp.ImageURL}, repo.saved)
	})

	t.Run("UploadFailureAboveCeilingReturnsNullImage", func(t *testing.T) {
		gen := &services.MockImageGenService{Result: smallPNGDataURI(t)}
		store := &services.MockStorageService{Err: errors.New("bucket unreachable")}
		flow, repo := newImageFlowUnderTest(gen, store, 8)

		resp, err := flow.GenerateForCreation(context.Background(), creation)
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Nil(t, resp.ImageURL)
		assert.Equal(t, "image upload failed and result too large to inline", resp.Warning)
		assert.Empty(t, repo.saved)
	})

	t.Run("UnusableResultDowngradesToWarning", func(t *testing.T) {
		gen := &services.MockImageGenService{Result: "data:image/png;base64,%%%not-base64"}
		store := &services.MockStorageService{}
		flow, repo := newImageFlowUnderTest(gen, store, 1<<20)

		resp, err := flow.GenerateForCreation(context.Background(), creation)
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Nil(t, resp.ImageURL)
		assert.Equal(t, "no usable image in generation response", resp.Warning)
		assert.Empty(t, repo.saved)
	})
}
