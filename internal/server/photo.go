package server

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"log"
	"mime/multipart"

	"homestead/internal/models"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	maxPhotoBytes  = 10 * 1024 * 1024
	maxPhotoWidth  = 1920
	maxPhotoHeight = 1920
	webpQuality    = 82
)

// storePhoto decodes an uploaded image, downscales it to fit the size
// cap, re-encodes it as WebP and stores it under a fresh key.
func (s *Server) storePhoto(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if s.photos == nil {
		return "", models.NewInternalError(fmt.Errorf("photo store not configured"))
	}
	if file.Size > maxPhotoBytes {
		return "", models.NewValidationError("Photo too large (max 10 MB)")
	}

	f, err := file.Open()
	if err != nil {
		return "", models.NewInternalError(err)
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, maxPhotoBytes+1))
	if err != nil {
		return "", models.NewInternalError(err)
	}
	if int64(len(raw)) > maxPhotoBytes {
		return "", models.NewValidationError("Photo too large (max 10 MB)")
	}

	decoded, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", models.NewValidationError("Unsupported or corrupt image")
	}

	resized := resizeToFit(decoded, maxPhotoWidth, maxPhotoHeight)

	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, resized, &webp.Options{Quality: webpQuality}); err != nil {
		return "", models.NewInternalError(err)
	}

	key := fmt.Sprintf("listings/%s.webp", uuid.New().String())
	if err := s.photos.Put(ctx, key, "image/webp", buf.Bytes()); err != nil {
		return "", models.NewInternalError(err)
	}
	return key, nil
}

// discardPhotos removes blobs stored for a request whose mutation did
// not go through, so a failed upload leaves nothing behind.
func (s *Server) discardPhotos(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.photos.Delete(ctx, key); err != nil {
			log.Printf("WARNING: could not remove orphaned photo %s: %v", key, err)
		}
	}
}

// resizeToFit scales src down (never up) so it fits within the given
// bounds, preserving aspect ratio.
func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}

	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}
