package uploads

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"

	"Backend-Feedback-Portal/src/utils"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxIDCardWidth is the width ID cards are downscaled to before storage and OCR.
const MaxIDCardWidth = 1600

// StoredImage is a normalised JPEG written under the upload dir.
type StoredImage struct {
	Path string
	Name string
	Data []byte
}

type Service struct {
	dir      string
	maxBytes int64
}

func NewService(dir string, maxBytes int64) *Service {
	return &Service{dir: dir, maxBytes: maxBytes}
}

// SaveIDCard อ่านไฟล์บัตรจาก multipart แล้วส่งต่อให้ StoreIDCard
func (s *Service) SaveIDCard(fh *multipart.FileHeader) (*StoredImage, error) {
	if fh == nil {
		return nil, utils.NewValidationError("ID card image is required")
	}
	if fh.Size > s.maxBytes {
		return nil, s.tooLarge()
	}

	src, err := fh.Open()
	if err != nil {
		return nil, utils.NewValidationError("Failed to read ID card: %v", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, s.maxBytes+1))
	if err != nil {
		return nil, utils.NewValidationError("Failed to read ID card: %v", err)
	}
	return s.StoreIDCard(data)
}

// StoreIDCard checks size and content type, fixes EXIF orientation,
// downscales wide images and writes the result as JPEG.
func (s *Service) StoreIDCard(data []byte) (*StoredImage, error) {
	if int64(len(data)) > s.maxBytes {
		return nil, s.tooLarge()
	}
	if len(data) == 0 {
		return nil, utils.NewValidationError("ID card image is required")
	}

	mt := mimetype.Detect(data)
	if !mt.Is("image/jpeg") && !mt.Is("image/png") {
		return nil, utils.NewValidationError("ID card must be a JPEG or PNG image, got %s", mt.String())
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, utils.NewValidationError("ID card image could not be decoded")
	}
	img = fitWidth(img, MaxIDCardWidth)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, err
	}
	name := uuid.NewString() + ".jpg"
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return nil, err
	}

	log.Printf("📥 ID card stored: %s (%d bytes)", name, buf.Len())
	return &StoredImage{Path: path, Name: name, Data: buf.Bytes()}, nil
}

// Remove ลบไฟล์ที่บันทึกไว้ เมื่อขั้นตอนถัดไปล้มเหลว
func (s *Service) Remove(img *StoredImage) {
	if img == nil {
		return
	}
	if err := os.Remove(img.Path); err != nil {
		log.Println("Failed to remove uploaded file:", err)
	}
}

func (s *Service) tooLarge() error {
	return utils.NewValidationError("ID card image must be at most %s", humanBytes(s.maxBytes))
}

func fitWidth(img image.Image, maxWidth int) image.Image {
	if img.Bounds().Dx() <= maxWidth {
		return img
	}
	return imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
}

func humanBytes(n int64) string {
	const mb = 1 << 20
	if n >= mb && n%mb == 0 {
		return fmt.Sprintf("%d MB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}
