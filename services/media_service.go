package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	fig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/chatlyhq/chatly/config"
	"github.com/chatlyhq/chatly/models"
)

// MediaService stores uploaded files in object storage and resolves stored
// paths into public URLs.
type MediaService interface {
	UploadChatFile(fileHeader *multipart.FileHeader, category string) (string, error)
	UploadProfileImage(fileHeader *multipart.FileHeader) (string, error)
	FileURL(path string) string
}

type mediaService struct {
	Config *config.Config
}

func NewMediaService(conf *config.Config) MediaService {
	return &mediaService{Config: conf}
}

func generateUniqueFilename(extension string) string {
	timestamp := time.Now().UnixNano()
	return fmt.Sprintf("%d_%s%s", timestamp, uuid.New(), extension)
}

// UploadChatFile stores a message attachment under messages/<category>s/ and
// returns the object key. For images a small thumbnail is stored alongside.
func (m *mediaService) UploadChatFile(fileHeader *multipart.FileHeader, category string) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %v", err)
	}
	defer file.Close()

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(file); err != nil {
		return "", fmt.Errorf("failed to read file: %v", err)
	}
	fileBytes := buf.Bytes()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mimetype.Detect(fileBytes).String()
	}

	ext := filepath.Ext(fileHeader.Filename)
	fileKey := fmt.Sprintf("messages/%ss/%s", category, generateUniqueFilename(ext))

	svc, err := m.s3Client()
	if err != nil {
		return "", err
	}

	if err := m.putObject(svc, fileKey, fileBytes, contentType); err != nil {
		return "", err
	}

	if category == models.MessageTypeImage {
		if err := m.uploadThumbnail(svc, fileKey, fileBytes); err != nil {
			// the original upload stands; a missing thumbnail is cosmetic
			log.Printf("thumbnail generation failed for %s: %v", fileKey, err)
		}
	}

	return fileKey, nil
}

func (m *mediaService) UploadProfileImage(fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %v", err)
	}
	defer file.Close()

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(file); err != nil {
		return "", fmt.Errorf("failed to read file: %v", err)
	}

	mtype := mimetype.Detect(buf.Bytes())
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("profile picture must be an image, got %s", mtype)
	}

	fileKey := fmt.Sprintf("profiles/%s", generateUniqueFilename(filepath.Ext(fileHeader.Filename)))

	svc, err := m.s3Client()
	if err != nil {
		return "", err
	}
	if err := m.putObject(svc, fileKey, buf.Bytes(), mtype.String()); err != nil {
		return "", err
	}
	return fileKey, nil
}

func (m *mediaService) FileURL(path string) string {
	if path == "" {
		return ""
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", m.Config.AwsBucket, m.Config.AwsRegion, path)
}

func (m *mediaService) uploadThumbnail(svc *s3.Client, fileKey string, fileBytes []byte) error {
	img, err := imaging.Decode(bytes.NewReader(fileBytes))
	if err != nil {
		return fmt.Errorf("could not decode image: %v", err)
	}
	thumb := imaging.Thumbnail(img, 200, 200, imaging.Lanczos)

	out := new(bytes.Buffer)
	if err := imaging.Encode(out, thumb, imaging.JPEG); err != nil {
		return fmt.Errorf("could not encode thumbnail: %v", err)
	}

	thumbKey := strings.TrimSuffix(fileKey, filepath.Ext(fileKey)) + "_thumb.jpg"
	return m.putObject(svc, thumbKey, out.Bytes(), "image/jpeg")
}

func (m *mediaService) s3Client() (*s3.Client, error) {
	if m.Config.AwsBucket == "" {
		return nil, fmt.Errorf("S3 bucket name is not configured")
	}
	cfg, err := fig.LoadDefaultConfig(context.TODO(),
		fig.WithRegion(m.Config.AwsRegion),
		fig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(m.Config.AwsAccessKeyID, m.Config.AwsSecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %v", err)
	}
	return s3.NewFromConfig(cfg), nil
}

func (m *mediaService) putObject(svc *s3.Client, key string, body []byte, contentType string) error {
	_, err := svc.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(m.Config.AwsBucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ACL:         "public-read",
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload file to S3: %v", err)
	}
	return nil
}
