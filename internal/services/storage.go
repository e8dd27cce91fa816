package services

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// Equipment photos are the only uploads the backend accepts, so the
// content-type allowlist stays deliberately small.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

var (
	s3Client  *s3.S3
	uploader  *s3manager.Uploader
	useS3     bool
	baseURL   string
	uploadDir string
)

// InitStorage picks S3 when AWS credentials are present, otherwise a
// local uploads directory served by the API itself.
func InitStorage() error {
	awsRegion := os.Getenv("AWS_REGION")
	awsAccessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	awsSecretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")

	if awsRegion != "" && awsAccessKey != "" && awsSecretKey != "" {
		sess, err := session.NewSession(&aws.Config{
			Region:      aws.String(awsRegion),
			Credentials: credentials.NewStaticCredentials(awsAccessKey, awsSecretKey, ""),
		})
		if err != nil {
			return fmt.Errorf("failed to create AWS session: %v", err)
		}

		s3Client = s3.New(sess)
		uploader = s3manager.NewUploader(sess)
		useS3 = true

		log.Println("S3 storage initialized")
		return nil
	}

	useS3 = false
	uploadDir = os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "/app/uploads"
	}
	baseURL = os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	if err := os.MkdirAll(filepath.Join(uploadDir, "equipment"), 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %v", err)
	}

	log.Println("S3 not configured, storing equipment photos on local disk")
	return nil
}

// UploadImage stores an equipment photo and returns either a public S3
// URL or a path relative to the uploads directory.
func UploadImage(file *multipart.FileHeader, folder string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %v", err)
	}
	defer src.Close()

	buffer := bytes.NewBuffer(nil)
	if _, err := io.Copy(buffer, src); err != nil {
		return "", fmt.Errorf("failed to read upload: %v", err)
	}

	contentType := http.DetectContentType(buffer.Bytes())
	if !allowedImageTypes[contentType] {
		return "", fmt.Errorf("unsupported image type %s", contentType)
	}

	fileName := fmt.Sprintf("%d%s", time.Now().UnixNano(), filepath.Ext(file.Filename))

	if useS3 {
		return uploadToS3(buffer.Bytes(), folder+"/"+fileName, contentType)
	}
	return uploadLocally(buffer.Bytes(), folder, fileName)
}

func uploadToS3(data []byte, key, contentType string) (string, error) {
	bucketName := os.Getenv("AWS_S3_BUCKET")
	if bucketName == "" {
		return "", fmt.Errorf("S3 bucket name not configured")
	}

	_, err := uploader.Upload(&s3manager.UploadInput{
		Bucket:      aws.String(bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %v", err)
	}

	// Bucket policy grants public read, so the virtual-hosted URL works as-is.
	awsRegion := os.Getenv("AWS_REGION")
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucketName, awsRegion, key), nil
}

func uploadLocally(data []byte, folder, fileName string) (string, error) {
	folderPath := filepath.Join(uploadDir, folder)
	if err := os.MkdirAll(folderPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create folder directory: %v", err)
	}

	if err := os.WriteFile(filepath.Join(folderPath, fileName), data, 0644); err != nil {
		return "", fmt.Errorf("failed to save file: %v", err)
	}

	// Handlers turn this into a full URL through GetImageURL.
	return filepath.Join(folder, fileName), nil
}

// GetImageURL resolves a stored image reference to a public URL. S3
// references are already absolute; local ones get the base URL prefixed.
func GetImageURL(imagePath string) string {
	if imagePath == "" || strings.HasPrefix(imagePath, "http") {
		return imagePath
	}
	return fmt.Sprintf("%s/uploads/%s", baseURL, filepath.ToSlash(imagePath))
}

// DeleteImage removes a stored equipment photo. Used when a photo is
// replaced or its equipment type is deleted.
func DeleteImage(imageURL string) error {
	if imageURL == "" {
		return nil
	}
	if useS3 {
		return deleteFromS3(imageURL)
	}
	return deleteLocally(imageURL)
}

func deleteFromS3(fileURL string) error {
	if s3Client == nil {
		return fmt.Errorf("S3 client not initialized")
	}

	bucketName := os.Getenv("AWS_S3_BUCKET")
	if bucketName == "" {
		return fmt.Errorf("S3 bucket name not configured")
	}

	key := objectKeyFromURL(fileURL)
	if key == "" {
		return fmt.Errorf("cannot derive S3 key from %s", fileURL)
	}

	_, err := s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(key),
	})
	return err
}

func deleteLocally(imageURL string) error {
	relative := localPathFromURL(imageURL)
	if relative == "" {
		return nil
	}

	err := os.Remove(filepath.Join(uploadDir, filepath.FromSlash(relative)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// objectKeyFromURL extracts the object key from a virtual-hosted S3 URL,
// e.g. https://bucket.s3.region.amazonaws.com/equipment/123.jpg -> equipment/123.jpg.
func objectKeyFromURL(fileURL string) string {
	parsed, err := url.Parse(fileURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Path, "/")
}

// localPathFromURL extracts the path under the uploads directory from a
// locally served image URL, e.g.
// http://localhost:8080/uploads/equipment/123.jpg -> equipment/123.jpg.
func localPathFromURL(imageURL string) string {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return ""
	}
	path := parsed.Path
	if idx := strings.Index(path, "/uploads/"); idx >= 0 {
		return path[idx+len("/uploads/"):]
	}
	// Bare relative paths (what uploadLocally returns) pass through.
	if !strings.HasPrefix(path, "/") && path != "" {
		return path
	}
	return ""
}

// IsUsingS3 reports whether uploads go to S3 rather than local disk.
func IsUsingS3() bool {
	return useS3
}
