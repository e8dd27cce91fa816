package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKeyFromURL(t *testing.T) {
	key := objectKeyFromURL("https://campusfit-media.s3.eu-west-1.amazonaws.com/equipment/1712345.jpg")
	assert.Equal(t, "equipment/1712345.jpg", key)

	assert.Equal(t, "", objectKeyFromURL("://not a url"))
}

func TestLocalPathFromURL(t *testing.T) {
	relative := localPathFromURL("http://localhost:8080/uploads/equipment/1712345.jpg")
	assert.Equal(t, "equipment/1712345.jpg", relative)

	// Bare relative paths, as stored before GetImageURL resolution.
	assert.Equal(t, "equipment/1712345.jpg", localPathFromURL("equipment/1712345.jpg"))

	// Anything outside the uploads tree is refused rather than guessed at.
	assert.Equal(t, "", localPathFromURL("http://localhost:8080/api/equipment/3"))
}

func TestGetImageURL(t *testing.T) {
	baseURL = "http://localhost:8080"

	assert.Equal(t, "http://localhost:8080/uploads/equipment/1.png", GetImageURL("equipment/1.png"))

	// Absolute URLs (S3 uploads) pass through untouched.
	s3URL := "https://campusfit-media.s3.eu-west-1.amazonaws.com/equipment/1.png"
	assert.Equal(t, s3URL, GetImageURL(s3URL))

	assert.Equal(t, "", GetImageURL(""))
}
