package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateOTPFormat(t *testing.T) {
	otp := GenerateOTP("ama@example.com-20260310120000")
	assert.Len(t, otp, 4)
	for _, ch := range otp {
		assert.True(t, ch >= '0' && ch <= '9')
	}
}

func TestGenerateOTPDeterministic(t *testing.T) {
	key := "kofi@example.com-20260310120000"
	assert.Equal(t, GenerateOTP(key), GenerateOTP(key))
}

func TestGenerateOTPVariesWithKey(t *testing.T) {
	a := GenerateOTP("ama@example.com-20260310120000")
	b := GenerateOTP("ama@example.com-20260310120001")
	assert.NotEqual(t, a, b)
}
