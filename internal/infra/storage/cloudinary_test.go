package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForceHTTPS(t *testing.T) {
	assert.Equal(t, "https://res.cloudinary.com/a.pdf", forceHTTPS("http://res.cloudinary.com/a.pdf"))
	assert.Equal(t, "https://res.cloudinary.com/a.pdf", forceHTTPS("https://res.cloudinary.com/a.pdf"))
}

func TestNewCloudinaryStorageRequiresURL(t *testing.T) {
	_, err := NewCloudinaryStorage("")
	assert.Error(t, err)
}
