package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhone(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"919812345678", "9812345678", false},
		{"+91 98123 45678", "9812345678", false},
		{"9812345678", "9812345678", false},
		{"+91-7012345678", "7012345678", false},
		{"1234567890", "1234567890", true},
		{"98123", "98123", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.input))
			err := Phone(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEmail(t *testing.T) {
	assert.NoError(t, Email("sales@shilpgroup.com"))
	assert.Error(t, Email(""))
	assert.Error(t, Email("not-an-email"))
	assert.Error(t, Email("a@b"))
}

func TestPercentage(t *testing.T) {
	assert.NoError(t, Percentage(0))
	assert.NoError(t, Percentage(100))
	assert.Error(t, Percentage(-1))
	assert.Error(t, Percentage(101))
}

func TestFileSize(t *testing.T) {
	assert.NoError(t, FileSize(1, 10))
	assert.NoError(t, FileSize(10, 10))
	assert.Error(t, FileSize(11, 10))
	assert.Error(t, FileSize(0, 10))
}

func TestUpload(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		kind        MediaKind
		wantErr     bool
	}{
		{"pdf brochure", "brochure.pdf", "application/pdf", MediaPDF, false},
		{"image as brochure", "brochure.png", "image/png", MediaPDF, true},
		{"pdf with wrong ext", "brochure.doc", "application/pdf", MediaPDF, true},
		{"jpeg", "Card.JPG", "image/jpeg", MediaImage, false},
		{"svg icon", "pool.svg", "image/svg+xml", MediaImage, false},
		{"content type params", "a.png", "image/png; charset=binary", MediaImage, false},
		{"pdf as image", "plan.pdf", "application/pdf", MediaImage, true},
		{"image mime with exe", "evil.exe", "image/png", MediaImage, true},
		{"bad content type", "a.png", "", MediaImage, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Upload(tt.filename, tt.contentType, tt.kind)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRelativePath(t *testing.T) {
	assert.NoError(t, RelativePath("projects/lakeview/card_1_abc123.png"))
	assert.Error(t, RelativePath(""))
	assert.Error(t, RelativePath("/etc/passwd"))
	assert.Error(t, RelativePath("projects/../../etc/passwd"))
	assert.Error(t, RelativePath("projects//x.png"))
	assert.Error(t, RelativePath(`projects\x.png`))
}
