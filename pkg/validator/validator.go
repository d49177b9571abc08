package validator

import (
	"fmt"
	"mime"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	minEmailLength    = 3
	maxEmailLength    = 255
	maxFileNameLen    = 255
	maxContentTypeLen = 255
	maxPathLen        = 1024
	phoneDigits       = 10
	minPercentage     = 0
	maxPercentage     = 100
	asciiControlStart = 32
	asciiDelete       = 127

	errEmailEmptyFmt           = "email cannot be empty"
	errEmailLengthFmt          = "email must be between %d and %d characters"
	errEmailInvalidFmt         = "invalid email format"
	errPhoneEmptyFmt           = "phone number cannot be empty"
	errPhoneInvalidFmt         = "phone number must be a 10-digit mobile number starting with 6-9"
	errPercentageRangeFmt      = "percentage must be between %d and %d"
	errFileNameEmptyFmt        = "file name cannot be empty"
	errFileNameMaxLengthFmt    = "file name must not exceed %d characters"
	errFileNameControlCharsFmt = "file name cannot contain control characters"
	errContentTypeMaxLengthFmt = "content type must not exceed %d characters"
	errContentTypeInvalidFmt   = "invalid content type"
	errFileSizeEmptyFmt        = "file is empty"
	errFileSizeMaxFmt          = "file size exceeds maximum of %d bytes"
	errPDFOnlyFmt              = "only PDF files are allowed"
	errImageOnlyFmt            = "only image files are allowed"
	errExtensionMismatchFmt    = "file extension %q does not match content type %q"
	errPathEmptyFmt            = "path cannot be empty"
	errPathMaxLengthFmt        = "path must not exceed %d characters"
	errPathAbsoluteFmt         = "path must be relative"
	errPathBackslashFmt        = "path cannot contain backslashes"
	errPathEmptySegFmt         = "path contains empty segment"
	errPathTraversalFmt        = "path cannot contain path traversal"
	errPathControlCharsFmt     = "path cannot contain control characters"

	mimePDF         = "application/pdf"
	mimeImagePrefix = "image/"
)

// MediaKind is the family of files a form slot accepts.
type MediaKind int

const (
	MediaImage MediaKind = iota + 1
	MediaPDF
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^[6-9]\d{9}$`)
	nonDigit   = regexp.MustCompile(`\D`)

	imageExtensions = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".gif":  true,
		".webp": true,
		".svg":  true,
		".avif": true,
	}
)

func Email(email string) error {
	if email == "" {
		return fmt.Errorf(errEmailEmptyFmt)
	}

	if len(email) < minEmailLength || len(email) > maxEmailLength {
		return fmt.Errorf(errEmailLengthFmt, minEmailLength, maxEmailLength)
	}

	if !emailRegex.MatchString(email) {
		return fmt.Errorf(errEmailInvalidFmt)
	}

	return nil
}

// NormalizePhone strips every non-digit and keeps the trailing ten digits, so
// "+91 98123 45678" and "919812345678" both become "9812345678".
func NormalizePhone(phone string) string {
	digits := nonDigit.ReplaceAllString(phone, "")
	if len(digits) > phoneDigits {
		digits = digits[len(digits)-phoneDigits:]
	}
	return digits
}

func Phone(phone string) error {
	if strings.TrimSpace(phone) == "" {
		return fmt.Errorf(errPhoneEmptyFmt)
	}

	if !phoneRegex.MatchString(NormalizePhone(phone)) {
		return fmt.Errorf(errPhoneInvalidFmt)
	}

	return nil
}

func Percentage(value int) error {
	if value < minPercentage || value > maxPercentage {
		return fmt.Errorf(errPercentageRangeFmt, minPercentage, maxPercentage)
	}
	return nil
}

func FileName(name string) error {
	if name == "" {
		return fmt.Errorf(errFileNameEmptyFmt)
	}

	if len(name) > maxFileNameLen {
		return fmt.Errorf(errFileNameMaxLengthFmt, maxFileNameLen)
	}

	for _, char := range name {
		if char < asciiControlStart || char == asciiDelete {
			return fmt.Errorf(errFileNameControlCharsFmt)
		}
	}

	return nil
}

func FileSize(size, max int64) error {
	if size <= 0 {
		return fmt.Errorf(errFileSizeEmptyFmt)
	}

	if size > max {
		return fmt.Errorf(errFileSizeMaxFmt, max)
	}

	return nil
}

// MediaType returns the lowercased base media type without parameters.
func MediaType(contentType string) (string, error) {
	if len(contentType) > maxContentTypeLen {
		return "", fmt.Errorf(errContentTypeMaxLengthFmt, maxContentTypeLen)
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf(errContentTypeInvalidFmt)
	}

	return strings.ToLower(mediaType), nil
}

// Upload checks that a file's declared content type belongs to kind and that
// its extension agrees with it.
func Upload(filename, contentType string, kind MediaKind) error {
	if err := FileName(filename); err != nil {
		return err
	}

	mediaType, err := MediaType(contentType)
	if err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(filename))

	switch kind {
	case MediaPDF:
		if mediaType != mimePDF {
			return fmt.Errorf(errPDFOnlyFmt)
		}
		if ext != ".pdf" {
			return fmt.Errorf(errExtensionMismatchFmt, ext, mediaType)
		}
	default:
		if !strings.HasPrefix(mediaType, mimeImagePrefix) {
			return fmt.Errorf(errImageOnlyFmt)
		}
		if !imageExtensions[ext] {
			return fmt.Errorf(errExtensionMismatchFmt, ext, mediaType)
		}
	}

	return nil
}

// RelativePath accepts slash-separated paths that stay inside their root.
func RelativePath(path string) error {
	if path == "" {
		return fmt.Errorf(errPathEmptyFmt)
	}

	if len(path) > maxPathLen {
		return fmt.Errorf(errPathMaxLengthFmt, maxPathLen)
	}

	if strings.HasPrefix(path, "/") || filepath.IsAbs(path) {
		return fmt.Errorf(errPathAbsoluteFmt)
	}

	if strings.Contains(path, "\\") {
		return fmt.Errorf(errPathBackslashFmt)
	}

	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			return fmt.Errorf(errPathEmptySegFmt)
		}
		if seg == ".." || seg == "." {
			return fmt.Errorf(errPathTraversalFmt)
		}
		for _, char := range seg {
			if char < asciiControlStart || char == asciiDelete {
				return fmt.Errorf(errPathControlCharsFmt)
			}
		}
	}

	return nil
}
