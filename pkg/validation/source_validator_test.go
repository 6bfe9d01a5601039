package validation

import (
	"errors"
	"testing"

	apperrors "go-cvd-inspector/internal/errors"
)

func TestClassify(t *testing.T) {
	validator := NewSourceValidator()

	tests := []struct {
		source string
		want   SourceKind
	}{
		{"image.png", SourceLocal},
		{"./testdata/photo.jpg", SourceLocal},
		{"/tmp/chart.png", SourceLocal},
		{"file:///tmp/chart.png", SourceLocal},
		{"http://example.com/image.jpg", SourceHTTP},
		{"https://subdomain.example.com/path/to/image.gif", SourceHTTP},
		{"http://192.168.1.1/image.jpg", SourceHTTP},
		{"https://acct.blob.core.windows.net/images/chart.png", SourceAzureBlob},
		{"shots:1.png", SourceLocal},
		{"data:image/png;base64,iVBORw0KGgo=", SourceLocal},
		{"", SourceLocal},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got, err := validator.Classify(tt.source)
			if err != nil {
				t.Fatalf("Expected %s to be valid, got error: %v", tt.source, err)
			}
			if got != tt.want {
				t.Errorf("Expected kind %s, got %s", tt.want, got)
			}
		})
	}
}

func TestClassify_Invalid(t *testing.T) {
	validator := NewSourceValidatorWithOptions([]string{"http", "https"}, nil, false)

	tests := []struct {
		source  string
		message string
	}{
		{"", "image source cannot be empty"},
		{"   ", "image source cannot be empty"},
		{"ftp://example.com/image.jpg", "URL scheme not allowed"},
		{"data:image/png;base64,iVBORw0KGgo=", "URL scheme not allowed"},
		{"shots:1.png", "URL scheme not allowed"},
		{"http://", "URL must have a valid host"},
		{"https:///path", "URL must have a valid host"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			_, err := validator.Classify(tt.source)
			if err == nil {
				t.Fatalf("Expected %q to fail validation", tt.source)
			}
			var appErr *apperrors.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("Expected AppError, got %T", err)
			}
			if appErr.Message != tt.message {
				t.Errorf("Expected %q, got %q", tt.message, appErr.Message)
			}
			if appErr.Type != apperrors.ErrorTypeValidation {
				t.Errorf("Expected validation type, got %s", appErr.Type)
			}
		})
	}
}

func TestClassify_LocalModeKeepsURLRules(t *testing.T) {
	validator := NewSourceValidator()

	for _, source := range []string{"ftp://example.com/image.jpg", "http://"} {
		if _, err := validator.Classify(source); err == nil {
			t.Errorf("Expected %q to fail validation with local files allowed", source)
		}
	}
}

func TestNewSourceValidatorWithOptions(t *testing.T) {
	validator := NewSourceValidatorWithOptions([]string{"https"}, []string{"example.com"}, false)

	if _, err := validator.Classify("https://example.com/a.png"); err != nil {
		t.Errorf("Expected allowed host to pass, got %v", err)
	}
	if _, err := validator.Classify("http://example.com/a.png"); err == nil {
		t.Error("Expected http to be rejected")
	}
	if _, err := validator.Classify("https://other.com/a.png"); err == nil {
		t.Error("Expected other host to be rejected")
	}
	if _, err := validator.Classify("/etc/passwd"); err == nil {
		t.Error("Expected local path to be rejected")
	}
	if err := validator.ValidateSource("https://example.com/a.png"); err != nil {
		t.Errorf("Expected ValidateSource to pass, got %v", err)
	}
}

func TestLocalPath(t *testing.T) {
	if got := LocalPath("file:///tmp/a.png"); got != "/tmp/a.png" {
		t.Errorf("Expected /tmp/a.png, got %s", got)
	}
	if got := LocalPath(" photo.jpg "); got != "photo.jpg" {
		t.Errorf("Expected photo.jpg, got %s", got)
	}
}
