package validation

import (
	"net/url"
	"path/filepath"
	"strings"

	apperrors "go-cvd-inspector/internal/errors"
)

// SourceKind tells the repository which fetcher serves a source
type SourceKind string

const (
	SourceLocal     SourceKind = "local"
	SourceHTTP      SourceKind = "http"
	SourceAzureBlob SourceKind = "azure"
)

const azureBlobSuffix = ".blob.core.windows.net"

// SourceValidator classifies and validates image sources: file paths,
// http(s) URLs and Azure blob URLs
type SourceValidator struct {
	allowedSchemes []string
	allowedHosts   []string
	allowLocal     bool
}

// NewSourceValidator creates a validator accepting local files and any http(s) host
func NewSourceValidator() *SourceValidator {
	return &SourceValidator{
		allowedSchemes: []string{"http", "https"},
		allowedHosts:   []string{}, // empty means all hosts allowed
		allowLocal:     true,
	}
}

// NewSourceValidatorWithOptions creates a validator with custom rules. The
// HTTP API uses it to refuse local paths.
func NewSourceValidatorWithOptions(schemes []string, hosts []string, allowLocal bool) *SourceValidator {
	return &SourceValidator{
		allowedSchemes: schemes,
		allowedHosts:   hosts,
		allowLocal:     allowLocal,
	}
}

// Classify validates source and reports which kind of fetcher serves it
func (v *SourceValidator) Classify(source string) (SourceKind, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		// with local files allowed an empty path simply fails to open
		if v.allowLocal {
			return SourceLocal, nil
		}
		return "", apperrors.NewValidationError("image source cannot be empty", nil)
	}

	parsed, err := url.Parse(source)
	// no scheme, or a Windows drive letter, means a plain path
	if err != nil || parsed.Scheme == "" || (len(parsed.Scheme) == 1 && filepath.VolumeName(source) != "") {
		return v.local()
	}
	if parsed.Scheme == "file" {
		return v.local()
	}

	if !v.isSchemeAllowed(parsed.Scheme) {
		// "shots:1.png" parses as scheme "shots" but is a relative path
		if v.allowLocal && !strings.Contains(source, "://") {
			return SourceLocal, nil
		}
		return "", apperrors.NewValidationError("URL scheme not allowed", nil)
	}
	if parsed.Host == "" {
		return "", apperrors.NewValidationError("URL must have a valid host", nil)
	}
	if len(v.allowedHosts) > 0 && !v.isHostAllowed(parsed.Hostname()) {
		return "", apperrors.NewValidationError("URL host not allowed", nil)
	}

	if strings.HasSuffix(strings.ToLower(parsed.Hostname()), azureBlobSuffix) {
		return SourceAzureBlob, nil
	}
	return SourceHTTP, nil
}

// ValidateSource validates source without classifying it
func (v *SourceValidator) ValidateSource(source string) error {
	_, err := v.Classify(source)
	return err
}

// LocalPath returns the filesystem path for a local source, stripping a file:// prefix
func LocalPath(source string) string {
	source = strings.TrimSpace(source)
	if parsed, err := url.Parse(source); err == nil && parsed.Scheme == "file" {
		return filepath.FromSlash(parsed.Path)
	}
	return source
}

func (v *SourceValidator) local() (SourceKind, error) {
	if !v.allowLocal {
		return "", apperrors.NewValidationError("local file sources are not allowed", nil)
	}
	return SourceLocal, nil
}

// isSchemeAllowed checks if the URL scheme is in the allowed list
func (v *SourceValidator) isSchemeAllowed(scheme string) bool {
	for _, allowed := range v.allowedSchemes {
		if strings.EqualFold(scheme, allowed) {
			return true
		}
	}
	return false
}

// isHostAllowed checks if the URL host is in the allowed list
func (v *SourceValidator) isHostAllowed(host string) bool {
	for _, allowed := range v.allowedHosts {
		if strings.EqualFold(host, allowed) {
			return true
		}
	}
	return false
}
