package storage

import (
	"context"
	"fmt"
	"image"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"go-cvd-inspector/pkg/models"
)

// AzureBlobFetcher loads images from Azure Blob Storage URLs of the form
// https://<account>.blob.core.windows.net/<container>/<blob>
type AzureBlobFetcher struct {
	client   *azblob.Client
	account  string
	maxBytes int64
}

// NewAzureBlobFetcher creates a fetcher for one storage account. An empty
// key gives anonymous access, which only works for public containers.
func NewAzureBlobFetcher(accountName string, accountKey string) (*AzureBlobFetcher, error) {
	if accountName == "" {
		return nil, fmt.Errorf("azure storage account name is required")
	}
	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net", accountName)

	var client *azblob.Client
	if accountKey == "" {
		c, err := azblob.NewClientWithNoCredential(serviceURL, nil)
		if err != nil {
			return nil, err
		}
		client = c
	} else {
		credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
		if err != nil {
			return nil, err
		}
		c, err := azblob.NewClientWithSharedKeyCredential(serviceURL, credential, nil)
		if err != nil {
			return nil, err
		}
		client = c
	}

	return &AzureBlobFetcher{client: client, account: accountName, maxBytes: DefaultMaxImageBytes}, nil
}

func (s *AzureBlobFetcher) FetchImage(ctx context.Context, blobURL string) (image.Image, error) {
	resp, err := s.download(ctx, blobURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return decodeImage(resp.Body, s.maxBytes)
}

func (s *AzureBlobFetcher) FetchMetadata(ctx context.Context, blobURL string) (*models.ImageMetadata, error) {
	resp, err := s.download(ctx, blobURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var contentType string
	var length int64
	if resp.ContentType != nil {
		contentType = *resp.ContentType
	}
	if resp.ContentLength != nil {
		length = *resp.ContentLength
	}
	return decodeMetadata(resp.Body, contentType, length)
}

func (s *AzureBlobFetcher) download(ctx context.Context, blobURL string) (azblob.DownloadStreamResponse, error) {
	account, containerName, blobName, err := parseBlobURL(blobURL)
	if err != nil {
		return azblob.DownloadStreamResponse{}, err
	}
	if !strings.EqualFold(account, s.account) {
		return azblob.DownloadStreamResponse{}, fmt.Errorf("blob belongs to account %q, fetcher is configured for %q", account, s.account)
	}

	resp, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		return azblob.DownloadStreamResponse{}, fmt.Errorf("download failed: %w", err)
	}
	return resp, nil
}

// parseBlobURL splits a blob URL into account, container and blob name
func parseBlobURL(blobURL string) (account, containerName, blobName string, err error) {
	parsed, err := url.Parse(blobURL)
	if err != nil {
		return "", "", "", fmt.Errorf("invalid blob URL: %w", err)
	}
	host := strings.ToLower(parsed.Hostname())
	account, ok := strings.CutSuffix(host, ".blob.core.windows.net")
	if !ok || account == "" {
		return "", "", "", fmt.Errorf("invalid blob URL: %s is not a blob storage host", parsed.Host)
	}

	path := strings.TrimPrefix(parsed.Path, "/")
	containerName, blobName, ok = strings.Cut(path, "/")
	if !ok || containerName == "" || blobName == "" {
		return "", "", "", fmt.Errorf("invalid blob URL: expected /<container>/<blob>, got %q", parsed.Path)
	}
	return account, containerName, blobName, nil
}
