// Package artifact loads trained model artifacts and their metrics from a
// local directory or an Azure Blob Storage container.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
)

// ErrNotFound is returned when an artifact does not exist. Callers treat it
// as "model not trained" rather than a failure.
var ErrNotFound = errors.New("artifact not found")

// Source opens named artifacts.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// Location describes the source for logs and errors.
	Location() string
}

// DirSource reads artifacts from a local directory.
type DirSource struct {
	Dir string
}

func (d DirSource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(d.Dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s in %s: %w", name, d.Dir, ErrNotFound)
		}
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	return f, nil
}

func (d DirSource) Location() string {
	return d.Dir
}

// BlobSource reads artifacts from an Azure Blob Storage container.
type BlobSource struct {
	client *container.Client
	url    string
}

// NewBlobSource returns a source for the container at containerURL. A nil
// credential uses azidentity's default credential chain.
func NewBlobSource(containerURL string, cred azcore.TokenCredential) (*BlobSource, error) {
	if cred == nil {
		c, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("creating azure credential: %w", err)
		}
		cred = c
	}
	client, err := container.NewClient(containerURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("creating blob container client for %s: %w", containerURL, err)
	}
	return &BlobSource{client: client, url: containerURL}, nil
}

func (b *BlobSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	resp, err := b.client.NewBlobClient(name).DownloadStream(ctx, nil)
	if err != nil {
		if isBlobNotFound(err) {
			return nil, fmt.Errorf("%s in %s: %w", name, b.url, ErrNotFound)
		}
		return nil, fmt.Errorf("downloading %s: %w", name, err)
	}
	return resp.Body, nil
}

func (b *BlobSource) Location() string {
	return b.url
}

func isBlobNotFound(err error) bool {
	if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
		return true
	}
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}
