package storage

import (
	"context"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/pkg/errors"
)

// AzureBlobStore implements ObjectStore on Azure Blob Storage
type AzureBlobStore struct {
	client *azblob.Client
}

// NewAzureBlobStore creates a store from a storage account connection string
func NewAzureBlobStore(connectionString string) (*AzureBlobStore, error) {
	if connectionString == "" {
		return nil, errors.New("storage connection string is empty")
	}
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create blob client")
	}
	return &AzureBlobStore{client: client}, nil
}

// NewAzureBlobStoreFromClient wraps an existing client
func NewAzureBlobStoreFromClient(client *azblob.Client) *AzureBlobStore {
	return &AzureBlobStore{client: client}
}

func (s *AzureBlobStore) EnsureContainer(ctx context.Context, container string) error {
	_, err := s.client.CreateContainer(ctx, container, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return errors.Wrapf(err, "failed to create container %s", container)
	}
	return nil
}

func (s *AzureBlobStore) Exists(ctx context.Context, container, name string) (bool, error) {
	blobClient := s.client.ServiceClient().NewContainerClient(container).NewBlobClient(name)
	_, err := blobClient.GetProperties(ctx, nil)
	if err == nil {
		return true, nil
	}
	if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound, bloberror.ResourceNotFound) {
		return false, nil
	}
	return false, errors.Wrapf(err, "failed to get properties of %s", ObjectLocation(container, name))
}

func (s *AzureBlobStore) Download(ctx context.Context, container, name string) ([]byte, error) {
	resp, err := s.client.DownloadStream(ctx, container, name, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to download %s", ObjectLocation(container, name))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", ObjectLocation(container, name))
	}
	return data, nil
}

func (s *AzureBlobStore) Upload(ctx context.Context, container, name string, data []byte, contentType string) error {
	opts := &azblob.UploadBufferOptions{}
	if contentType != "" {
		opts.HTTPHeaders = &blob.HTTPHeaders{BlobContentType: to.Ptr(contentType)}
	}
	if _, err := s.client.UploadBuffer(ctx, container, name, data, opts); err != nil {
		return errors.Wrapf(err, "failed to upload %s", ObjectLocation(container, name))
	}
	return nil
}
