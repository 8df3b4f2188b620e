package store

import (
	"bytes"
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// OverlayArchiver persists rendered overlay images to long-lived storage,
// independent of the in-memory result store.
type OverlayArchiver interface {
	ArchiveOverlay(ctx context.Context, id string, overlay []byte) error
}

type azureArchiver struct {
	client    *azblob.Client
	container string
}

// NewAzureArchiver creates an archiver that uploads overlays to an Azure
// Blob container, one blob per comparison id.
func NewAzureArchiver(accountName, accountKey, container string) (OverlayArchiver, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, err
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, err
	}

	return &azureArchiver{client: client, container: container}, nil
}

// ArchiveOverlay uploads the overlay PNG under "<id>.png".
func (a *azureArchiver) ArchiveOverlay(ctx context.Context, id string, overlay []byte) error {
	blobName := id + ".png"
	_, err := a.client.UploadStream(ctx, a.container, blobName, bytes.NewReader(overlay), nil)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	return nil
}
