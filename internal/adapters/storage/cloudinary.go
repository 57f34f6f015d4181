package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Cloudinary uploads files into a folder of a Cloudinary account.
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinary(cloudName, apiKey, apiSecret, folder string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("configure cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld, folder: folder}, nil
}

// Save streams r to Cloudinary under the name without its extension and
// returns the secure URL. Re-uploading a name replaces the old asset.
func (c *Cloudinary) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	overwrite := true
	uniqueFilename := false
	res, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID:       strings.TrimSuffix(name, filepath.Ext(name)),
		Folder:         c.folder,
		Overwrite:      &overwrite,
		UniqueFilename: &uniqueFilename,
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}
	return res.SecureURL, nil
}
