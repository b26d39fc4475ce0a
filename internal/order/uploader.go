package order

import (
	"context"
	"os"
	"path"

	"github.com/guonaihong/gout"
	"github.com/guonaihong/gout/core"
	"github.com/pkg/errors"

	"github.com/eliotaldersonfsociety/tienlatoree/pkg/common"
)

// MaxProofSize caps payment proof uploads at 1MB, matching the
// storefront's client-side limit.
const MaxProofSize = 1 << 20

var (
	ErrProofTooLarge    = errors.New("payment proof exceeds 1MB")
	ErrProofContentType = errors.New("payment proof must be JPEG or PNG")
)

var proofExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// ProofUpload is an in-memory payment proof file.
type ProofUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Validate enforces the size and type limits shared by all uploaders.
func (p *ProofUpload) Validate() error {
	if len(p.Data) > MaxProofSize {
		return ErrProofTooLarge
	}
	if _, ok := proofExtensions[p.ContentType]; !ok {
		return ErrProofContentType
	}
	return nil
}

// Uploader stores a payment proof and returns its public reference.
type Uploader interface {
	Upload(ctx context.Context, proof *ProofUpload) (string, error)
}

// LocalUploader writes proofs to the workdir, served by the web layer
// under /payment-proofs.
type LocalUploader struct {
	Dir string
}

func (u *LocalUploader) Upload(_ context.Context, proof *ProofUpload) (string, error) {
	if err := proof.Validate(); err != nil {
		return "", err
	}
	name := common.UUID() + proofExtensions[proof.ContentType]
	if err := os.WriteFile(path.Join(u.Dir, name), proof.Data, 0644); err != nil {
		return "", errors.Wrap(err, "write payment proof")
	}
	return "/payment-proofs/" + name, nil
}

// RemoteUploader posts proofs to an external image host.
type RemoteUploader struct {
	Endpoint string
	ApiKey   string
}

func (u *RemoteUploader) Upload(ctx context.Context, proof *ProofUpload) (string, error) {
	if err := proof.Validate(); err != nil {
		return "", err
	}
	var resp struct {
		Url string `json:"url"`
	}
	err := gout.POST(u.Endpoint).
		WithContext(ctx).
		SetHeader(gout.H{"Authorization": "Bearer " + u.ApiKey}).
		SetForm(gout.H{
			"fileName": proof.Filename,
			"folder":   "/payment-proofs",
			"file":     core.FormMem(proof.Data),
		}).
		BindJSON(&resp).
		Do()
	if err != nil {
		return "", errors.Wrap(err, "upload payment proof")
	}
	if resp.Url == "" {
		return "", errors.New("image host returned no url")
	}
	return resp.Url, nil
}
