package data

import (
	"context"
	"fmt"
	"time"

	"assetguard/internal/conf"
	"assetguard/internal/pkg/store"

	"github.com/go-kratos/kratos/v2/log"
)

// NewContentStore builds the content store chain in configured priority order.
// A listed backend that cannot be built fails startup.
func NewContentStore(c *conf.Storage, logger log.Logger) (*store.Chain, error) {
	helper := log.NewHelper(log.With(logger, "module", "data/storage"))
	if c == nil || len(c.Backends) == 0 {
		return nil, fmt.Errorf("storage: no backends configured")
	}

	backends := make([]store.Backend, 0, len(c.Backends))
	for _, name := range c.Backends {
		switch name {
		case "minio":
			if c.Minio == nil {
				return nil, fmt.Errorf("storage: minio listed but not configured")
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			s, err := store.NewMinIOStore(ctx, store.MinIOConfig{
				Endpoint:        c.Minio.Endpoint,
				AccessKeyID:     c.Minio.AccessKeyID,
				SecretAccessKey: c.Minio.SecretAccessKey,
				BucketName:      c.Minio.BucketName,
				UseSSL:          c.Minio.UseSSL,
			})
			cancel()
			if err != nil {
				return nil, err
			}
			backends = append(backends, s)
		case "ipfs":
			if c.Ipfs == nil {
				return nil, fmt.Errorf("storage: ipfs listed but not configured")
			}
			s, err := store.NewPinningStore(store.PinningConfig{
				APIURL:     c.Ipfs.ApiURL,
				GatewayURL: c.Ipfs.GatewayURL,
				JWT:        c.Ipfs.Jwt,
				Timeout:    c.Ipfs.Timeout.AsDuration(),
			})
			if err != nil {
				return nil, err
			}
			backends = append(backends, s)
		default:
			return nil, fmt.Errorf("storage: unknown backend %q", name)
		}
	}

	chain := store.NewChain(logger, backends...)
	helper.Infof("content store chain: %v", chain.Backends())
	return chain, nil
}
