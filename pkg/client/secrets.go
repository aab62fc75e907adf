package client

import (
	"context"
	"time"

	"github.com/gthao313/bottlerocket-test-system/pkg/model"

	"github.com/karlseguin/ccache"
	"github.com/pkg/errors"
	v1meta "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	v1core "k8s.io/client-go/kubernetes/typed/core/v1"
)

const (
	secretCacheMaxSize = 16
	secretCacheTimeout = time.Minute
)

// SecretsReader resolves named credential material from the cluster. Reads
// are cached briefly; agents tend to re-read the same secret from retry
// loops. The framework core only sees names, never the bytes - resolution
// happens here at the edge and the data goes straight into the environment
// of the external tooling.
type SecretsReader struct {
	sc    v1core.SecretInterface
	cache *ccache.Cache
}

func NewSecretsReader(kube kubernetes.Interface, namespace string) *SecretsReader {
	return &SecretsReader{
		sc:    kube.CoreV1().Secrets(namespace),
		cache: ccache.New(ccache.Configure().MaxSize(secretCacheMaxSize)),
	}
}

// Get returns the data of the named secret.
func (r *SecretsReader) Get(ctx context.Context, name model.SecretName) (map[string][]byte, error) {
	if err := name.Validate(); err != nil {
		return nil, err
	}
	if item := r.cache.Get(name.String()); item != nil && !item.Expired() {
		if data, ok := item.Value().(map[string][]byte); ok {
			return data, nil
		}
	}
	secret, err := r.sc.Get(ctx, name.String(), v1meta.GetOptions{})
	if err != nil {
		return nil, errors.WithMessagef(err, "unable to read secret %q", name)
	}
	r.cache.Set(name.String(), secret.Data, secretCacheTimeout)
	return secret.Data, nil
}

// Export resolves every named secret and hands each entry to setenv under
// the entry's own key. Secrets store env-style keys, so entries land in the
// environment the external tooling reads.
func (r *SecretsReader) Export(ctx context.Context, secrets map[string]model.SecretName, setenv func(key, value string) error) error {
	for purpose, name := range secrets {
		data, err := r.Get(ctx, name)
		if err != nil {
			return errors.WithMessagef(err, "unable to resolve %q secret", purpose)
		}
		for k, v := range data {
			if err := setenv(k, string(v)); err != nil {
				return errors.WithMessagef(err, "unable to export entry %q of secret %q", k, name)
			}
		}
	}
	return nil
}
