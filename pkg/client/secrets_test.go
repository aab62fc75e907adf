package client

import (
	"context"
	"testing"

	"github.com/gthao313/bottlerocket-test-system/pkg/model"

	"gotest.tools/assert"
	corev1 "k8s.io/api/core/v1"
	v1meta "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func storeSecret(t *testing.T, kube *fake.Clientset, name string, data map[string][]byte) {
	t.Helper()
	_, err := kube.CoreV1().Secrets("testsys").Create(context.Background(), &corev1.Secret{
		ObjectMeta: v1meta.ObjectMeta{Name: name},
		Data:       data,
	}, v1meta.CreateOptions{})
	assert.NilError(t, err)
}

func TestSecretsReaderGet(t *testing.T) {
	kube := fake.NewSimpleClientset()
	storeSecret(t, kube, "creds", map[string][]byte{
		"AWS_ACCESS_KEY_ID":     []byte("AKIAEXAMPLE"),
		"AWS_SECRET_ACCESS_KEY": []byte("shhh"),
	})
	r := NewSecretsReader(kube, "testsys")

	data, err := r.Get(context.Background(), model.SecretName("creds"))
	assert.NilError(t, err)
	assert.Equal(t, string(data["AWS_ACCESS_KEY_ID"]), "AKIAEXAMPLE")
}

func TestSecretsReaderCachesReads(t *testing.T) {
	kube := fake.NewSimpleClientset()
	storeSecret(t, kube, "creds", map[string][]byte{"TOKEN": []byte("one")})
	r := NewSecretsReader(kube, "testsys")

	_, err := r.Get(context.Background(), model.SecretName("creds"))
	assert.NilError(t, err)

	// The secret disappearing from the cluster does not interrupt reads
	// while the cached copy is fresh.
	err = kube.CoreV1().Secrets("testsys").Delete(context.Background(), "creds", v1meta.DeleteOptions{})
	assert.NilError(t, err)

	data, err := r.Get(context.Background(), model.SecretName("creds"))
	assert.NilError(t, err)
	assert.Equal(t, string(data["TOKEN"]), "one")
}

func TestSecretsReaderRejectsInvalidName(t *testing.T) {
	kube := fake.NewSimpleClientset()
	r := NewSecretsReader(kube, "testsys")

	_, err := r.Get(context.Background(), model.SecretName("not a name"))
	assert.ErrorContains(t, err, "disallowed character")
}

func TestSecretsReaderMissingSecret(t *testing.T) {
	kube := fake.NewSimpleClientset()
	r := NewSecretsReader(kube, "testsys")

	_, err := r.Get(context.Background(), model.SecretName("absent"))
	assert.ErrorContains(t, err, `unable to read secret "absent"`)
}

func TestSecretsReaderExport(t *testing.T) {
	kube := fake.NewSimpleClientset()
	storeSecret(t, kube, "creds", map[string][]byte{"AWS_REGION": []byte("us-west-2")})
	r := NewSecretsReader(kube, "testsys")

	env := map[string]string{}
	err := r.Export(context.Background(),
		map[string]model.SecretName{"aws": "creds"},
		func(key, value string) error {
			env[key] = value
			return nil
		})
	assert.NilError(t, err)
	assert.Equal(t, env["AWS_REGION"], "us-west-2")
}

func TestSecretsReaderExportMissing(t *testing.T) {
	kube := fake.NewSimpleClientset()
	r := NewSecretsReader(kube, "testsys")

	err := r.Export(context.Background(),
		map[string]model.SecretName{"aws": "absent"},
		func(string, string) error { return nil })
	assert.ErrorContains(t, err, `unable to resolve "aws" secret`)
}
