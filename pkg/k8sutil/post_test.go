package k8sutil

import (
	"context"
	"testing"

	"gotest.tools/assert"
	v1meta "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func TestEnsureConfigMapCreates(t *testing.T) {
	kube := fake.NewSimpleClientset()
	cmc := kube.CoreV1().ConfigMaps("testsys")

	cm, err := EnsureConfigMap(context.Background(), cmc, "run-1", map[string]string{"owner": "agent"})
	assert.NilError(t, err)
	assert.Equal(t, cm.Name, "run-1")
	assert.Equal(t, cm.Labels["owner"], "agent")

	// A second call finds the same object instead of racing a create.
	again, err := EnsureConfigMap(context.Background(), cmc, "run-1", nil)
	assert.NilError(t, err)
	assert.Equal(t, again.Name, "run-1")
}

func TestPostDataEntriesMerges(t *testing.T) {
	kube := fake.NewSimpleClientset()
	cmc := kube.CoreV1().ConfigMaps("testsys")
	_, err := EnsureConfigMap(context.Background(), cmc, "run-1", nil)
	assert.NilError(t, err)

	err = PostDataEntries(context.Background(), cmc, "run-1",
		map[string]string{"spec": "{}", "memo": "a"}, nil)
	assert.NilError(t, err)

	err = PostDataEntries(context.Background(), cmc, "run-1",
		map[string]string{"memo": "b"},
		map[string]string{"phase": "running"})
	assert.NilError(t, err)

	cm, err := cmc.Get(context.Background(), "run-1", v1meta.GetOptions{})
	assert.NilError(t, err)
	assert.Equal(t, cm.Data["spec"], "{}")
	assert.Equal(t, cm.Data["memo"], "b")
	assert.Equal(t, cm.Annotations["phase"], "running")
}

func TestPostDataEntriesMissingConfigMap(t *testing.T) {
	kube := fake.NewSimpleClientset()
	cmc := kube.CoreV1().ConfigMaps("testsys")

	err := PostDataEntries(context.Background(), cmc, "absent", map[string]string{"memo": "a"}, nil)
	assert.ErrorContains(t, err, "unable to get configmap")
}
