package k8sutil

import (
	"context"

	"github.com/gthao313/bottlerocket-test-system/pkg/logging"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	v1meta "k8s.io/apimachinery/pkg/apis/meta/v1"
	v1 "k8s.io/client-go/kubernetes/typed/core/v1"
)

// EnsureConfigMap fetches the named ConfigMap, creating it with the provided
// labels when it does not exist yet. Losing a create race to another writer
// is fine; the winner's object is fetched and returned.
func EnsureConfigMap(ctx context.Context, cmc v1.ConfigMapInterface, name string, labels map[string]string) (*corev1.ConfigMap, error) {
	cm, err := cmc.Get(ctx, name, v1meta.GetOptions{})
	if err == nil {
		return cm, nil
	}
	if !apierrors.IsNotFound(err) {
		return nil, errors.WithMessage(err, "unable to get configmap")
	}
	cm = &corev1.ConfigMap{
		ObjectMeta: v1meta.ObjectMeta{
			Name:   name,
			Labels: labels,
		},
	}
	created, err := cmc.Create(ctx, cm, v1meta.CreateOptions{})
	if apierrors.IsAlreadyExists(err) {
		return cmc.Get(ctx, name, v1meta.GetOptions{})
	}
	if err != nil {
		return nil, errors.WithMessage(err, "unable to create configmap")
	}
	return created, nil
}

// PostDataEntries merges data entries and annotations onto the named
// ConfigMap with a get-mutate-update round. Existing entries not named in
// the arguments are left in place.
func PostDataEntries(ctx context.Context, cmc v1.ConfigMapInterface, name string, entries map[string]string, annotations map[string]string) error {
	cm, err := cmc.Get(ctx, name, v1meta.GetOptions{})
	if err != nil {
		return errors.WithMessage(err, "unable to get configmap")
	}
	if cm.Data == nil {
		cm.Data = map[string]string{}
	}
	for k, v := range entries {
		cm.Data[k] = v
	}
	if len(annotations) > 0 {
		existing := cm.GetAnnotations()
		if existing == nil {
			existing = map[string]string{}
		}
		for k, v := range annotations {
			existing[k] = v
		}
		cm.SetAnnotations(existing)
	}
	if logging.Debuggable {
		l := logging.New("k8sutil")
		l.WithFields(logrus.Fields{
			"configmap":   name,
			"entries":     len(entries),
			"annotations": cm.GetAnnotations(),
		}).Debug("merged in new data")
	}
	_, err = cmc.Update(ctx, cm, v1meta.UpdateOptions{})
	if err != nil {
		return errors.WithMessage(err, "unable to update configmap")
	}
	return nil
}
