package client

import (
	"context"
	"time"

	"github.com/gthao313/bottlerocket-test-system/pkg/k8sutil"
	"github.com/gthao313/bottlerocket-test-system/pkg/logging"
	"github.com/gthao313/bottlerocket-test-system/pkg/marker"

	"github.com/karlseguin/ccache"
	"github.com/pkg/errors"
	v1meta "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	v1core "k8s.io/client-go/kubernetes/typed/core/v1"
)

const (
	lastSentMaxSize = 32
	lastSentTimeout = 15 * time.Minute
)

// lastSent remembers the most recent payload written under each data entry
// so that byte-identical repeated checkpoints, as poll loops tend to
// produce, skip the write.
type lastSent struct {
	cache *ccache.Cache
}

func newLastSent() *lastSent {
	return &lastSent{
		cache: ccache.New(ccache.Configure().MaxSize(lastSentMaxSize)),
	}
}

// Unchanged reports whether value matches the last payload recorded for key.
func (c *lastSent) Unchanged(key, value string) bool {
	item := c.cache.Get(key)
	if item == nil || item.Expired() {
		return false
	}
	last, ok := item.Value().(string)
	return ok && last == value
}

func (c *lastSent) Record(key, value string) {
	c.cache.Set(key, value, lastSentTimeout)
}

// runStore is the ConfigMap plumbing shared by both agent flavors. The run's
// ConfigMap carries the delivered spec, the memo, and the terminal outputs
// under the data entry names in pkg/marker.
type runStore struct {
	log       logging.Logger
	cmc       v1core.ConfigMapInterface
	name      string
	agentType marker.AgentType
	last      *lastSent
}

func newRunStore(log logging.Logger, kube kubernetes.Interface, namespace, name string, agentType marker.AgentType) runStore {
	if namespace == "" {
		namespace = marker.DefaultNamespace
	}
	return runStore{
		log:       log,
		cmc:       kube.CoreV1().ConfigMaps(namespace),
		name:      name,
		agentType: agentType,
		last:      newLastSent(),
	}
}

func (s *runStore) labels() map[string]string {
	return map[string]string{
		marker.AgentNameLabel: s.name,
		marker.AgentTypeLabel: s.agentType,
	}
}

// post merges entries and annotations onto the run's ConfigMap, creating it
// first if the control plane has not. Every post stamps the checkpoint time.
func (s *runStore) post(ctx context.Context, entries map[string]string, annotations map[string]string) error {
	if _, err := k8sutil.EnsureConfigMap(ctx, s.cmc, s.name, s.labels()); err != nil {
		return err
	}
	if annotations == nil {
		annotations = map[string]string{}
	}
	annotations[marker.LastCheckpointKey] = time.Now().UTC().Format(time.RFC3339)
	return k8sutil.PostDataEntries(ctx, s.cmc, s.name, entries, annotations)
}

// dataEntry reads one named data entry; found is false when the ConfigMap or
// the entry does not exist yet.
func (s *runStore) dataEntry(ctx context.Context, key string) (value string, found bool, err error) {
	cm, err := s.cmc.Get(ctx, s.name, v1meta.GetOptions{})
	if err != nil {
		if k8sNotFound(err) {
			return "", false, nil
		}
		return "", false, errors.WithMessage(err, "unable to get run configmap")
	}
	value, found = cm.Data[key]
	return value, found, nil
}

// specEntry reads the delivered run spec, which unlike other entries must be
// present before the agent can do anything.
func (s *runStore) specEntry(ctx context.Context) ([]byte, error) {
	raw, found, err := s.dataEntry(ctx, marker.DataSpec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Errorf("run spec has not been delivered to configmap %q", s.name)
	}
	return []byte(raw), nil
}
