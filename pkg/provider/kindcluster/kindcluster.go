// Package kindcluster provisions a local kind cluster. It is the provider
// used for self tests: real external process, real readiness polling, no
// cloud account required.
package kindcluster

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gthao313/bottlerocket-test-system/pkg/logging"
	"github.com/gthao313/bottlerocket-test-system/pkg/model"
	"github.com/gthao313/bottlerocket-test-system/pkg/netutil"
	"github.com/gthao313/bottlerocket-test-system/pkg/provider"
	"github.com/gthao313/bottlerocket-test-system/pkg/wait"
)

const (
	statusRecording = "recording inputs"
	statusCreating  = "creating cluster"
	statusWaiting   = "waiting for cluster"
	statusReady     = "cluster ready"
	statusDeleted   = "cluster deleted"

	// defaultServiceCIDR is kind's default service network.
	defaultServiceCIDR  = "10.96.0.0/16"
	defaultReadyTimeout = 5 * time.Minute
)

var pollInterval = 5 * time.Second

// Config is the kind provider's slice of the resource spec configuration.
type Config struct {
	// ClusterName names the kind cluster; required.
	ClusterName string `json:"clusterName"`
	// Image pins the kind node image, for example kindest/node:v1.30.0.
	Image string `json:"image,omitempty"`
	// ServiceCIDR is the declared service network the cluster DNS address is
	// derived from. Defaults to kind's own.
	ServiceCIDR string `json:"serviceCidr,omitempty"`
	// ReadyTimeout bounds the wait for a usable control plane, as a Go
	// duration string. Defaults to five minutes.
	ReadyTimeout string `json:"readyTimeout,omitempty"`
}

func (c Config) serviceCIDR() string {
	if c.ServiceCIDR == "" {
		return defaultServiceCIDR
	}
	return c.ServiceCIDR
}

func (c Config) readyTimeout() (time.Duration, error) {
	if c.ReadyTimeout == "" {
		return defaultReadyTimeout, nil
	}
	return time.ParseDuration(c.ReadyTimeout)
}

// Memo is the kind provider's durable progress record. The cluster name is
// recorded before anything external runs so a destroy pass can find the
// cluster with nothing but the memo.
type Memo struct {
	provider.Memo

	CreationPolicy model.CreationPolicy `json:"creationPolicy,omitempty"`
	ClusterName    string               `json:"clusterName,omitempty"`
}

// Resource is the created resource description.
type Resource struct {
	ClusterName  string `json:"clusterName"`
	Kubeconfig   string `json:"kubeconfig"`
	ClusterDNSIP string `json:"clusterDnsIp"`
}

// KindCluster implements provider.Provider over the kind CLI.
type KindCluster struct {
	log  logging.Logger
	kind command
}

var _ provider.Provider = (*KindCluster)(nil)

func New(log logging.Logger) *KindCluster {
	return &KindCluster{log: log, kind: &executable{cli: &processExecuter{log: log}}}
}

func configFrom(spec model.ResourceSpec) (Config, error) {
	var config Config
	if len(spec.Configuration) == 0 {
		return config, nil
	}
	err := json.Unmarshal(spec.Configuration, &config)
	return config, err
}

// Create brings up the named cluster and returns its connection details. The
// checkpoint order is the contract's: inputs first, the durability marker
// before `kind create cluster` runs, the result gathered by asking kind
// rather than from local state.
func (p *KindCluster) Create(ctx context.Context, spec model.ResourceSpec, info provider.InfoClient) (json.RawMessage, error) {
	config, err := configFrom(spec)
	if err != nil {
		return nil, provider.WrapError(err, provider.ResourcesClear, "unable to decode configuration")
	}
	if config.ClusterName == "" {
		return nil, provider.NewError(provider.ResourcesClear, "a cluster name is required")
	}
	readyTimeout, err := config.readyTimeout()
	if err != nil {
		return nil, provider.WrapError(err, provider.ResourcesClear, "unable to parse ready timeout")
	}

	var memo Memo
	if err := info.GetInfo(ctx, &memo); err != nil {
		return nil, provider.WrapError(err, provider.ResourcesUnknown, "unable to read memo")
	}

	memo.CurrentStatus = statusRecording
	memo.CreationPolicy = spec.CreationPolicy
	memo.ClusterName = config.ClusterName
	if err := info.SendInfo(ctx, memo); err != nil {
		return nil, provider.WrapError(err, memo.CreateFailureResources(), "unable to checkpoint inputs")
	}

	clusters, err := p.kind.Clusters(ctx)
	if err != nil {
		return nil, provider.WrapError(err, memo.CreateFailureResources(), "unable to list existing clusters")
	}
	exists := false
	for _, name := range clusters {
		if name == config.ClusterName {
			exists = true
			break
		}
	}

	required, err := spec.CreationPolicy.CreationRequired(exists)
	if err != nil {
		return nil, provider.WrapError(err, memo.CreateFailureResources(), "creation policy cannot be satisfied")
	}

	if required {
		// The durability marker lands before kind ever runs. Whatever
		// becomes of the create call, a later destroy pass now knows to
		// look for this cluster.
		memo.ProvisioningStarted = true
		memo.CurrentStatus = statusCreating
		if err := info.SendInfo(ctx, memo); err != nil {
			return nil, provider.WrapError(err, memo.CreateFailureResources(), "unable to checkpoint provisioning start")
		}
		if err := p.kind.CreateCluster(ctx, config.ClusterName, config.Image); err != nil {
			return nil, provider.WrapError(err, memo.CreateFailureResources(), "unable to create cluster")
		}
		p.log.WithField("cluster", config.ClusterName).Info("cluster created")
	} else {
		p.log.WithField("cluster", config.ClusterName).Info("existing cluster satisfies the creation policy")
	}

	memo.CurrentStatus = statusWaiting
	if err := info.SendInfo(ctx, memo); err != nil {
		return nil, provider.WrapError(err, memo.CreateFailureResources(), "unable to checkpoint wait")
	}
	if err := p.waitForNodes(ctx, config.ClusterName, readyTimeout); err != nil {
		return nil, provider.WrapError(err, memo.CreateFailureResources(), "cluster did not become ready")
	}

	// Gather the result from kind itself; local state may be stale or
	// incomplete if an earlier incarnation did part of the work.
	kubeconfig, err := p.kind.Kubeconfig(ctx, config.ClusterName)
	if err != nil {
		return nil, provider.WrapError(err, memo.CreateFailureResources(), "unable to gather kubeconfig")
	}
	dnsIP, err := netutil.ClusterDNSIP(config.serviceCIDR())
	if err != nil {
		return nil, provider.WrapError(err, memo.CreateFailureResources(), "unable to derive cluster dns address")
	}
	resource, err := json.Marshal(Resource{
		ClusterName:  config.ClusterName,
		Kubeconfig:   kubeconfig,
		ClusterDNSIP: dnsIP,
	})
	if err != nil {
		return nil, provider.WrapError(err, memo.CreateFailureResources(), "unable to encode the created resource")
	}

	memo.CurrentStatus = statusReady
	if err := info.SendInfo(ctx, memo); err != nil {
		return nil, provider.WrapError(err, memo.CreateFailureResources(), "unable to checkpoint completion")
	}
	return resource, nil
}

func (p *KindCluster) waitForNodes(ctx context.Context, name string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return wait.For(waitCtx, pollInterval, func(ctx context.Context) (bool, error) {
		nodes, err := p.kind.Nodes(ctx, name)
		if err != nil {
			return false, err
		}
		return len(nodes) > 0, nil
	})
}

// Destroy deletes the cluster named in the memo. The arguments may both be
// nil; the memo is the only source consulted.
func (p *KindCluster) Destroy(ctx context.Context, spec *model.ResourceSpec, prior json.RawMessage, info provider.InfoClient) error {
	var memo Memo
	if err := info.GetInfo(ctx, &memo); err != nil {
		return provider.WrapError(err, provider.ResourcesUnknown, "unable to read memo")
	}

	if !memo.ProvisioningStarted {
		p.log.Info("provisioning never started, nothing to destroy")
		return nil
	}
	if memo.ClusterName == "" {
		// Nothing can be deleted without a name; orphaned is reserved for
		// delete calls that actually failed.
		return provider.NewError(provider.ResourcesUnknown, "memo records no cluster name")
	}

	if err := p.kind.DeleteCluster(ctx, memo.ClusterName); err != nil {
		return provider.WrapError(err, provider.ResourcesOrphaned, "unable to delete cluster")
	}
	p.log.WithField("cluster", memo.ClusterName).Info("cluster deleted")

	memo.CurrentStatus = statusDeleted
	if err := info.SendInfo(ctx, memo); err != nil {
		// The cluster is gone; a missed final checkpoint does not change
		// that.
		p.log.WithError(err).Error("unable to checkpoint deletion")
	}
	return nil
}
