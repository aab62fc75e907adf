// Package netutil holds small pure helpers for network configuration that
// resource providers share.
package netutil

import (
	"strings"

	"github.com/pkg/errors"
)

// ClusterDNSIP derives the conventional cluster DNS service address from a
// service network CIDR. IPv4 networks use the well known tenth address of
// the range, so "10.100.0.0/16" yields "10.100.0.10". IPv6 networks append
// "a" to the network prefix, so "fd30:1c53:5f8a::/108" yields
// "fd30:1c53:5f8a::a".
func ClusterDNSIP(serviceCIDR string) (string, error) {
	if strings.Contains(serviceCIDR, ".") {
		segments := strings.Split(serviceCIDR, ".")
		if len(segments) != 4 {
			return "", errors.Errorf("expected 4 segments in IPv4 service CIDR %q, found %d", serviceCIDR, len(segments))
		}
		segments[3] = "10"
		return strings.Join(segments, "."), nil
	}
	prefix, _, _ := strings.Cut(serviceCIDR, "/")
	return prefix + "a", nil
}
