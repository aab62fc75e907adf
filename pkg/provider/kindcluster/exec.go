package kindcluster

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/gthao313/bottlerocket-test-system/pkg/logging"

	"github.com/pkg/errors"
)

const kindBin = "kind"

// command is the binding to the kind CLI. The provider is written against
// this interface so its contract can be tested without the binary.
type command interface {
	Clusters(ctx context.Context) ([]string, error)
	CreateCluster(ctx context.Context, name, image string) error
	DeleteCluster(ctx context.Context, name string) error
	Nodes(ctx context.Context, name string) ([]string, error)
	Kubeconfig(ctx context.Context, name string) (string, error)
}

// executable maps each command onto a kind argv and hands it to an executer
// to run.
type executable struct {
	cli executer
}

var _ command = (*executable)(nil)

// executer runs one kind invocation and returns its combined output.
type executer interface {
	execute(ctx context.Context, args []string) (string, error)
}

type processExecuter struct {
	log logging.Logger
}

var _ executer = (*processExecuter)(nil)

func (p *processExecuter) execute(ctx context.Context, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, kindBin, args...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	if logging.Debuggable {
		p.log.WithField("cmd", cmd.String()).Debug("executing")
	}
	if err := cmd.Run(); err != nil {
		return "", errors.Wrapf(err, "%q failed: %s", cmd.String(), strings.TrimSpace(buf.String()))
	}
	return buf.String(), nil
}

// names splits CLI output into one name per line, dropping the "No kind
// clusters/nodes found" notices kind prints instead of an empty list.
func names(out string) []string {
	var parsed []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "No kind") {
			continue
		}
		parsed = append(parsed, line)
	}
	return parsed
}

func (e *executable) Clusters(ctx context.Context) ([]string, error) {
	out, err := e.cli.execute(ctx, []string{"get", "clusters"})
	if err != nil {
		return nil, err
	}
	return names(out), nil
}

func (e *executable) CreateCluster(ctx context.Context, name, image string) error {
	args := []string{"create", "cluster", "--name", name}
	if image != "" {
		args = append(args, "--image", image)
	}
	_, err := e.cli.execute(ctx, args)
	return err
}

func (e *executable) DeleteCluster(ctx context.Context, name string) error {
	_, err := e.cli.execute(ctx, []string{"delete", "cluster", "--name", name})
	return err
}

func (e *executable) Nodes(ctx context.Context, name string) ([]string, error) {
	out, err := e.cli.execute(ctx, []string{"get", "nodes", "--name", name})
	if err != nil {
		return nil, err
	}
	return names(out), nil
}

func (e *executable) Kubeconfig(ctx context.Context, name string) (string, error) {
	return e.cli.execute(ctx, []string{"get", "kubeconfig", "--name", name})
}
