package main

import (
	"context"
	"os"
	"time"

	"github.com/gthao313/bottlerocket-test-system/pkg/agent"
	"github.com/gthao313/bottlerocket-test-system/pkg/bootstrap"
	"github.com/gthao313/bottlerocket-test-system/pkg/client"
	"github.com/gthao313/bottlerocket-test-system/pkg/k8sutil"
	"github.com/gthao313/bottlerocket-test-system/pkg/logging"
	"github.com/gthao313/bottlerocket-test-system/pkg/model"
	"github.com/gthao313/bottlerocket-test-system/pkg/provider"
	"github.com/gthao313/bottlerocket-test-system/pkg/provider/duplicator"
	"github.com/gthao313/bottlerocket-test-system/pkg/provider/kindcluster"
	"github.com/gthao313/bottlerocket-test-system/pkg/resource"
	"github.com/gthao313/bottlerocket-test-system/pkg/runner"
	"github.com/gthao313/bottlerocket-test-system/pkg/runner/sleeper"
	"github.com/gthao313/bottlerocket-test-system/pkg/sigcontext"
	"github.com/gthao313/bottlerocket-test-system/pkg/workgroup"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"k8s.io/client-go/kubernetes"
)

func main() {
	app := &cli.App{
		Name:  "testsys-agent",
		Usage: "in-pod agent for testsys runs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "name",
				Usage:   "run `NAME` this agent serves",
				EnvVars: []string{"TESTSYS_AGENT_NAME"},
			},
			&cli.StringFlag{
				Name:    "namespace",
				Usage:   "control plane `NAMESPACE` holding the run",
				EnvVars: []string{"TESTSYS_NAMESPACE"},
			},
			&cli.StringFlag{
				Name:    "bootstrap-file",
				Usage:   "TOML `FILE` with bootstrap data, merged under the flags",
				EnvVars: []string{"TESTSYS_BOOTSTRAP_FILE"},
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				EnvVars: []string{"TESTSYS_DEBUG"},
			},
			&cli.BoolFlag{
				Name:    "journald",
				Usage:   "also log to the journal when one is available",
				EnvVars: []string{"TESTSYS_JOURNALD"},
			},
		},
		Commands: []*cli.Command{
			testCommand(),
			resourceCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logging.New("main").WithError(err).Fatal("agent stopped")
	}
}

func testCommand() *cli.Command {
	return &cli.Command{
		Name:  "test",
		Usage: "run the test workload delivered in the run spec",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "runner",
				Usage:   "workload `RUNNER` to execute",
				Value:   "sleep",
				EnvVars: []string{"TESTSYS_RUNNER"},
			},
		},
		Action: runTest,
	}
}

func resourceCommand() *cli.Command {
	return &cli.Command{
		Name:  "resource",
		Usage: "perform a provisioning action for the run spec",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "action",
				Usage:   "provisioning `ACTION`, create or destroy",
				EnvVars: []string{"TESTSYS_ACTION"},
			},
			&cli.StringFlag{
				Name:    "provider",
				Usage:   "resource `PROVIDER` to drive",
				Value:   "duplicator",
				EnvVars: []string{"TESTSYS_PROVIDER"},
			},
		},
		Action: runResource,
	}
}

func setupLogging(c *cli.Context) error {
	if err := logging.Set(logging.SplitOutput()); err != nil {
		return errors.WithMessage(err, "unable to split log output")
	}
	if c.Bool("debug") {
		if err := logging.Set(logging.Level("debug")); err != nil {
			return errors.WithMessage(err, "unable to set log level")
		}
	}
	if c.Bool("journald") {
		if err := logging.Set(logging.Journal()); err != nil {
			return errors.WithMessage(err, "unable to attach journal")
		}
	}
	return nil
}

func debugBanner(log logging.Logger) {
	// "debuggable" builds at runtime produce extensive logging output
	// compared to release builds with the debug flag enabled. This requires
	// building and using a distinct build in the deployment in order to use.
	if logging.Debuggable {
		log.Info("low-level logging.Debuggable is enabled in this build")
		log.Warn("logging.Debuggable produces large volumes of logs")
		delay := 3 * time.Second
		log.WithField("delay", delay).Warn("delaying start due to logging.Debuggable build")
		time.Sleep(delay)
	}
}

func bootstrapData(c *cli.Context, action string) (bootstrap.Data, error) {
	fromFile, err := bootstrap.ReadFileIfSet(c.String("bootstrap-file"))
	if err != nil {
		return bootstrap.Data{}, errors.WithMessage(err, "unable to read bootstrap file")
	}
	data := bootstrap.Data{
		Name:      c.String("name"),
		Namespace: c.String("namespace"),
		Action:    action,
	}
	return data.Merge(fromFile).WithDefaults(), nil
}

func runTest(c *cli.Context) error {
	if err := setupLogging(c); err != nil {
		return err
	}
	log := logging.New("test-agent")
	debugBanner(log)

	data, err := bootstrapData(c, "")
	if err != nil {
		return err
	}
	kube, err := k8sutil.DefaultKubernetesClient()
	if err != nil {
		return errors.WithMessage(err, "kubernetes client")
	}

	ctx, cancel := sigcontext.WithSignalCancel(context.Background(), sigcontext.Interrupts()...)
	defer cancel()

	newRunner, err := runnerBuilder(c.String("runner"), kube, data)
	if err != nil {
		return err
	}
	a, err := agent.New(ctx, log, data,
		func(ctx context.Context, data bootstrap.Data) (client.Client, error) {
			return client.NewTestClient(logging.New("client"), kube, data.Namespace, data.Name), nil
		},
		newRunner)
	if err != nil {
		return errors.WithMessage(err, "initialization error")
	}

	group := workgroup.WithContext(ctx)
	group.Work(a.Run)
	return errors.WithMessage(group.Wait(), "run error")
}

func runResource(c *cli.Context) error {
	if err := setupLogging(c); err != nil {
		return err
	}
	log := logging.New("resource-agent")
	debugBanner(log)

	data, err := bootstrapData(c, c.String("action"))
	if err != nil {
		return err
	}
	kube, err := k8sutil.DefaultKubernetesClient()
	if err != nil {
		return errors.WithMessage(err, "kubernetes client")
	}

	ctx, cancel := sigcontext.WithSignalCancel(context.Background(), sigcontext.Interrupts()...)
	defer cancel()

	newProvider, err := providerBuilder(c.String("provider"), kube, data)
	if err != nil {
		return err
	}
	a, err := resource.New(ctx, log, data,
		func(ctx context.Context, data bootstrap.Data) (client.ResourceClient, error) {
			return client.NewResourceClient(logging.New("client"), kube, data.Namespace, data.Name), nil
		},
		newProvider)
	if err != nil {
		return errors.WithMessage(err, "initialization error")
	}

	group := workgroup.WithContext(ctx)
	group.Work(a.Run)
	return errors.WithMessage(group.Wait(), "run error")
}

func runnerBuilder(name string, kube kubernetes.Interface, data bootstrap.Data) (agent.RunnerBuilder, error) {
	switch name {
	case "sleep":
		return func(ctx context.Context, spec model.TestSpec) (runner.Runner, error) {
			if err := exportSecrets(ctx, kube, data.Namespace, spec.Secrets); err != nil {
				return nil, err
			}
			return sleeper.New(logging.New("sleeper"), spec.Configuration)
		}, nil
	}
	return nil, errors.Errorf("unrecognized runner %q", name)
}

func providerBuilder(name string, kube kubernetes.Interface, data bootstrap.Data) (resource.ProviderBuilder, error) {
	switch name {
	case "duplicator":
		return func(ctx context.Context, spec model.ResourceSpec) (provider.Provider, error) {
			if err := exportSecrets(ctx, kube, data.Namespace, spec.Secrets); err != nil {
				return nil, err
			}
			return duplicator.New(logging.New("duplicator")), nil
		}, nil
	case "kind-cluster":
		return func(ctx context.Context, spec model.ResourceSpec) (provider.Provider, error) {
			if err := exportSecrets(ctx, kube, data.Namespace, spec.Secrets); err != nil {
				return nil, err
			}
			return kindcluster.New(logging.New("kind-cluster")), nil
		}, nil
	}
	return nil, errors.Errorf("unrecognized provider %q", name)
}

// exportSecrets places referenced secret material into the process
// environment before the runner or provider comes up, the way cloud tooling
// expects to find it.
func exportSecrets(ctx context.Context, kube kubernetes.Interface, namespace string, secrets map[string]model.SecretName) error {
	if len(secrets) == 0 {
		return nil
	}
	reader := client.NewSecretsReader(kube, namespace)
	return errors.WithMessage(reader.Export(ctx, secrets, os.Setenv), "unable to export secrets")
}
