// Package cmd implements the kwreport command line.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	ctrllog "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"kwreport/pkg/compat"
	"kwreport/pkg/config"
	"kwreport/pkg/k8s"
	"kwreport/pkg/policyreport"
	"kwreport/pkg/reportcache"
	"kwreport/pkg/store"
)

type options struct {
	configPath        string
	kubeconfig        string
	controllerVersion string
	pluginVersion     string
	cluster           string
	dev               bool

	logOutput  io.Writer
	newClients func(kubeconfig string) (*k8s.Clients, error)
}

// env is what a command needs once the configuration is resolved.
type env struct {
	cfg    *config.Config
	log    logr.Logger
	schema policyreport.Schema
	client *k8s.Clients
	store  *store.Store
	engine *reportcache.Engine
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCmd builds the kwreport command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&options{logOutput: os.Stderr, newClients: k8s.NewClients})
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "kwreport",
		Short:         "kwreport reads Kubewarden policy reports from a cluster",
		Long:          `kwreport lists, summarizes and watches the policy reports produced by Kubewarden, picking the report schema from the controller and UI plugin versions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	flags.StringVar(&opts.kubeconfig, "kubeconfig", "", "Path to the kubeconfig file (defaults to in-cluster, then $KUBECONFIG, then ~/.kube/config)")
	flags.StringVar(&opts.controllerVersion, "controller-version", "", "Kubewarden controller version")
	flags.StringVar(&opts.pluginVersion, "plugin-version", "", "Kubewarden UI plugin version")
	flags.StringVar(&opts.cluster, "cluster", "", "Cluster id used in links (default \"local\")")
	flags.BoolVar(&opts.dev, "dev", false, "Human friendly debug logging")

	cmd.AddCommand(newCompatCmd())
	cmd.AddCommand(newSummaryCmd(opts))
	cmd.AddCommand(newReportCmd(opts))
	cmd.AddCommand(newWatchCmd(opts))
	return cmd
}

// config loads the file, then applies the flags that were set.
func (o *options) config(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.NewLoader().Load(o.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("kubeconfig") {
		cfg.Kubeconfig = o.kubeconfig
	}
	if flags.Changed("controller-version") {
		cfg.ControllerVersion = o.controllerVersion
	}
	if flags.Changed("plugin-version") {
		cfg.PluginVersion = o.pluginVersion
	}
	if flags.Changed("cluster") {
		cfg.Cluster = o.cluster
	}
	if flags.Changed("dev") {
		cfg.Development = o.dev
	}
	return cfg, cfg.Validate()
}

func (o *options) logger(cfg *config.Config) logr.Logger {
	log := zap.New(zap.UseDevMode(cfg.Development), zap.WriteTo(o.logOutput))
	ctrllog.SetLogger(log)
	return log.WithName("kwreport")
}

// setup resolves the schema in effect and wires the store and engine to
// the cluster.
func (o *options) setup(cmd *cobra.Command) (*env, error) {
	cfg, err := o.config(cmd)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	log := o.logger(cfg)

	c, err := compat.Resolve(cfg.ControllerVersion, cfg.PluginVersion)
	if err != nil {
		return nil, err
	}
	schema, ok := c.Schema()
	if !ok {
		return nil, fmt.Errorf("controller %s with plugin %s does not support policy reports", cfg.ControllerVersion, cfg.PluginVersion)
	}
	log.V(1).Info("resolved report schema", "schema", schema.Name, "groupVersion", schema.GroupVersion.String())

	client, err := o.newClients(cfg.Kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize kubernetes clients: %w", err)
	}

	st := store.New(
		k8s.NewReportLister(client.Dynamic, schema, log),
		k8s.NewRegistry(client.Discovery, schema, log),
		log,
	)
	return &env{
		cfg:    cfg,
		log:    log,
		schema: schema,
		client: client,
		store:  st,
		engine: reportcache.New(st, reportcache.WithLogger(log)),
	}, nil
}
