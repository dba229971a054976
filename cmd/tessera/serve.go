package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/vango-dev/tessera/internal/config"
	terrors "github.com/vango-dev/tessera/internal/errors"
	"github.com/vango-dev/tessera/pkg/resource"
	"github.com/vango-dev/tessera/pkg/server"
)

func serveCmd() *cobra.Command {
	var (
		dir   string
		addr  string
		codec string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo server",
		Long: `Run a Tessera server hosting the demo window.

Settings come from tessera.yaml (or tessera.yml, tessera.json) in the
config directory; without a file the defaults apply.

Examples:
  tessera serve
  tessera serve --addr=:9000
  tessera serve --config=/etc/tessera --codec=cbor`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(dir)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if codec != "" {
				cfg.Protocol.Codec = codec
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&dir, "config", "c", ".", "Directory holding the configuration file")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")
	cmd.Flags().StringVar(&codec, "codec", "", "Default payload codec: binary or cbor")

	return cmd
}

func loadConfig(dir string) (*config.Config, error) {
	if !config.Exists(dir) {
		return config.New(), nil
	}
	return config.Load(dir)
}

func runServe(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := cfg.Log.NewLogger(os.Stderr)

	reg, err := buildResources(cfg.Resources)
	if err != nil {
		return err
	}

	srv := server.New(server.FromConfig(cfg), demoApp,
		server.WithLogger(logger),
		server.WithResources(reg),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	printBanner()
	logger.Info("serving",
		"address", cfg.Server.Addr,
		"websocket", cfg.Server.WebSocketPath,
		"codec", cfg.Protocol.Codec,
		"resources", cfg.Resources.Backend)

	if err := srv.Run(ctx); err != nil && !errors.Is(err, server.ErrServerClosed) {
		return terrors.FromError(err, "T062")
	}
	return nil
}

// demoSource is the registry id of the configured resource backend.
const demoSource = "static"

// buildResources creates the registry for the configured backend.
func buildResources(rc config.ResourcesConfig) (*resource.Registry, error) {
	reg := resource.NewRegistry()
	switch rc.Backend {
	case config.BackendMemory, "":
		mem := resource.NewMemorySource()
		mem.Put("readme.txt", "text/plain; charset=utf-8", []byte("Served by tessera from memory.\n"))
		reg.RegisterAs(demoSource, mem)
	case config.BackendDir:
		if _, err := os.Stat(rc.Dir); err != nil {
			return nil, terrors.New("T066").WithField("resources.dir").Wrap(err)
		}
		reg.RegisterAs(demoSource, resource.NewFSSource(os.DirFS(rc.Dir)))
	case config.BackendS3:
		reg.RegisterAs(demoSource, resource.NewS3Source(newS3Client(rc.S3), rc.S3.Bucket, rc.S3.Prefix))
	default:
		return nil, terrors.New("T066").WithField("resources.backend")
	}
	return reg, nil
}

// newS3Client builds a client from the configured region and the standard
// AWS_* environment credentials.
func newS3Client(sc config.S3Config) *s3.Client {
	region := sc.Region
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	opts := s3.Options{
		Region: region,
		Credentials: aws.NewCredentialsCache(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
					SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
					SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
					Source:          "environment",
				}, nil
			})),
	}
	if endpoint := os.Getenv("AWS_ENDPOINT_URL_S3"); endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}
