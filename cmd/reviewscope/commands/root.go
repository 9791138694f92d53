package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"reviewscope-backend/internal/app"
	"reviewscope-backend/internal/components/fault"
	"reviewscope-backend/internal/components/telemetry"
	"reviewscope-backend/internal/config"
	"reviewscope-backend/internal/service"
	"reviewscope-backend/pkg/serviceutil"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	verbose     bool
	remoteURL   string
	remoteToken string
)

var rootCmd = &cobra.Command{
	Use:   "reviewscope",
	Short: "reviewscope scrapes product reviews and summarizes their sentiment.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", config.DefaultFile, "The configuration file, a .local variant next to it overrides it.")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log debug reports.")
	flags.StringVar(&remoteURL, "remote", "", "Talk to a reviewscope service at this url instead of running locally.")
	flags.StringVar(&remoteToken, "token", os.Getenv("REVIEWSCOPE_TOKEN"), "The access token of the remote service.")
}

// ExecuteContext runs the command line, a returned error has already been
// printed.
func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, describeError(err))
	}
	return err
}

func describeError(err error) string {
	var hint string
	switch fault.KindOf(err) {
	case fault.Unknown:
		return fmt.Sprintf("error: %v", err)
	case fault.SessionInitFailed:
		hint = "could not start a browser session, check scraper.browser in the config"
	case fault.LoadTimeout:
		hint = "the page did not show any reviews in time"
	case fault.LoadFailed:
		hint = "the page could not be loaded"
	case fault.ElementStale:
		hint = "the page changed while its reviews were read"
	case fault.PersistenceError:
		hint = "the database operation failed"
	case fault.ClassificationError:
		hint = "no review could be classified"
	case fault.InvalidInput:
		hint = "invalid input"
	case fault.NotFound:
		hint = "no such record"
	default:
		hint = fault.KindOf(err).String()
	}
	return fmt.Sprintf("%s: %v", hint, err)
}

// reviewService is implemented both by service.Service (in process) and
// service.ReviewServiceClient (--remote).
type reviewService interface {
	Process(ctx context.Context, req *connect.Request[service.ProcessRequest]) (*connect.Response[service.ProcessResponse], error)
	ListAnalyses(ctx context.Context, req *connect.Request[service.ListAnalysesRequest]) (*connect.Response[service.ListAnalysesResponse], error)
	GetAnalysis(ctx context.Context, req *connect.Request[service.GetAnalysisRequest]) (*connect.Response[service.GetAnalysisResponse], error)
	DeleteAnalysis(ctx context.Context, req *connect.Request[service.DeleteAnalysisRequest]) (*connect.Response[service.DeleteAnalysisResponse], error)
	ListReviews(ctx context.Context, req *connect.Request[service.ListReviewsRequest]) (*connect.Response[service.ListReviewsResponse], error)
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("read config: %w", err)
	}
	return cfg, nil
}

func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a, err := app.Open(ctx, cfg, telemetry.SlogAPI{})
	if err != nil {
		return nil, fmt.Errorf("open app: %w", err)
	}
	return a, nil
}

// openService returns the service to run a command against and a function
// releasing it.
func openService(ctx context.Context) (reviewService, func(), error) {
	if remoteURL != "" {
		client := service.NewReviewServiceClient(
			http.DefaultClient,
			remoteURL,
			connect.WithInterceptors(serviceutil.ProvideAccessTokenInterceptor(remoteToken)),
		)
		return client, func() {}, nil
	}

	a, err := openApp(ctx)
	if err != nil {
		return nil, nil, err
	}
	svc := service.NewService(a.Pipeline, a.Store)
	return svc, func() { a.Close() }, nil
}
