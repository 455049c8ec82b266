package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/gilab/labsite/internal/client/client"
	"github.com/gilab/labsite/internal/client/config"
	"github.com/gilab/labsite/internal/client/models"
	"github.com/gilab/labsite/internal/client/querycache"
	"github.com/gilab/labsite/internal/client/services"
	"github.com/gilab/labsite/internal/client/session"
	"github.com/gilab/labsite/internal/client/staticdata"
	"github.com/gilab/labsite/internal/client/storage"
	"github.com/gilab/labsite/internal/client/tokenstore"
	"github.com/gilab/labsite/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
)

// Routes the App moves between. They mirror the web front-end.
const (
	RouteHome     = session.HomeRoute
	RouteLogin    = "/login"
	RouteRegister = "/register"
	RouteResearch = "/research"
	RouteMembers  = "/members"
	RouteNews     = "/news"
	RouteAccess   = "/access"
	RouteAdmin    = "/admin"
	RoutePublish  = "/admin/publications/new"
	RouteSettings = "/settings"
)

type App struct {
	auth    services.AuthService
	content services.ContentService
	admin   services.AdminService
	session *session.Session
	tokens  tokenstore.Store
	metrics prometheus.Gatherer
	log     logging.Logger

	reader *bufio.Reader
	out    io.Writer

	mu     sync.Mutex
	route  string
	user   string
	closer func() error
	unsub  func()
}

// NewApp wires storage, the API client, the query cache, the session and
// the services according to cfg.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	if log == nil {
		log = logging.Nop()
	}
	models.SetLogger(log)

	var (
		tokens tokenstore.Store
		closer = func() error { return nil }
	)
	switch {
	case cfg.NoPersist:
		tokens = tokenstore.NewMemory()
	default:
		repos, err := storage.InitDatabase(ctx, cfg.DatabasePath)
		if err != nil {
			log.Warn(ctx, "local storage unavailable, sign-in will not persist", "path", cfg.DatabasePath, "error", err)
			tokens = tokenstore.Disabled{}
		} else {
			tokens = tokenstore.NewPersistent(repos.DB, log)
			closer = repos.Close
		}
	}

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	api := client.New(cfg.APIBaseURL, tokens, client.WithHTTPClient(httpClient), client.WithLogger(log))

	reg := prometheus.NewRegistry()
	cache := querycache.New(querycache.Options{
		QueryRetry: cfg.QueryRetry,
		RetryBase:  cfg.RetryBase,
		Logger:     log,
		Registerer: reg,
	})

	src, err := contentSource(ctx, cfg, api, httpClient, log)
	if err != nil {
		_ = closer()
		return nil, err
	}

	a := newApp(in, out, log)
	a.tokens = tokens
	a.metrics = reg
	a.closer = closer
	a.wire(cache, api, src)
	return a, nil
}

func contentSource(ctx context.Context, cfg *config.Config, api *client.Client, httpClient *http.Client, log logging.Logger) (services.ContentSource, error) {
	if cfg.Source != config.SourceStatic {
		return services.NewAPISource(api), nil
	}

	var src staticdata.Source
	switch {
	case cfg.StaticDir != "":
		src = staticdata.NewDirSource(os.DirFS(cfg.StaticDir))
	case cfg.S3Bucket != "":
		s3src, err := staticdata.NewS3SourceFromConfig(ctx, staticdata.S3Config{
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, err
		}
		src = s3src
	default:
		httpSrc, err := staticdata.NewHTTPSource(cfg.StaticURL(), httpClient)
		if err != nil {
			return nil, err
		}
		src = httpSrc
	}
	return staticdata.NewLoader(src, log), nil
}

func newApp(in io.Reader, out io.Writer, log logging.Logger) *App {
	if log == nil {
		log = logging.Nop()
	}
	if out == nil {
		out = io.Discard
	}
	return &App{
		reader: bufio.NewReader(in),
		out:    out,
		log:    log,
		route:  RouteHome,
	}
}

// wire builds the session with the App as its navigator, then the services
// on top of it.
func (a *App) wire(cache *querycache.Cache, api *client.Client, src services.ContentSource) {
	if a.tokens == nil {
		a.tokens = tokenstore.NewMemory()
	}
	a.session = session.New(cache, api, a.tokens, a, a.log)
	api.OnUnauthorized(a.session.HandleUnauthorized)

	a.auth = services.NewAuthService(api, a.tokens, a.session, a.log)
	a.content = services.NewContentService(cache, src, a.log)
	a.admin = services.NewAdminService(api, cache, a.log)

	a.unsub = a.session.Subscribe(a.onSession)
}

func (a *App) onSession(st session.State) {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch {
	case st.User == nil:
		a.user = ""
	case st.IsAdmin:
		a.user = st.User.DisplayName() + " [admin]"
	default:
		a.user = st.User.DisplayName()
	}
}

// Navigate records the current route.
func (a *App) Navigate(route string) {
	a.mu.Lock()
	a.route = route
	a.mu.Unlock()
	a.log.Debug(context.Background(), "navigate", "route", route)
}

func (a *App) Route() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.route
}

func (a *App) isLoggedIn() bool {
	return a.session.State().IsAuthenticated
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.user == "" {
		return a.route
	}
	return fmt.Sprintf("%s %s", a.user, a.route)
}

// Close releases the local database.
func (a *App) Close() error {
	if a.unsub != nil {
		a.unsub()
	}
	if a.closer != nil {
		return a.closer()
	}
	return nil
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) heading(s string) {
	a.println(headingStyle.Render(s))
}

func (a *App) success(s string) {
	a.println(okStyle.Render(iconCheck + " " + s))
}

// Stats prints the query cache counters.
func (a *App) Stats() error {
	if a.metrics == nil {
		a.println("no metrics")
		return nil
	}
	families, err := a.metrics.Gather()
	if err != nil {
		return err
	}
	a.heading("Query cache")
	var lines []string
	for _, mf := range families {
		name := strings.TrimPrefix(mf.GetName(), "labsite_querycache_")
		for _, m := range mf.GetMetric() {
			query := ""
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "query" {
					query = lp.GetValue()
				}
			}
			lines = append(lines, fmt.Sprintf("  %-20s %-24s %g", name, query, m.GetCounter().GetValue()))
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		a.println(l)
	}
	return nil
}
