package bootstrap

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"net-troubleshooter/internal/backend"
	"net-troubleshooter/internal/config"
	"net-troubleshooter/internal/domain"
	"net-troubleshooter/internal/session"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// App wires settings, the backend client, and the diagnostic session to the UI.
type App struct {
	Store   config.Store
	Session *session.Session

	client *backendRef
	assets fs.FS

	mu         sync.Mutex
	settings   domain.Settings
	runtimeCtx context.Context
	quick      domain.QuickStatus
}

// backendRef holds the active backend client so saving settings can swap the
// client without rebuilding the session.
type backendRef struct {
	mu     sync.RWMutex
	client *backend.Client
}

func newBackendRef(client *backend.Client) *backendRef {
	return &backendRef{client: client}
}

func (r *backendRef) get() *backend.Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.client
}

func (r *backendRef) swap(client *backend.Client) {
	r.mu.Lock()
	r.client = client
	r.mu.Unlock()
}

// Diagnose forwards to the active client.
func (r *backendRef) Diagnose(ctx context.Context, req domain.Request) ([]byte, error) {
	return r.get().Diagnose(ctx, req)
}

// FetchArtifact forwards to the active client.
func (r *backendRef) FetchArtifact(ctx context.Context, req domain.Request, kind domain.ArtifactKind) (domain.Artifact, error) {
	return r.get().FetchArtifact(ctx, req, kind)
}

// New builds the application with persisted settings.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures embedded frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	store := config.NewJSONStore(config.DefaultPath())
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	app := &App{
		Store:    store,
		client:   newBackendRef(backend.New(settings.BackendURL, settings.Timeout())),
		assets:   assets,
		settings: settings,
	}
	app.Session = session.New(app.client, app.pushEvent)
	return app, nil
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "Network Troubleshooter",
		Width:       1180,
		Height:      780,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown: func(ctx context.Context) {
			a.mu.Lock()
			defer a.mu.Unlock()
			a.runtimeCtx = nil
		},
		Bind: []interface{}{a},
	})
}

// Startup stores the Wails runtime context for push events and primes the
// status panel in the background.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	a.runtimeCtx = ctx
	a.mu.Unlock()

	go a.RefreshQuickStatus()
}

// StartDiagnosis validates input and launches a diagnosis run for the target.
func (a *App) StartDiagnosis(target, mode string) (domain.Run, error) {
	req := domain.Request{Target: target, Mode: domain.Mode(mode)}
	if _, err := a.Session.Start(req); err != nil {
		return domain.Run{}, err
	}

	return a.Session.State().Run, nil
}

// CancelDiagnosis abandons the active run, if any.
func (a *App) CancelDiagnosis() {
	a.Session.Cancel()
}

// SessionState returns the current run plus the last applied results.
func (a *App) SessionState() session.State {
	return a.Session.State()
}

// DiagnosisEvents returns session events with sequence greater than sinceSeq.
func (a *App) DiagnosisEvents(sinceSeq int64) []session.Event {
	return a.Session.Events(sinceSeq)
}

// FixScriptPreview returns the fix script captured by the last successful run.
func (a *App) FixScriptPreview() (string, error) {
	state := a.Session.State()
	if state.FixScript == "" {
		return "", fmt.Errorf("no fix script available, run a diagnosis first")
	}
	return state.FixScript, nil
}

// QuickStatus returns the last fetched service reachability panel.
func (a *App) QuickStatus() domain.QuickStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.quick
}

// RefreshQuickStatus asks the backend for service reachability. An
// unreachable backend is reported as panel data rather than an error so the
// status card always renders.
func (a *App) RefreshQuickStatus() domain.QuickStatus {
	client := a.client.get()
	status, err := client.QuickStatus(context.Background())
	if err != nil {
		logrus.Debugf("quick status: %v", err)
		status = domain.QuickStatus{
			Frontend:      domain.ServiceStatus{Status: "online"},
			Backend:       domain.ServiceStatus{Status: "unreachable", URL: client.BaseURL()},
			OverallStatus: "Backend unreachable",
		}
	}

	a.mu.Lock()
	a.quick = status
	a.mu.Unlock()

	return status
}

// GetSettings loads and returns the latest persisted settings.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	a.mu.Lock()
	a.settings = settings
	a.mu.Unlock()

	return settings, nil
}

// SaveSettings normalizes and persists settings, then swaps the backend
// client so the next run talks to the new address with the new timeout.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	normalized := config.Normalize(settings)
	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	a.mu.Lock()
	a.settings = normalized
	a.mu.Unlock()
	a.client.swap(backend.New(normalized.BackendURL, normalized.Timeout()))

	logrus.Infof("settings saved: backend %s, mode %s, timeout %ds",
		normalized.BackendURL, normalized.Mode, normalized.TimeoutSeconds)
	return normalized, nil
}

// pushEvent mirrors session events onto the Wails event bridge.
func (a *App) pushEvent(event session.Event) {
	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil {
		wailsruntime.EventsEmit(ctx, "diagnosis:event", event)
	}
}

// runtimeContext returns the current Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}
