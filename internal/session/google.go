package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gofinances/gofinances/internal/common"
	"github.com/gofinances/gofinances/internal/model"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

const callbackPath = "/callback"

var errStateMismatch = fmt.Errorf("%w: state mismatch", common.ErrSignInFailed)

// GoogleProvider signs in through Google's OAuth2 authorization-code flow.
// The consent page redirects to a short-lived server on CallbackAddr.
type GoogleProvider struct {
	// OpenURL presents the consent URL to the user. Defaults to logging it.
	OpenURL func(authURL string) error
	OAuth   *oauth2.Config
	// CallbackAddr is the listen address of the redirect server, e.g. "localhost:8085".
	CallbackAddr string
	// APIOptions are passed to the userinfo client.
	APIOptions []option.ClientOption
	Timeout    time.Duration
}

// NewGoogleProvider returns a provider for the given OAuth client. An empty
// redirectURL is derived from the callback port.
func NewGoogleProvider(clientID, clientSecret string, callbackPort int, redirectURL string) *GoogleProvider {
	addr := fmt.Sprintf("localhost:%d", callbackPort)
	if redirectURL == "" {
		redirectURL = "http://" + addr + callbackPath
	}

	return &GoogleProvider{
		OAuth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  redirectURL,
			Scopes:       []string{oauth2api.UserinfoProfileScope, oauth2api.UserinfoEmailScope},
		},
		CallbackAddr: addr,
		Timeout:      5 * time.Minute,
	}
}

// Name implements Provider.
func (p *GoogleProvider) Name() string { return "google" }

type callbackResult struct {
	err  error
	code string
}

// SignIn implements Provider.
func (p *GoogleProvider) SignIn(ctx context.Context) (model.User, error) {
	if p.OAuth == nil || p.OAuth.ClientID == "" {
		return model.User{}, fmt.Errorf("%w: missing OAuth client", common.ErrSignInFailed)
	}

	listener, err := net.Listen("tcp", p.CallbackAddr)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to start callback server: %w", err)
	}

	oauthConfig := *p.OAuth
	if oauthConfig.RedirectURL == "" {
		oauthConfig.RedirectURL = "http://" + listener.Addr().String() + callbackPath
	}

	state := uuid.NewString()
	results := make(chan callbackResult, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		res := readCallback(r, state)
		if errors.Is(res.err, errStateMismatch) {
			// stale tabs and prefetches must not end the flow
			slog.Warn("Ignoring OAuth callback with unexpected state", "remote", r.RemoteAddr)
			http.Error(w, "unexpected state", http.StatusBadRequest)
			return
		}
		select {
		case results <- res:
		default:
		}
		if res.err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = fmt.Fprint(w, `<html><body>
				<h1>Falha na autenticação</h1>
				<p>Volte ao terminal e tente novamente.</p>
			</body></html>`)
			return
		}
		_, _ = fmt.Fprint(w, `<html><body>
			<h1>Autenticado!</h1>
			<p>Você já pode fechar esta janela e voltar ao terminal.</p>
			<script>window.setTimeout(function(){window.close();}, 3000);</script>
		</body></html>`)
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if serveErr := server.Serve(listener); !errors.Is(serveErr, http.ErrServerClosed) {
			select {
			case results <- callbackResult{err: fmt.Errorf("callback server failed: %w", serveErr)}:
			default:
			}
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Error shutting down callback server", "error", err)
		}
	}()

	authURL := oauthConfig.AuthCodeURL(state)
	open := p.OpenURL
	if open == nil {
		open = logURL
	}
	if err := open(authURL); err != nil {
		return model.User{}, fmt.Errorf("failed to open consent page: %w", err)
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	var res callbackResult
	select {
	case res = <-results:
	case <-ctx.Done():
		return model.User{}, ctx.Err()
	case <-time.After(timeout):
		return model.User{}, fmt.Errorf("%w: no response received within %s", common.ErrSignInCanceled, timeout)
	}
	if res.err != nil {
		return model.User{}, res.err
	}

	token, err := oauthConfig.Exchange(ctx, res.code)
	if err != nil {
		return model.User{}, fmt.Errorf("%w: failed to exchange authorization code: %w", common.ErrSignInFailed, err)
	}

	return p.fetchProfile(ctx, oauthConfig.Client(ctx, token))
}

func (p *GoogleProvider) fetchProfile(ctx context.Context, client *http.Client) (model.User, error) {
	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, p.APIOptions...)
	svc, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to create userinfo client: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return model.User{}, fmt.Errorf("%w: failed to fetch profile: %w", common.ErrSignInFailed, err)
	}

	name := info.GivenName
	if name == "" {
		name = info.Name
	}

	user := model.User{
		ID:    info.Id,
		Name:  name,
		Email: info.Email,
		Photo: info.Picture,
	}
	if err := user.Validate(); err != nil {
		return model.User{}, fmt.Errorf("%w: %w", common.ErrSignInFailed, err)
	}
	return user, nil
}

func readCallback(r *http.Request, state string) callbackResult {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		return callbackResult{err: fmt.Errorf("%w: %s", common.ErrSignInCanceled, e)}
	}
	if q.Get("state") != state {
		return callbackResult{err: errStateMismatch}
	}
	code := q.Get("code")
	if code == "" {
		return callbackResult{err: fmt.Errorf("%w: no authorization code received", common.ErrSignInFailed)}
	}
	return callbackResult{code: code}
}

func logURL(authURL string) error {
	slog.Info("Google sign-in required")
	slog.Info("Please visit this URL to authenticate", "url", authURL)
	slog.Info("Waiting for authentication...")
	return nil
}
