package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/homehero/heroctl/internal/models"
)

// FederatedOptions configures the browser-based federated sign-in flow.
type FederatedOptions struct {
	// ListenAddr is the local callback listener address. Defaults to a
	// random loopback port.
	ListenAddr string
	// OpenURL receives the provider authorization URL the user must visit.
	// Defaults to printing nothing; the CLI prints it.
	OpenURL func(url string) error
}

// SignInFederated runs the federated (popup-equivalent) sign-in flow: it
// starts a loopback callback server, hands the authorization URL to the
// caller, waits for the provider redirect, and exchanges the grant code for
// a session.
func (c *Client) SignInFederated(ctx context.Context, opts FederatedOptions) (*models.Identity, error) {
	if opts.ListenAddr == "" {
		opts.ListenAddr = "127.0.0.1:0"
	}

	state, err := randomState()
	if err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", opts.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to start callback listener: %w", err)
	}

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Listener = listener
	e.GET("/callback", func(ec echo.Context) error {
		if ec.QueryParam("state") != state {
			errCh <- fmt.Errorf("federated callback state mismatch")
			return ec.String(http.StatusBadRequest, "state mismatch, please retry sign-in")
		}
		if msg := ec.QueryParam("error"); msg != "" {
			errCh <- fmt.Errorf("provider denied federated sign-in: %s", msg)
			return ec.String(http.StatusBadRequest, "sign-in was denied")
		}
		codeCh <- ec.QueryParam("code")
		return ec.String(http.StatusOK, "Signed in. You can close this window.")
	})

	go func() {
		if err := e.Start(""); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("callback server failed: %w", err)
		}
	}()
	defer e.Shutdown(context.Background()) //nolint:errcheck

	redirectURI := fmt.Sprintf("http://%s/callback", listener.Addr().String())
	authorizeURL := fmt.Sprintf("%s/v1/oauth/authorize?%s", c.baseURL, url.Values{
		"redirect_uri": {redirectURI},
		"state":        {state},
	}.Encode())

	if opts.OpenURL != nil {
		if err := opts.OpenURL(authorizeURL); err != nil {
			return nil, fmt.Errorf("failed to open authorization URL: %w", err)
		}
	}

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var resp sessionResponse
	if err := c.post(ctx, "/v1/oauth/exchange", map[string]string{"code": code}, &resp); err != nil {
		return nil, err
	}
	return c.adoptSession(resp)
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
