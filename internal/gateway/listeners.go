// ABOUTME: Listener construction for plain TCP, direct TLS/ACME, and Tailscale tsnet
// ABOUTME: Cert sourcing follows config: static pair, autocert, or Tailscale-provisioned

package gateway

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"golang.org/x/crypto/acme/autocert"
	"tailscale.com/ipn/ipnstate"
	"tailscale.com/tsnet"

	"github.com/parasol-research/persona-gateway/internal/config"
)

// setupListener creates the HTTP listener based on configuration
// (Tailscale or TCP, optionally TLS-wrapped).
func (g *Gateway) setupListener(ctx context.Context) (net.Listener, error) {
	if g.config.Tailscale.Enabled {
		g.warnIgnoredAddress()
		return g.setupTailscaleListener(ctx)
	}
	return g.setupTCPListener()
}

// warnIgnoredAddress logs a warning if a listener address is configured but
// Tailscale is enabled.
func (g *Gateway) warnIgnoredAddress() {
	if g.config.Server.HTTPAddr != "" {
		g.logger.Warn("server.http_addr is ignored when tailscale is enabled",
			"http_addr", g.config.Server.HTTPAddr,
		)
	}
}

// setupTCPListener creates a standard TCP listener, TLS-wrapped when configured.
func (g *Gateway) setupTCPListener() (net.Listener, error) {
	ln, err := net.Listen("tcp", g.config.Server.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", g.config.Server.HTTPAddr, err)
	}

	if !g.config.TLS.Enabled {
		return ln, nil
	}

	tlsLn, err := g.wrapTLS(ln)
	if err != nil {
		_ = ln.Close()
		return nil, err
	}
	return tlsLn, nil
}

// wrapTLS wraps a TCP listener with TLS using either ACME or a static cert pair.
func (g *Gateway) wrapTLS(ln net.Listener) (net.Listener, error) {
	if g.config.TLS.ACME.Enabled {
		return g.wrapACME(ln)
	}

	cert, err := tls.LoadX509KeyPair(g.config.TLS.CertFile, g.config.TLS.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("loading TLS key pair: %w", err)
	}

	g.logger.Info("enabling HTTPS with static certificate", "cert_file", g.config.TLS.CertFile)
	return tls.NewListener(ln, &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}), nil
}

// wrapACME wraps a listener with TLS backed by automatically provisioned
// Let's Encrypt certificates.
func (g *Gateway) wrapACME(ln net.Listener) (net.Listener, error) {
	acmeCfg := g.config.TLS.ACME

	cacheDir, err := resolveStateDir(acmeCfg.CacheDir, "autocert")
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cacheDir, 0700); err != nil {
		return nil, fmt.Errorf("creating autocert cache dir: %w", err)
	}

	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(acmeCfg.Hostnames...),
		Cache:      autocert.DirCache(cacheDir),
		Email:      acmeCfg.Email,
	}

	g.logger.Info("enabling HTTPS with ACME certificates",
		"hostnames", acmeCfg.Hostnames,
		"cache_dir", cacheDir,
	)

	tlsCfg := manager.TLSConfig()
	tlsCfg.MinVersion = tls.VersionTLS12
	return tls.NewListener(ln, tlsCfg), nil
}

// resolveStateDir returns the configured directory, or a per-component default
// under the user's local state dir when unset.
func resolveStateDir(configured, component string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory for %s state (set the directory explicitly): %w", component, err)
	}
	return filepath.Join(homeDir, ".local", "share", "persona-gateway", component), nil
}

// resolveTailscaleAuthKey returns the auth key from config or environment.
func resolveTailscaleAuthKey(configured string) (string, error) {
	authKey := configured
	if authKey == "" {
		authKey = os.Getenv("TS_AUTHKEY")
	}
	if authKey == "" {
		return "", errors.New("tailscale auth key required: set auth_key in config or TS_AUTHKEY environment variable (get one at https://login.tailscale.com/admin/settings/keys)")
	}
	return authKey, nil
}

// setupTailscaleListener creates a tsnet node and returns its HTTP listener.
func (g *Gateway) setupTailscaleListener(ctx context.Context) (net.Listener, error) {
	tsCfg := g.config.Tailscale

	stateDir, err := resolveStateDir(tsCfg.StateDir, "tailscale")
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(stateDir, 0700); err != nil {
		return nil, fmt.Errorf("creating tailscale state dir: %w", err)
	}

	authKey, err := resolveTailscaleAuthKey(tsCfg.AuthKey)
	if err != nil {
		return nil, err
	}

	g.tsnetServer = &tsnet.Server{
		Hostname:  tsCfg.Hostname,
		Dir:       stateDir,
		Ephemeral: tsCfg.Ephemeral,
		AuthKey:   authKey,
	}

	g.logger.Info("starting tailscale node", "hostname", tsCfg.Hostname, "state_dir", stateDir, "ephemeral", tsCfg.Ephemeral)
	status, err := g.tsnetServer.Up(ctx)
	if err != nil {
		_ = g.tsnetServer.Close()
		return nil, fmt.Errorf("starting tailscale: %w", err)
	}
	g.logTailscaleStatus(tsCfg.Hostname, status)

	ln, err := g.createTailscaleListener(tsCfg)
	if err != nil {
		_ = g.tsnetServer.Close()
		return nil, err
	}
	return ln, nil
}

// logTailscaleStatus logs info about the tailscale node status.
func (g *Gateway) logTailscaleStatus(hostname string, status *ipnstate.Status) {
	var tsAddr, dnsName string
	if len(status.TailscaleIPs) > 0 {
		tsAddr = status.TailscaleIPs[0].String()
	} else {
		g.logger.Warn("tailscale node has no IP addresses assigned")
	}
	if status.Self != nil {
		dnsName = status.Self.DNSName
	}
	g.logger.Info("tailscale node ready", "hostname", hostname, "tailscale_ip", tsAddr, "dns_name", dnsName)
}

// createTailscaleListener creates the appropriate listener based on config.
func (g *Gateway) createTailscaleListener(tsCfg config.TailscaleConfig) (net.Listener, error) {
	switch {
	case tsCfg.Funnel:
		g.logger.Info("enabling tailscale funnel (public HTTPS) on :443")
		ln, err := g.tsnetServer.ListenFunnel("tcp", ":443")
		if err != nil {
			return nil, fmt.Errorf("listening on tailscale funnel port: %w", err)
		}
		return ln, nil
	case tsCfg.HTTPS:
		return g.createTailscaleTLSListener()
	default:
		ln, err := g.tsnetServer.Listen("tcp", ":80")
		if err != nil {
			return nil, fmt.Errorf("listening on tailscale HTTP port: %w", err)
		}
		return ln, nil
	}
}

// createTailscaleTLSListener creates a TLS listener using Tailscale's
// auto-provisioned certs.
func (g *Gateway) createTailscaleTLSListener() (net.Listener, error) {
	g.logger.Info("enabling HTTPS with Tailscale certs on :443")
	ln, err := g.tsnetServer.Listen("tcp", ":443")
	if err != nil {
		return nil, fmt.Errorf("listening on tailscale HTTPS port: %w", err)
	}
	lc, err := g.tsnetServer.LocalClient()
	if err != nil {
		_ = ln.Close()
		return nil, fmt.Errorf("getting tailscale local client: %w", err)
	}
	return tls.NewListener(ln, &tls.Config{
		GetCertificate: lc.GetCertificate,
		MinVersion:     tls.VersionTLS12,
	}), nil
}
