// ABOUTME: SSH+SOCKS5 proxy dialer for reaching the API through a jump host
// ABOUTME: Accepts ssh+socks5://user@host:port?private-key=/path/to/key

package client

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	proxy "github.com/cloudfoundry/socks5-proxy"
)

// NewSOCKS5DialContext creates a dial function for SSH+SOCKS5 proxy connections.
// The SSH tunnel is opened lazily on first dial and reused afterwards.
func NewSOCKS5DialContext(allProxy string) (DialContextFunc, error) {
	proxyURL, err := url.Parse(strings.TrimPrefix(allProxy, "ssh+"))
	if err != nil {
		return nil, fmt.Errorf("invalid proxy URL: %w", err)
	}
	if proxyURL.Scheme != "socks5" {
		return nil, fmt.Errorf("unsupported proxy scheme %q", proxyURL.Scheme)
	}

	username := ""
	if proxyURL.User != nil {
		username = proxyURL.User.Username()
	}

	keyPath, err := validateKeyPath(proxyURL.Query().Get("private-key"))
	if err != nil {
		return nil, err
	}
	privateKey, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read SSH private key: %w", err)
	}

	socks5Proxy := proxy.NewSocks5Proxy(proxy.NewHostKey(), log.Default(), 1*time.Minute)

	var (
		dialer proxy.DialFunc
		mut    sync.Mutex
	)

	return func(ctx context.Context, network, address string) (net.Conn, error) {
		mut.Lock()
		if dialer == nil {
			d, err := socks5Proxy.Dialer(username, string(privateKey), proxyURL.Host)
			if err != nil {
				mut.Unlock()
				return nil, fmt.Errorf("error creating SOCKS5 dialer: %w", err)
			}
			dialer = d
		}
		dial := dialer
		mut.Unlock()
		return dial(network, address)
	}, nil
}

// validateKeyPath rejects empty, relative-traversal and non-regular key paths
func validateKeyPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("proxy URL missing required 'private-key' query param")
	}
	if strings.Contains(path, "..") {
		return "", fmt.Errorf("private-key path must not contain '..'")
	}
	clean := filepath.Clean(path)
	info, err := os.Stat(clean)
	if err != nil {
		return "", fmt.Errorf("private-key: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("private-key %s is not a regular file", clean)
	}
	return clean, nil
}
