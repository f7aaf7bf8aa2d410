package preflight

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"phrasebook/internal/auth"
	"phrasebook/internal/config"
	"phrasebook/internal/dictionary"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDatabase opens the phrase store and reports how many phrases it holds.
func CheckDatabase(ctx context.Context, cfg *config.Config) Result {
	const name = "Database"

	store, err := dictionary.Open(cfg)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", cfg.Paths.Database, err)}
	}
	defer store.Close()

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(checkCtx); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: ping: %v)", store.Path(), err)}
	}
	count, err := store.Count(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", store.Path(), err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d phrases)", store.Path(), count)}
}

// CheckUsers verifies the web server has at least one login configured.
func CheckUsers(cfg *config.Config) Result {
	const name = "Web users"

	users := auth.ParseUsers(cfg.Server.Users)
	if len(users) == 0 {
		return Result{Name: name, Detail: "none configured (set server.users or PHRASEBOOK_USERS)"}
	}
	return Result{Name: name, Passed: true, Detail: strings.Join(users.Names(), ", ")}
}

// CheckServer probes a running web server's health endpoint.
func CheckServer(ctx context.Context, baseURL string) Result {
	const name = "Web server"

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	client := &http.Client{Timeout: 2 * time.Second}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, base+"/api/health", nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("not reachable (%v)", err)}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: "not running"}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("running at %s", base)}
	}
	return Result{Name: name, Detail: fmt.Sprintf("unhealthy (%d)", resp.StatusCode)}
}

// CheckServerFromConfig probes the server at the configured bind address.
// A server that is not running is reported as passed; it is optional.
func CheckServerFromConfig(ctx context.Context, cfg *config.Config) Result {
	if cfg == nil {
		return Result{Name: "Web server", Detail: "Unknown"}
	}
	check := CheckServer(ctx, "http://"+cfg.Server.Bind)
	if !check.Passed && check.Detail == "not running" {
		return Result{Name: check.Name, Passed: true, Detail: "not running"}
	}
	return check
}
