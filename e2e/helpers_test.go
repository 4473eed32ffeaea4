//go:build e2e

package e2e

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"climate-api/internal/dataset"
)

const repoRootRel = ".."               // relative to ./e2e
const mainPkgRel = "./cmd/climate-api" // service entrypoint

var fixture = dataset.Fixture{
	Stations: []dataset.Station{
		{Station: "USC00519397", Name: "WAIKIKI 717.2, HI US", Latitude: 21.2716, Longitude: -157.8168, Elevation: 3},
		{Station: "USC00513117", Name: "KANEOHE 838.1, HI US", Latitude: 21.4234, Longitude: -157.8015, Elevation: 14.6},
	},
	Measurements: []dataset.Measurement{
		{Station: "USC00519397", Date: "2016-08-22", Prcp: dataset.Float(0.4), Tobs: 75},
		{Station: "USC00519397", Date: "2016-08-23", Prcp: dataset.Float(0), Tobs: 81},
		{Station: "USC00513117", Date: "2017-01-01", Tobs: 62},
		{Station: "USC00519397", Date: "2017-08-23", Prcp: dataset.Float(0), Tobs: 81},
	},
}

// expectedRoutes holds the response bodies every backend must produce for fixture.
var expectedRoutes = []struct {
	path   string
	status int
	body   string
}{
	{path: "/healthz", status: http.StatusOK, body: `{"status":"ok"}`},
	{path: "/api/v1.0/precipitation", status: http.StatusOK, body: `[{"2016-08-22":0.4},{"2016-08-23":0},{"2017-01-01":null},{"2017-08-23":0}]`},
	{path: "/api/v1.0/stations", status: http.StatusOK, body: `["KANEOHE 838.1, HI US","WAIKIKI 717.2, HI US"]`},
	{path: "/api/v1.0/tobs", status: http.StatusOK, body: `[81,62,81]`},
	{path: "/api/v1.0/2017-01-01", status: http.StatusOK, body: `{"TMIN":62,"TMAX":81,"TAVG":71.5}`},
	{path: "/api/v1.0/2016-08-22/2016-08-23", status: http.StatusOK, body: `{"TMIN":75,"TMAX":81,"TAVG":78}`},
	{path: "/api/v1.0/2030-01-01", status: http.StatusOK, body: `{"TMIN":null,"TMAX":null,"TAVG":null}`},
	{path: "/api/v1.0/not-a-date", status: http.StatusBadRequest},
}

func checkRoutes(t *testing.T, client *http.Client, baseURL string) {
	t.Helper()

	for _, tt := range expectedRoutes {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := client.Get(baseURL + tt.path)
			if err != nil {
				t.Fatalf("GET %s: %v", tt.path, err)
			}
			defer resp.Body.Close()

			b, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatalf("read body: %v", err)
			}
			if resp.StatusCode != tt.status {
				t.Fatalf("status=%d want=%d (body %s)", resp.StatusCode, tt.status, b)
			}
			if tt.body != "" && strings.TrimSpace(string(b)) != tt.body {
				t.Errorf("body=%s\nwant=%s", strings.TrimSpace(string(b)), tt.body)
			}
		})
	}
}

// startServer builds the service binary and runs it with env appended to the
// process environment. It returns the base URL once /healthz answers 200.
func startServer(t *testing.T, env ...string) (*exec.Cmd, string) {
	t.Helper()

	bin := buildBinary(t, repoRootPath(t))
	addr := pickFreeAddr(t)

	cmd := exec.Command(bin)
	cmd.Env = append(os.Environ(),
		"APP_ENV=dev",
		"LOG_LEVEL=info",
		"HTTP_ADDR="+addr,
	)
	cmd.Env = append(cmd.Env, env...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
	})

	base := "http://" + addr
	waitForOK(t, &http.Client{Timeout: 2 * time.Second}, base+"/healthz", 10*time.Second)
	return cmd, base
}

func repoRootPath(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}

	repo := filepath.Clean(filepath.Join(wd, repoRootRel))
	if _, err := os.Stat(filepath.Join(repo, "go.mod")); err != nil {
		t.Fatalf("repo root %q does not contain go.mod: %v", repo, err)
	}

	return repo
}

func buildBinary(t *testing.T, repoRoot string) string {
	t.Helper()

	out := filepath.Join(t.TempDir(), "climate-api")

	build := exec.Command("go", "build", "-o", out, mainPkgRel)
	build.Dir = repoRoot
	build.Env = os.Environ()

	b, err := build.CombinedOutput()
	if err != nil {
		t.Fatalf("go build failed: %v\n%s", err, string(b))
	}

	return out
}

func pickFreeAddr(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen :0: %v", err)
	}
	defer ln.Close()

	return ln.Addr().String()
}

func waitForOK(t *testing.T, client *http.Client, url string, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server not healthy after %s: %s", timeout, url)
}

func stopServer(t *testing.T, cmd *exec.Cmd) {
	t.Helper()

	_ = cmd.Process.Signal(syscall.SIGTERM)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		t.Fatalf("server did not exit in time")
	case err := <-done:
		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				t.Fatalf("server exited non-zero: %v", err)
			}
			t.Fatalf("server wait error: %v", err)
		}
	}
}
