package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/szopper/go-szopper/config"
	"github.com/szopper/go-szopper/listfile"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type device struct {
	t       *testing.T
	fs      afero.Fs
	dataDir string
	config  string
}

func newTestDevice(t *testing.T) *device {
	return &device{t: t, fs: afero.NewMemMapFs(), dataDir: t.TempDir()}
}

func (d *device) args(args ...string) []string {
	base := []string{"--data-dir", d.dataDir}
	if !slices.Contains(args, "--log-level") {
		base = append(base, "--log-level", "error")
	}
	if d.config != "" {
		base = append(base, "--config", d.config)
	}
	return append(args, base...)
}

func (d *device) exec(ctx context.Context, args ...string) (string, error) {
	var out bytes.Buffer
	err := d.execTo(ctx, &out, args...)
	return out.String(), err
}

func (d *device) execTo(ctx context.Context, out io.Writer, args ...string) error {
	root := newRootCmd(d.fs)
	root.SetArgs(d.args(args...))
	root.SetOut(out)
	root.SetErr(out)
	return root.ExecuteContext(ctx)
}

type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (d *device) run(args ...string) string {
	d.t.Helper()
	out, err := d.exec(context.Background(), args...)
	require.NoError(d.t, err, out)
	return out
}

func TestItemCommands(t *testing.T) {
	d := newTestDevice(t)
	require.Contains(t, d.run("list"), "the list is empty")

	require.Contains(t, d.run("add", "milk"), `added "milk"`)
	d.run("add", "rye", "bread")
	d.run("add", "eggs")
	require.Equal(t, "  1 [ ] milk\n  2 [ ] rye bread\n  3 [ ] eggs\n", d.run("list"))

	require.Contains(t, d.run("toggle", "2"), `"rye bread" is bought`)
	d.run("rename", "1", "oat", "milk")
	d.run("reorder", "3", "2")
	require.Equal(t, "  1 [ ] eggs\n  2 [x] rye bread\n  3 [ ] oat milk\n", d.run("list"))

	d.run("reset")
	d.run("remove", "1")
	require.Equal(t, "  1 [ ] rye bread\n  2 [ ] oat milk\n", d.run("list"))

	_, err := d.exec(context.Background(), "toggle", "5")
	require.ErrorContains(t, err, "no item at position 5")
	_, err = d.exec(context.Background(), "remove", "missing-id")
	require.Error(t, err)
}

func TestItemByID(t *testing.T) {
	d := newTestDevice(t)
	d.run("add", "milk")
	fields := strings.Fields(d.run("list", "-v"))
	require.NotEmpty(t, fields)
	id := fields[len(fields)-1]
	require.Contains(t, d.run("toggle", id), `"milk" is bought`)
}

func TestDeviceIDPersisted(t *testing.T) {
	d := newTestDevice(t)
	d.run("list")
	first, err := os.ReadFile(filepath.Join(d.dataDir, deviceIDFile))
	require.NoError(t, err)
	d.run("list")
	second, err := os.ReadFile(filepath.Join(d.dataDir, deviceIDFile))
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.NotEmpty(t, strings.TrimSpace(string(first)))
}

// entries strips positions from list output.
func entries(out string) []string {
	var rst []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		_, entry, _ := strings.Cut(strings.TrimSpace(line), " ")
		rst = append(rst, entry)
	}
	return rst
}

func TestDataDirLocked(t *testing.T) {
	d := newTestDevice(t)
	cfg := config.DefaultConfig()
	cfg.DataDir = d.dataDir
	cfg.Finalize()
	c := &cli{cfg: cfg, logger: zap.NewNop(), fs: d.fs}
	a, err := c.open()
	require.NoError(t, err)
	defer a.Close()

	_, err = d.exec(context.Background(), "list")
	require.ErrorIs(t, err, errLocked)
}

func TestExportImport(t *testing.T) {
	src := newTestDevice(t)
	src.run("add", "milk")
	src.run("add", "bread")
	src.run("toggle", "1")
	require.Contains(t, src.run("export", "/lists/shared.json"), "exported 2 items")

	list, err := listfile.Read(src.fs, "/lists/shared.json")
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	require.NotEmpty(t, list.DeviceID)

	dst := newTestDevice(t)
	dst.fs = src.fs
	dst.run("add", "eggs")
	require.Contains(t, dst.run("import", "/lists/shared.json"), "the list has 3 items")
	require.ElementsMatch(t, []string{"[ ] eggs", "[x] milk", "[ ] bread"}, entries(dst.run("list")))

	require.Contains(t, dst.run("import", "--replace", "/lists/shared.json"), "the list has 2 items")
	require.Equal(t, []string{"[x] milk", "[ ] bread"}, entries(dst.run("list")))

	_, err = dst.exec(context.Background(), "import", "/lists/missing.json")
	require.Error(t, err)
}

func TestInvalidConfig(t *testing.T) {
	d := newTestDevice(t)
	_, err := d.exec(context.Background(), "list", "--log-level", "loud")
	require.ErrorContains(t, err, "log.level")

	_, err = d.exec(context.Background(), "list", "--strategy", "newest")
	require.Error(t, err)
}

func freePort(t *testing.T) int {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

const syncConfig = `
tcp:
  listen: 127.0.0.1:%d
sync:
  remote-processing-delay: 10ms
  connect-retry:
    max-attempts: 10
    initial-delay: 100ms
    max-delay: 500ms
    backoff-multiplier: 2
`

func TestServeAndSync(t *testing.T) {
	port := freePort(t)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf(syncConfig, port)), 0o600))

	server := newTestDevice(t)
	server.config = cfgPath
	server.run("add", "milk")
	server.run("add", "bread")

	client := newTestDevice(t)
	client.config = cfgPath
	client.run("add", "eggs")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var serverOut safeBuffer
	served := make(chan error, 1)
	go func() {
		served <- server.execTo(ctx, &serverOut, "serve", "--no-p2p")
	}()

	out := client.run("sync", "--no-p2p", "--peer", fmt.Sprintf("127.0.0.1:%d", port))
	require.Contains(t, out, fmt.Sprintf("synced 3 items with 127.0.0.1:%d", port))
	require.Eventually(t, func() bool {
		return strings.Contains(serverOut.String(), "synced 3 items")
	}, 10*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-served:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		require.FailNow(t, "serve did not stop")
	}

	expected := []string{"milk", "bread", "eggs"}
	for _, d := range []*device{server, client} {
		list := d.run("list")
		for _, name := range expected {
			require.Contains(t, list, name)
		}
	}
}

func TestSyncNoPeer(t *testing.T) {
	d := newTestDevice(t)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("discovery:\n  timeout: 100ms\n"), 0o600))
	d.config = cfgPath
	_, err := d.exec(context.Background(), "sync", "--no-p2p")
	require.ErrorIs(t, err, errNoPeer)
}

func TestSyncBadSchedule(t *testing.T) {
	d := newTestDevice(t)
	_, err := d.exec(context.Background(), "sync", "--no-p2p", "--peer", "127.0.0.1:1", "--schedule", "every day")
	require.ErrorContains(t, err, "parse schedule")
}

func TestDiscoverStatic(t *testing.T) {
	d := newTestDevice(t)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("discovery:\n  static: 10.0.0.2:9000,10.0.0.3\n"), 0o600))
	d.config = cfgPath

	out := d.run("discover", "--no-p2p", "--timeout", "100ms")
	require.Contains(t, out, "10.0.0.2:9000")
	require.Contains(t, out, "10.0.0.3:8888")
	require.Contains(t, out, "MANUAL")
}

func TestDiscoverNothing(t *testing.T) {
	d := newTestDevice(t)
	require.Contains(t, d.run("discover", "--no-p2p", "--timeout", "50ms"), "no devices found")
}
