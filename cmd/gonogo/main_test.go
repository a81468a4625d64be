package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsmturk "github.com/aws/aws-sdk-go-v2/service/mturk"
	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"

	"github.com/kbukum/gonogo/bootstrap"
	"github.com/kbukum/gonogo/logger"
	"github.com/kbukum/gonogo/mturk"
	"github.com/kbukum/gonogo/observability"
	"github.com/kbukum/gonogo/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietApp() []bootstrap.Option {
	return []bootstrap.Option{bootstrap.WithLogger(logger.Nop()), bootstrap.WithSummaryOutput(io.Discard)}
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}


func TestRootCommand(t *testing.T) {
	cmd := newRootCommand()
	if cmd.Use != "gonogo" {
		t.Errorf("expected use gonogo, got %q", cmd.Use)
	}

	for _, name := range []string{"serve", "compensate", "version"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			if err != nil {
				t.Fatal(err)
			}
			if sub.Name() != name {
				t.Errorf("expected %q, got %q", name, sub.Name())
			}
		})
	}

	for _, flag := range []string{"config", "env-file"} {
		if cmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag %q", flag)
		}
	}
}

func TestCompensateFlags(t *testing.T) {
	cmd, _, err := newRootCommand().Find([]string{"compensate"})
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"sandbox", "dry-run", "repeat"} {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			t.Fatalf("missing flag %q", name)
		}
		if f.DefValue != "false" {
			t.Errorf("%s should default to false, got %s", name, f.DefValue)
		}
	}
	verbose := cmd.Flags().Lookup("verbose")
	if verbose == nil || verbose.DefValue != "2" {
		t.Errorf("verbose should default to 2, got %+v", verbose)
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "gonogo ") {
		t.Errorf("unexpected version output %q", out.String())
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yml")
	yml := "experiment:\n  condition: 3\nstore:\n  mode: single_use\n  collection: trials\n"
	if err := os.WriteFile(file, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("MONGODB_URI", "mongodb://db.example.net/experiment")
	t.Setenv("PORT", "8081")

	cfg, err := loadConfig(&rootOptions{ConfigFile: file, EnvFile: filepath.Join(dir, "missing.env")})
	if err != nil {
		t.Fatal(err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	if cfg.Name != serviceName {
		t.Errorf("expected name %q, got %q", serviceName, cfg.Name)
	}
	if cfg.Experiment.Condition != 3 {
		t.Errorf("expected condition 3, got %d", cfg.Experiment.Condition)
	}
	if cfg.Store.Mode != store.ModeSingleUse {
		t.Errorf("expected single_use, got %s", cfg.Store.Mode)
	}
	if cfg.Store.Collection != "trials" {
		t.Errorf("expected collection trials, got %s", cfg.Store.Collection)
	}
	if cfg.Store.URI != "mongodb://db.example.net/experiment" {
		t.Errorf("MONGODB_URI not applied, got %q", cfg.Store.URI)
	}
	if cfg.Server.Port != 8081 {
		t.Errorf("PORT not applied, got %d", cfg.Server.Port)
	}
	if cfg.Experiment.ImageDir != "public/img" {
		t.Errorf("expected default image dir, got %q", cfg.Experiment.ImageDir)
	}
}

func TestLoadConfigCanonicalEnvWins(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://alias")
	t.Setenv("STORE_URI", "redis://localhost:6379/0")

	cfg, err := loadConfig(&rootOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store.URI != "redis://localhost:6379/0" {
		t.Errorf("STORE_URI should win, got %q", cfg.Store.URI)
	}
}

func TestConfigValidateJoinsSections(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	cfg.Store.Mode = "sometimes"
	cfg.Experiment.StaticMounts = map[string]string{"/": "public"}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, key := range []string{"store.mode", "experiment.static_mounts"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("expected %q in %v", key, err)
		}
	}
}

func serveTestFS(t *testing.T) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	files := map[string]string{
		"public/img/a.png":   "a",
		"public/js/utils.js": "function sleep() {}",
	}
	for name, data := range files {
		if err := afero.WriteFile(fsys, name, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return fsys
}

func serveTestConfig(t *testing.T, uri string) *Config {
	t.Helper()
	cfg := &Config{}
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = freePort(t)
	cfg.Store.URI = uri
	return cfg
}

type healthBody struct {
	Status     string `json:"status"`
	Components []struct {
		Name   string `json:"name"`
		Status string `json:"status"`
	} `json:"components"`
}

func getHealth(t *testing.T, base string) healthBody {
	t.Helper()
	resp, err := http.Get(base + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body healthBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	return body
}

func fetch(t *testing.T, method, url, body string) (int, string) {
	t.Helper()
	var resp *http.Response
	var err error
	if method == http.MethodPost {
		resp, err = http.Post(url, "application/json", strings.NewReader(body))
	} else {
		resp, err = http.Get(url)
	}
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(data)
}

func TestServeWithStore(t *testing.T) {
	cfg := serveTestConfig(t, "memory://serve")
	app, err := newServeApp(cfg, serveTestFS(t), quietApp()...)
	if err != nil {
		t.Fatal(err)
	}

	base := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	err = app.RunTask(context.Background(), func(context.Context) error {
		code, page := fetch(t, http.MethodGet, base+"/", "")
		if code != http.StatusOK {
			t.Errorf("GET / = %d", code)
		}
		for _, want := range []string{`"images":["img/a.png"]`, `"connected":true`} {
			if !strings.Contains(page, want) {
				t.Errorf("page missing %s", want)
			}
		}

		if code, _ := fetch(t, http.MethodPost, base+"/experiment-data", `{"rt":[312,298]}`); code != http.StatusOK {
			t.Errorf("POST /experiment-data = %d", code)
		}
		if code, _ := fetch(t, http.MethodGet, base+"/js/utils.js", ""); code != http.StatusOK {
			t.Errorf("GET /js/utils.js = %d", code)
		}

		health := getHealth(t, base)
		if health.Status != "healthy" {
			t.Errorf("expected healthy, got %s", health.Status)
		}
		if len(health.Components) != 3 {
			t.Errorf("expected telemetry, store and server, got %+v", health.Components)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestServeWithoutStore(t *testing.T) {
	cfg := serveTestConfig(t, "")
	app, err := newServeApp(cfg, serveTestFS(t), quietApp()...)
	if err != nil {
		t.Fatal(err)
	}

	base := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	err = app.RunTask(context.Background(), func(context.Context) error {
		if code, _ := fetch(t, http.MethodPost, base+"/experiment-data", `{"foo":"bar"}`); code != http.StatusOK {
			t.Errorf("POST valid body = %d", code)
		}
		if code, _ := fetch(t, http.MethodPost, base+"/experiment-data", `{"foo":`); code != http.StatusBadRequest {
			t.Errorf("POST truncated body = %d, want 400", code)
		}
		if health := getHealth(t, base); health.Status != "degraded" {
			t.Errorf("expected degraded, got %s", health.Status)
		}
		if code, _ := fetch(t, http.MethodGet, base+"/ready", ""); code != http.StatusOK {
			t.Errorf("GET /ready = %d", code)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestServeWithInvalidStoreURI(t *testing.T) {
	cfg := serveTestConfig(t, "nope://::bad")
	app, err := newServeApp(cfg, serveTestFS(t), quietApp()...)
	if err != nil {
		t.Fatal(err)
	}

	base := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	err = app.RunTask(context.Background(), func(context.Context) error {
		code, page := fetch(t, http.MethodGet, base+"/", "")
		if code != http.StatusOK {
			t.Errorf("GET / = %d", code)
		}
		if !strings.Contains(page, `"connected":false`) {
			t.Error("page should report the store as disconnected")
		}
		if code, _ := fetch(t, http.MethodPost, base+"/experiment-data", `{"rt":[1]}`); code != http.StatusOK {
			t.Errorf("POST /experiment-data = %d", code)
		}

		health := getHealth(t, base)
		if health.Status != "degraded" {
			t.Errorf("expected degraded, got %s", health.Status)
		}
		for _, c := range health.Components {
			if c.Name == "store" && c.Status != "degraded" {
				t.Errorf("store should be degraded, got %s", c.Status)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestServeStartsTelemetryFirst(t *testing.T) {
	app, err := newServeApp(serveTestConfig(t, "memory://order"), serveTestFS(t), quietApp()...)
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, c := range app.Components.All() {
		names = append(names, c.Name())
	}
	if len(names) < 2 {
		t.Fatalf("expected telemetry and store, got %v", names)
	}
	if _, ok := app.Components.All()[0].(*observability.Component); !ok {
		t.Errorf("telemetry must be registered first, got %v", names)
	}
	if names[1] != "store" {
		t.Errorf("store must follow telemetry, got %v", names)
	}
}

func TestServeFailsWithoutImageDir(t *testing.T) {
	cfg := serveTestConfig(t, "")
	app, err := newServeApp(cfg, afero.NewMemMapFs(), quietApp()...)
	if err != nil {
		t.Fatal(err)
	}

	ran := false
	err = app.RunTask(context.Background(), func(context.Context) error {
		ran = true
		return nil
	})
	if err == nil || !strings.Contains(err.Error(), "configuration failed") {
		t.Errorf("expected configuration failure, got %v", err)
	}
	if ran {
		t.Error("task should not run when configure fails")
	}
}

// stubMTurk answers every call successfully and records approvals and
// bonuses.
type stubMTurk struct {
	approved []string
	bonuses  []string
}

func (s *stubMTurk) GetAssignment(context.Context, *awsmturk.GetAssignmentInput, ...func(*awsmturk.Options)) (*awsmturk.GetAssignmentOutput, error) {
	return &awsmturk.GetAssignmentOutput{}, nil
}

func (s *stubMTurk) ListBonusPayments(context.Context, *awsmturk.ListBonusPaymentsInput, ...func(*awsmturk.Options)) (*awsmturk.ListBonusPaymentsOutput, error) {
	return &awsmturk.ListBonusPaymentsOutput{}, nil
}

func (s *stubMTurk) ApproveAssignment(_ context.Context, in *awsmturk.ApproveAssignmentInput, _ ...func(*awsmturk.Options)) (*awsmturk.ApproveAssignmentOutput, error) {
	s.approved = append(s.approved, aws.ToString(in.AssignmentId))
	return &awsmturk.ApproveAssignmentOutput{}, nil
}

func (s *stubMTurk) SendBonus(_ context.Context, in *awsmturk.SendBonusInput, _ ...func(*awsmturk.Options)) (*awsmturk.SendBonusOutput, error) {
	s.bonuses = append(s.bonuses, aws.ToString(in.WorkerId)+"="+aws.ToString(in.BonusAmount))
	return &awsmturk.SendBonusOutput{}, nil
}

func useStubMTurk(t *testing.T) (*stubMTurk, *mturk.Config) {
	t.Helper()
	stub := &stubMTurk{}
	var got mturk.Config
	orig := newCompensator
	newCompensator = func(_ context.Context, cfg mturk.Config, log *logger.Logger) (*mturk.Compensator, error) {
		got = cfg
		return mturk.NewWithAPI(stub, cfg, log), nil
	}
	t.Cleanup(func() { newCompensator = orig })
	return stub, &got
}

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workers.csv")
	data := "worker_id,assignment_id,bonus\nW1,A1,1.5\nW2,A2,0\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunCompensate(t *testing.T) {
	stub, _ := useStubMTurk(t)
	cfg := &Config{}
	quiet := mturk.VerboseNone
	cfg.MTurk.Verbose = &quiet

	var out bytes.Buffer
	if err := runCompensate(context.Background(), cfg, writeCSV(t), &out, bootstrap.WithLogger(logger.Nop())); err != nil {
		t.Fatal(err)
	}

	if got := out.String(); got != "rows=2 approved=2 bonused=1 skipped=0 failed=0\n" {
		t.Errorf("unexpected summary %q", got)
	}
	if !slices.Equal(stub.approved, []string{"A1", "A2"}) {
		t.Errorf("unexpected approvals %v", stub.approved)
	}
	if !slices.Equal(stub.bonuses, []string{"W1=1.50"}) {
		t.Errorf("unexpected bonuses %v", stub.bonuses)
	}
}

func TestRunCompensateMissingFile(t *testing.T) {
	useStubMTurk(t)
	err := runCompensate(context.Background(), &Config{}, filepath.Join(t.TempDir(), "none.csv"), io.Discard, bootstrap.WithLogger(logger.Nop()))
	if err == nil {
		t.Error("expected error for a missing CSV")
	}
}

func runCompensateCommand(t *testing.T, args ...string) string {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"compensate"}, args...))
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	return out.String()
}

func TestCompensateCommandDryRun(t *testing.T) {
	stub, got := useStubMTurk(t)

	out := runCompensateCommand(t, writeCSV(t), "--sandbox", "--dry-run", "--verbose", "0")
	if !got.Sandbox || !got.DryRun {
		t.Errorf("flags not applied: %+v", got)
	}
	if got.Verbosity() != mturk.VerboseNone {
		t.Errorf("expected verbosity 0, got %d", got.Verbosity())
	}
	if len(stub.approved) != 0 || len(stub.bonuses) != 0 {
		t.Errorf("dry run called the API: %v %v", stub.approved, stub.bonuses)
	}
	if !strings.Contains(out, "rows=2") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestCompensateCommandVerbosity(t *testing.T) {
	dir := t.TempDir()
	quietFile := filepath.Join(dir, "quiet.yml")
	if err := os.WriteFile(quietFile, []byte("mturk:\n  verbose: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	missingEnv := filepath.Join(dir, "missing.env")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"default", nil, mturk.VerboseAll},
		{"config zero kept", []string{"--config", quietFile}, mturk.VerboseNone},
		{"flag overrides config", []string{"--config", quietFile, "--verbose", "1"}, mturk.VerboseErrors},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, got := useStubMTurk(t)
			args := append([]string{writeCSV(t), "--dry-run", "--env-file", missingEnv}, tc.args...)
			runCompensateCommand(t, args...)
			if got.Verbosity() != tc.want {
				t.Errorf("expected verbosity %d, got %d", tc.want, got.Verbosity())
			}
		})
	}
}

func TestCompensateCommandRequiresCSV(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"compensate"})
	if err := cmd.Execute(); err == nil {
		t.Error("expected an error without a CSV argument")
	}
}
