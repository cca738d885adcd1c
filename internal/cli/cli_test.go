package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/s1natex/tasks-comments-api/internal/server"
	"github.com/s1natex/tasks-comments-api/internal/tasks"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func newAPI(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(server.NewRouter(server.Options{
		Store:  tasks.NewInMemoryStore(),
		Logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := NewRootCmd()
	want := map[string]bool{"serve": false, "migrate": false, "task": false, "comment": false}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestTaskCommands(t *testing.T) {
	url := newAPI(t)

	out, err := runCmd(t, "--server", url, "task", "add", "write docs")
	if err != nil {
		t.Fatalf("task add: %v", err)
	}
	if strings.TrimSpace(out) != "#1  write docs" {
		t.Errorf("task add output = %q", out)
	}

	if _, err := runCmd(t, "--server", url, "task", "update", "1", "--title", ""); err != nil {
		t.Fatalf("task update: %v", err)
	}

	out, err = runCmd(t, "--server", url, "--format", "json", "task", "show", "1")
	if err != nil {
		t.Fatalf("task show: %v", err)
	}
	var got tasks.Task
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("json output: %v (%q)", err, out)
	}
	if got.Title != "write docs" {
		t.Errorf("empty --title should keep the title, got %q", got.Title)
	}

	if out, err = runCmd(t, "--server", url, "task", "rm", "1"); err != nil || !strings.Contains(out, "Deleted task #1") {
		t.Fatalf("task rm: %q, %v", out, err)
	}

	_, err = runCmd(t, "--server", url, "task", "show", "1")
	if err == nil || !strings.Contains(err.Error(), "Task not found") {
		t.Errorf("expected not found error, got %v", err)
	}

	if _, err := runCmd(t, "--server", url, "task", "show", "abc"); err == nil {
		t.Error("expected error for non-numeric id")
	}
}

func TestCommentCommands(t *testing.T) {
	url := newAPI(t)

	if _, err := runCmd(t, "--server", url, "task", "add", "A"); err != nil {
		t.Fatalf("task add: %v", err)
	}
	out, err := runCmd(t, "--server", url, "comment", "add", "1", "--author", "bob", "--content", "hi")
	if err != nil {
		t.Fatalf("comment add: %v", err)
	}
	if strings.TrimSpace(out) != "#1  task #1  bob: hi" {
		t.Errorf("comment add output = %q", out)
	}

	if _, err := runCmd(t, "--server", url, "comment", "update", "1", "--content", "edited"); err != nil {
		t.Fatalf("comment update: %v", err)
	}

	out, err = runCmd(t, "--server", url, "--format", "json", "comment", "list", "1")
	if err != nil {
		t.Fatalf("comment list: %v", err)
	}
	var list []tasks.Comment
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatalf("json output: %v", err)
	}
	if len(list) != 1 || list[0].Content != "edited" || list[0].Author != "bob" {
		t.Errorf("unexpected list: %+v", list)
	}

	if _, err := runCmd(t, "--server", url, "comment", "add", "1", "--author", "x"); err == nil {
		t.Error("expected error when --content is missing")
	}
	if _, err := runCmd(t, "--server", url, "comment", "rm", "1"); err != nil {
		t.Fatalf("comment rm: %v", err)
	}
}

func TestMigrateCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.db")

	out, err := runCmd(t, "migrate", "--db", "sqlite:"+path)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out, "Schema up to date (sqlite)") {
		t.Errorf("migrate output = %q", out)
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	mem, err := openStore(ctx, "memory:", true)
	if err != nil {
		t.Fatalf("memory store: %v", err)
	}
	if _, ok := mem.(*tasks.InMemoryStore); !ok {
		t.Errorf("expected *tasks.InMemoryStore, got %T", mem)
	}

	sqlStore, err := openStore(ctx, "sqlite:"+filepath.Join(t.TempDir(), "s.db"), true)
	if err != nil {
		t.Fatalf("sql store: %v", err)
	}
	defer sqlStore.Close()
	if err := sqlStore.Ping(ctx); err != nil {
		t.Errorf("ping: %v", err)
	}
}

func TestRedact(t *testing.T) {
	cases := map[string]string{
		"postgres://app:s3cret@db:5432/tasks": "postgres://app:***@db:5432/tasks",
		"postgres://app@db/tasks":             "postgres://app@db/tasks",
		"sqlite:./data/tasks.db":              "sqlite:./data/tasks.db",
	}
	for in, want := range cases {
		if got := redact(in); got != want {
			t.Errorf("redact(%q) = %q, want %q", in, got, want)
		}
	}
}
