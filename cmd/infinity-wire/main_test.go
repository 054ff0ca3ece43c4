package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/hugr-lab/infinity-go/result"
	"github.com/hugr-lab/infinity-go/wire"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(viper.New())
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTranslateCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "request.msgpack")
	out, err := run(t, "translate",
		"--table", "items",
		"--columns", "*,c2",
		"--filter", "c1 > 3 and c2 < 5.0",
		"--limit", "10",
		"--msgpack", path,
	)
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}

	for _, want := range []string{
		"table:  items",
		"select: *, c2",
		"where:  and(>(c1, 3), <(c2, 5.0))",
		"limit:  10",
		"offset: <empty>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("request file not written: %v", err)
	}
	req, err := wire.UnmarshalRequest(data)
	if err != nil {
		t.Fatalf("UnmarshalRequest failed: %v", err)
	}
	if req.Table != "items" || len(req.SelectList) != 2 {
		t.Errorf("unexpected request %+v", req)
	}
}

func TestTranslateRequiresTable(t *testing.T) {
	if _, err := run(t, "translate"); err == nil {
		t.Fatal("expected error without --table")
	}
}

func TestTranslateFromEnv(t *testing.T) {
	t.Setenv("INFINITY_TABLE", "from_env")
	out, err := run(t, "translate")
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if !strings.Contains(out, "table:  from_env") {
		t.Errorf("table not taken from env:\n%s", out)
	}
}

func TestTranslateFromConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "infinity.yaml")
	if err := os.WriteFile(path, []byte("table: from_file\nfilter: c1 = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "translate", "--config", path)
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if !strings.Contains(out, "table:  from_file") || !strings.Contains(out, "where:  =(c1, 1)") {
		t.Errorf("config file not applied:\n%s", out)
	}
}

func TestQueryCommandDuckDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.db")
	db, err := sql.Open("duckdb", path)
	if err != nil {
		t.Fatalf("failed to open DuckDB: %v", err)
	}
	for _, stmt := range []string{
		`CREATE TABLE items (c1 INTEGER, c2 DOUBLE)`,
		`INSERT INTO items VALUES (1, 0.5), (4, 2.5), (5, 4.0)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to run %q: %v", stmt, err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "query", "--duckdb", path, "--table", "items", "--filter", "c1 > 3")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}

	var got map[string][]float64
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	want := map[string][]float64{"c1": {4, 5}, "c2": {2.5, 4.0}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestQueryRequiresTransport(t *testing.T) {
	if _, err := run(t, "query", "--table", "items"); err == nil {
		t.Fatal("expected error without --duckdb or --addr")
	}
	if _, err := run(t, "query", "--table", "items", "--duckdb", "x.db", "--addr", "localhost:1"); err == nil {
		t.Fatal("expected error with both --duckdb and --addr")
	}
}

func TestDecodeCommand(t *testing.T) {
	enc, err := result.NewEncoder(nil)
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}
	defer enc.Close()
	if err := enc.Add("count", wire.ColumnInt64, []int64{7}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	data, err := wire.MarshalResponse(enc.Response())
	if err != nil {
		t.Fatalf("MarshalResponse failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "response.msgpack")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "decode", path)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	var got map[string][]int64
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if !reflect.DeepEqual(got, map[string][]int64{"count": {7}}) {
		t.Errorf("got %v", got)
	}
}

func TestDecodeEngineFailure(t *testing.T) {
	data, err := wire.MarshalResponse(wire.Failure(wire.ErrorCodeTableNotFound, "table %s not found", "nope"))
	if err != nil {
		t.Fatalf("MarshalResponse failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "failure.msgpack")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err = run(t, "decode", path)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected engine error, got %v", err)
	}
}

func TestDecodeCommandColumnLimit(t *testing.T) {
	enc, err := result.NewEncoder(&result.EncoderOptions{Compress: true})
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}
	defer enc.Close()
	if err := enc.Add("v", wire.ColumnInt32, make([]int32, 2048)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	data, err := wire.MarshalResponse(enc.Response())
	if err != nil {
		t.Fatalf("MarshalResponse failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "large.msgpack")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, "decode", path); err != nil {
		t.Fatalf("decode with default limit failed: %v", err)
	}
	_, err = run(t, "decode", "--max-column-size", "1024", path)
	if err == nil || !strings.Contains(err.Error(), "exceeds limit") {
		t.Errorf("expected size limit error, got %v", err)
	}
}
