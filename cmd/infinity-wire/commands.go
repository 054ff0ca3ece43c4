package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc"

	"github.com/hugr-lab/infinity-go"
	"github.com/hugr-lab/infinity-go/auth"
	"github.com/hugr-lab/infinity-go/engine/duckdb"
	"github.com/hugr-lab/infinity-go/result"
	"github.com/hugr-lab/infinity-go/rpc"
	"github.com/hugr-lab/infinity-go/wire"
)

var errNoTransport = errors.New("no transport configured")

// addQueryFlags registers the flags describing one search.
func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("db", duckdb.DefaultDatabase, "database name")
	cmd.Flags().String("table", "", "table name")
	cmd.Flags().StringSlice("columns", []string{"*"}, "output columns")
	cmd.Flags().String("filter", "", "filter predicate")
	cmd.Flags().Int64("limit", -1, "row limit (negative for none)")
	cmd.Flags().Int64("offset", -1, "rows to skip (negative for none)")
}

// search builds the query described by the query flags.
func search(v *viper.Viper, client *infinity.Client) (*infinity.QueryBuilder, error) {
	table := v.GetString("table")
	if table == "" {
		return nil, fmt.Errorf("--table is required")
	}

	b := client.Database(v.GetString("db")).Table(table).Search().Output(v.GetStringSlice("columns")...)
	if filter := v.GetString("filter"); filter != "" {
		b.Filter(filter)
	}
	if limit := v.GetInt64("limit"); limit >= 0 {
		b.Limit(limit)
	}
	if offset := v.GetInt64("offset"); offset >= 0 {
		b.Offset(offset)
	}
	return b, nil
}

func newTranslateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Print the wire request for a search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := infinity.NewClient(infinity.ClientConfig{
				Transport: infinity.TransportFunc(func(context.Context, *wire.SelectRequest) (*wire.Response, error) {
					return nil, errNoTransport
				}),
				Logger: newLogger(v),
			})
			if err != nil {
				return err
			}
			defer client.Close()

			b, err := search(v, client)
			if err != nil {
				return err
			}
			req, err := b.Request()
			if err != nil {
				return err
			}

			if out := v.GetString("msgpack"); out != "" {
				data, err := wire.MarshalRequest(req)
				if err != nil {
					return err
				}
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return err
				}
			}
			printRequest(cmd.OutOrStdout(), req)
			return nil
		},
	}
	addQueryFlags(cmd)
	cmd.Flags().String("msgpack", "", "also write the encoded request to this file")
	return cmd
}

func printRequest(w io.Writer, req *wire.SelectRequest) {
	columns := make([]string, len(req.SelectList))
	for i, e := range req.SelectList {
		columns[i] = wire.Format(e)
	}
	fmt.Fprintf(w, "db:     %s\n", req.DB)
	fmt.Fprintf(w, "table:  %s\n", req.Table)
	fmt.Fprintf(w, "select: %s\n", strings.Join(columns, ", "))
	fmt.Fprintf(w, "where:  %s\n", wire.Format(req.Where))
	fmt.Fprintf(w, "limit:  %s\n", wire.Format(req.Limit))
	fmt.Fprintf(w, "offset: %s\n", wire.Format(req.Offset))
}

func newQueryCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a search against a DuckDB file or a remote engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(v)

			transport, closeTransport, err := openTransport(v)
			if err != nil {
				return err
			}
			defer closeTransport()

			client, err := infinity.NewClient(infinity.ClientConfig{
				Transport:     transport,
				Logger:        logger,
				MaxColumnSize: v.GetUint64("max-column-size"),
			})
			if err != nil {
				return err
			}
			defer client.Close()

			b, err := search(v, client)
			if err != nil {
				return err
			}
			res, err := b.ToResult(cmd.Context())
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}
	addQueryFlags(cmd)
	cmd.Flags().String("duckdb", "", "DuckDB database file to query in-process")
	cmd.Flags().String("addr", "", "engine address to query over gRPC")
	cmd.Flags().String("token", "", "bearer token for the remote engine")
	cmd.Flags().String("session", "", "session id sent to the remote engine")
	cmd.Flags().Bool("insecure", true, "disable TLS for the remote engine")
	cmd.Flags().Uint64("max-column-size", 0, "decompressed size cap per result column in bytes (0 for the default)")
	return cmd
}

// openTransport returns the transport selected by --duckdb or --addr.
func openTransport(v *viper.Viper) (infinity.Transport, func(), error) {
	path, addr := v.GetString("duckdb"), v.GetString("addr")
	switch {
	case path != "" && addr != "":
		return nil, nil, fmt.Errorf("--duckdb and --addr are mutually exclusive")
	case path != "":
		db, err := sql.Open("duckdb", path)
		if err != nil {
			return nil, nil, fmt.Errorf("open %s: %w", path, err)
		}
		engine := duckdb.New(db, &duckdb.Options{Logger: newLogger(v)})
		return engine, func() { _ = db.Close() }, nil
	case addr != "":
		conn, err := rpc.Dial(addr, rpc.ClientOptions{
			Token:     v.GetString("token"),
			Insecure:  v.GetBool("insecure"),
			SessionID: v.GetString("session"),
		})
		if err != nil {
			return nil, nil, err
		}
		return conn, func() { _ = conn.Close() }, nil
	}
	return nil, nil, fmt.Errorf("%w: set --duckdb or --addr", errNoTransport)
}

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a DuckDB file over gRPC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(v)

			path := v.GetString("duckdb")
			db, err := sql.Open("duckdb", path)
			if err != nil {
				return fmt.Errorf("open %s: %w", path, err)
			}
			defer db.Close()

			config := rpc.ServerConfig{
				Engine: duckdb.New(db, &duckdb.Options{
					Compress: v.GetBool("compress"),
					Logger:   logger,
				}),
				Logger:         logger,
				MaxMessageSize: v.GetInt("max-message-size"),
			}
			if token := v.GetString("token"); token != "" {
				config.Auth = auth.Tokens{token: {Name: "client", Databases: v.GetStringSlice("token-databases")}}
			}

			grpcServer := grpc.NewServer(rpc.ServerOptions(config)...)
			if err := rpc.NewServer(grpcServer, config); err != nil {
				return err
			}

			lis, err := net.Listen("tcp", v.GetString("listen"))
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				logger.Info("Shutting down")
				grpcServer.GracefulStop()
			}()

			logger.Info("Serving", "addr", lis.Addr().String(), "duckdb", path, "auth", config.Auth != nil)
			return grpcServer.Serve(lis)
		},
	}
	cmd.Flags().String("duckdb", "", "DuckDB database file (in-memory if empty)")
	cmd.Flags().String("listen", ":23817", "listen address")
	cmd.Flags().String("token", "", "require this bearer token")
	cmd.Flags().StringSlice("token-databases", nil, "databases the token may select from (all if empty)")
	cmd.Flags().Bool("compress", false, "zstd-compress result columns")
	cmd.Flags().Int("max-message-size", 16<<20, "maximum gRPC message size in bytes")
	return cmd
}

func newDecodeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode file",
		Short: "Decode a msgpack response envelope to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			resp, err := wire.UnmarshalResponse(data)
			if err != nil {
				return err
			}
			if resp.ErrorCode != 0 {
				return &infinity.EngineError{Code: resp.ErrorCode, Message: resp.ErrorMessage}
			}

			decoder, err := result.NewDecoder(&result.Options{
				Logger:        newLogger(v),
				MaxColumnSize: v.GetUint64("max-column-size"),
			})
			if err != nil {
				return err
			}
			defer decoder.Close()

			res, err := decoder.Decode(resp)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().Uint64("max-column-size", 0, "decompressed size cap per result column in bytes (0 for the default)")
	return cmd
}

// printResult writes the result as a JSON object of column arrays.
func printResult(w io.Writer, res *result.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res.Map())
}
