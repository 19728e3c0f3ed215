package kernel

import (
	"context"
	"net"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func startKernel(t *testing.T) (*Server, *Client) {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := NewServer(nil)
	gs := grpc.NewServer()
	srv.Register(gs)
	go gs.Serve(lis)
	t.Cleanup(gs.Stop)

	client, err := Dial("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return srv, client
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	srv, client := startKernel(t)

	id, err := client.CreateSession(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" || srv.Len() != 1 {
		t.Fatalf("expected one session, got id %q and %d sessions", id, srv.Len())
	}

	if _, err := client.Execute(ctx, id, "let x = 20"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	got, err := client.Execute(ctx, id, "println(\"hi\")\nx * 2 + 2")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	want := &ExecuteReply{ExecutionCount: 2, Value: "42", Stdout: "hi\n"}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(ExecuteReply{}, "Duration")); diff != "" {
		t.Errorf("reply mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteError(t *testing.T) {
	ctx := context.Background()
	_, client := startKernel(t)
	id, err := client.CreateSession(ctx)
	if err != nil {
		t.Fatal(err)
	}

	got, err := client.Execute(ctx, id, "1 / 0")
	if err != nil {
		t.Fatalf("evaluation errors are reported in the reply, not as rpc errors: %v", err)
	}
	if got.ErrorKind != "DivisionByZero" || got.Error == "" {
		t.Errorf("unexpected reply %+v", got)
	}
}

func TestExecuteTransaction(t *testing.T) {
	ctx := context.Background()
	_, client := startKernel(t)
	id, err := client.CreateSession(ctx)
	if err != nil {
		t.Fatal(err)
	}
	client.Execute(ctx, id, "let mut n = 1")
	if _, err := client.ExecuteTransaction(ctx, id, "n = 7\nmissing"); err != nil {
		t.Fatal(err)
	}
	got, err := client.Execute(ctx, id, "n")
	if err != nil {
		t.Fatal(err)
	}
	if got.Value != "1" {
		t.Errorf("expected rollback to 1, got %s", got.Value)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	_, client := startKernel(t)
	a, _ := client.CreateSession(ctx)
	b, _ := client.CreateSession(ctx)

	client.Execute(ctx, a, "let only_a = 1")
	got, err := client.Execute(ctx, b, "only_a")
	if err != nil {
		t.Fatal(err)
	}
	if got.ErrorKind != "NameError" {
		t.Errorf("expected NameError in the other session, got %+v", got)
	}
}

func TestUnknownSession(t *testing.T) {
	ctx := context.Background()
	srv, client := startKernel(t)

	_, err := client.Execute(ctx, "nope", "1")
	if status.Code(err) != codes.NotFound {
		t.Errorf("expected NotFound, got %v", err)
	}

	id, _ := client.CreateSession(ctx)
	if err := client.CloseSession(ctx, id); err != nil {
		t.Fatalf("close: %v", err)
	}
	if srv.Len() != 0 {
		t.Errorf("expected no sessions after close, got %d", srv.Len())
	}
	if err := client.CloseSession(ctx, id); status.Code(err) != codes.NotFound {
		t.Errorf("expected NotFound closing twice, got %v", err)
	}
}

func TestMissingSessionID(t *testing.T) {
	_, client := startKernel(t)
	_, err := client.Execute(context.Background(), "", "1")
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("expected InvalidArgument, got %v", err)
	}
}
