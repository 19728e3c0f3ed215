package kernel

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// ExecuteReply is the decoded reply of Execute.
type ExecuteReply struct {
	ExecutionCount int
	Value          string
	Stdout         string
	Stderr         string
	Error          string
	ErrorKind      string
	Duration       time.Duration
}

type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to a kernel. Extra options are appended after the
// insecure transport credentials.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to kernel %s: %w", target, err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) invoke(ctx context.Context, method string, req map[string]interface{}) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/"+method, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateSession(ctx context.Context) (string, error) {
	out, err := c.invoke(ctx, "CreateSession", nil)
	if err != nil {
		return "", err
	}
	return out.GetFields()[FieldSessionID].GetStringValue(), nil
}

func (c *Client) Execute(ctx context.Context, sessionID, source string) (*ExecuteReply, error) {
	return c.execute(ctx, sessionID, source, false)
}

// ExecuteTransaction rolls the remote session back if source fails.
func (c *Client) ExecuteTransaction(ctx context.Context, sessionID, source string) (*ExecuteReply, error) {
	return c.execute(ctx, sessionID, source, true)
}

func (c *Client) execute(ctx context.Context, sessionID, source string, transaction bool) (*ExecuteReply, error) {
	out, err := c.invoke(ctx, "Execute", map[string]interface{}{
		FieldSessionID:   sessionID,
		FieldSource:      source,
		FieldTransaction: transaction,
	})
	if err != nil {
		return nil, err
	}
	f := out.GetFields()
	return &ExecuteReply{
		ExecutionCount: int(f[FieldExecutionCount].GetNumberValue()),
		Value:          f[FieldValue].GetStringValue(),
		Stdout:         f[FieldStdout].GetStringValue(),
		Stderr:         f[FieldStderr].GetStringValue(),
		Error:          f[FieldError].GetStringValue(),
		ErrorKind:      f[FieldErrorKind].GetStringValue(),
		Duration:       time.Duration(f[FieldDurationNanos].GetNumberValue()),
	}, nil
}

func (c *Client) CloseSession(ctx context.Context, sessionID string) error {
	_, err := c.invoke(ctx, "CloseSession", map[string]interface{}{FieldSessionID: sessionID})
	return err
}
