// Package kernel serves sessions to remote notebook front ends over gRPC.
// Messages are google.protobuf.Struct values so no generated code is
// needed on either side.
package kernel

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ruchy-lang/ruchy/internal/evaluator"
	"github.com/ruchy-lang/ruchy/internal/session"
)

const ServiceName = "ruchy.kernel.v1.Kernel"

// Request and reply field names.
const (
	FieldSessionID      = "session_id"
	FieldSource         = "source"
	FieldTransaction    = "transaction"
	FieldExecutionCount = "execution_count"
	FieldValue          = "value"
	FieldStdout         = "stdout"
	FieldStderr         = "stderr"
	FieldError          = "error"
	FieldErrorKind      = "error_kind"
	FieldDurationNanos  = "duration_ns"
)

// Server holds the live sessions. Each session serializes its own
// submissions, so concurrent Execute calls on one session are safe.
type Server struct {
	logger *slog.Logger
	opts   []session.Option

	mu       sync.Mutex
	sessions map[string]*session.Session
}

func NewServer(logger *slog.Logger, opts ...session.Option) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		logger:   logger,
		opts:     append([]session.Option{session.WithLogger(logger)}, opts...),
		sessions: make(map[string]*session.Session),
	}
}

// Register attaches the kernel service to gs.
func (s *Server) Register(gs *grpc.Server) {
	gs.RegisterService(&serviceDesc, s)
}

func (s *Server) CreateSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sess := session.New(s.opts...)
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	s.logger.Info("session created", "session", sess.ID)
	return structpb.NewStruct(map[string]interface{}{FieldSessionID: sess.ID})
}

func (s *Server) Execute(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sess, err := s.lookup(req)
	if err != nil {
		return nil, err
	}
	src, ok := req.GetFields()[FieldSource]
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "missing %s", FieldSource)
	}

	var res *session.Result
	if req.GetFields()[FieldTransaction].GetBoolValue() {
		res = sess.Transaction(ctx, src.GetStringValue())
	} else {
		res = sess.EvalSource(ctx, src.GetStringValue())
	}

	reply := map[string]interface{}{
		FieldExecutionCount: res.ExecutionCount,
		FieldStdout:         res.Stdout,
		FieldStderr:         res.Stderr,
		FieldDurationNanos:  float64(res.Duration.Nanoseconds()),
	}
	if res.Value != nil {
		reply[FieldValue] = evaluator.Display(res.Value)
	}
	if !res.OK() {
		reply[FieldError] = res.Diagnostics[0].Error()
		reply[FieldErrorKind] = string(res.Diagnostics[0].Kind)
	}
	return structpb.NewStruct(reply)
}

func (s *Server) CloseSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id := req.GetFields()[FieldSessionID].GetStringValue()
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return nil, status.Errorf(codes.NotFound, "unknown session %q", id)
	}
	s.logger.Info("session closed", "session", id)
	return &structpb.Struct{}, nil
}

// Len is the number of open sessions.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) lookup(req *structpb.Struct) (*session.Session, error) {
	id := req.GetFields()[FieldSessionID].GetStringValue()
	if id == "" {
		return nil, status.Errorf(codes.InvalidArgument, "missing %s", FieldSessionID)
	}
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, status.Errorf(codes.NotFound, "unknown session %q", id)
	}
	return sess, nil
}

type unaryMethod func(s *Server, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call unaryMethod) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(*Server), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(*Server), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*interface{})(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateSession", (*Server).CreateSession),
		unary("Execute", (*Server).Execute),
		unary("CloseSession", (*Server).CloseSession),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ruchy/kernel/v1/kernel.proto",
}

// Serve listens on addr and serves until ctx is cancelled.
func Serve(ctx context.Context, addr string, srv *Server) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	gs := grpc.NewServer()
	srv.Register(gs)

	go func() {
		<-ctx.Done()
		gs.GracefulStop()
	}()

	srv.logger.Info("kernel listening", "addr", lis.Addr().String())
	if err := gs.Serve(lis); err != nil {
		return fmt.Errorf("serving kernel: %w", err)
	}
	return nil
}
