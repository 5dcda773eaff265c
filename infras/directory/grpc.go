package directory

import (
	"context"
	"fmt"
	"time"

	"consultation/config"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const getUserDataMethod = "/user_service.UserServices/GetUserData"

type userItem struct {
	ID               string `json:"id"`
	Organisation     bool   `json:"organisation"`
	UserAdditional   bool   `json:"user_additional"`
	UserPermissions  bool   `json:"user_permissions"`
	UserWorkingHours bool   `json:"user_working_hours"`
}

type userReply struct {
	Valid bool   `json:"valid"`
	Email string `json:"email"`
	Fname string `json:"fname"`
	Lname string `json:"lname"`
}

type grpcClient struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}

// NewGRPCClient connects lazily to the user service. With no address configured the
// client answers every lookup with nil so the HTTP fallback takes over.
func NewGRPCClient(cfg *config.Config, opts ...grpc.DialOption) (Client, error) {
	address := cfg.External.UserService.GRPCAddress
	if address == "" {
		log.Warn().Msg("user service grpc address is empty, grpc lookup disabled")

		return disabledClient{}, nil
	}

	dialOptions := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}, opts...)

	conn, err := grpc.NewClient(address, dialOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service client: %w", err)
	}

	return &grpcClient{
		conn:    conn,
		timeout: cfg.External.UserService.GRPCTimeout,
	}, nil
}

func (c *grpcClient) GetUserInfo(ctx context.Context, id string) (*UserInfo, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	request := &userItem{
		ID:               id,
		Organisation:     true,
		UserAdditional:   true,
		UserPermissions:  true,
		UserWorkingHours: true,
	}

	reply := &userReply{}
	if err := c.conn.Invoke(ctx, getUserDataMethod, request, reply); err != nil {
		return nil, fmt.Errorf("GetUserData %s: %w", id, err)
	}

	if !reply.Valid {
		return nil, nil //nolint:nilnil
	}

	return &UserInfo{
		Email:     reply.Email,
		FirstName: reply.Fname,
		LastName:  reply.Lname,
	}, nil
}

// Close releases the underlying connection.
func (c *grpcClient) Close() error {
	return c.conn.Close()
}

type disabledClient struct{}

func (disabledClient) GetUserInfo(context.Context, string) (*UserInfo, error) {
	return nil, nil //nolint:nilnil
}
