package ports

import (
	"context"
	"time"

	"github.com/bnema/tgsession/internal/domain"
)

type LoginRequest struct {
	User     domain.Identity
	InitData string
}

type LoginResult struct {
	Success   bool
	SessionID string
	Message   string
}

type HeartbeatRequest struct {
	UserID       domain.UserID
	SessionID    string
	LastActivity time.Time
}

// Ack is the generic {success, message} reply.
type Ack struct {
	Success bool
	Message string
}

type UserDataResult struct {
	Success  bool
	UserData domain.UserData
}

type UserDataUpdate struct {
	UserID  domain.UserID
	Action  domain.ReactionAction
	VideoID string
}

// Backend is the remote session and user-data service. Errors are
// transport failures; a refused operation is reported through the
// Success fields.
type Backend interface {
	Login(ctx context.Context, req LoginRequest) (LoginResult, error)
	Logout(ctx context.Context, userID domain.UserID, sessionID string) (Ack, error)
	Heartbeat(ctx context.Context, req HeartbeatRequest) (Ack, error)
	FetchUserData(ctx context.Context, userID domain.UserID) (UserDataResult, error)
	UpdateUserData(ctx context.Context, update UserDataUpdate) (Ack, error)
}
