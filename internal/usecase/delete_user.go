package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/kdacanay/wrc-leads/internal/entity"
	"github.com/kdacanay/wrc-leads/pkg/logging"
)

// DeleteUserUseCase removes a user's identity and then their profile. The
// caller's role is read from their own profile row, never from the request.
type DeleteUserUseCase struct {
	Users      entity.UserRepositoryInterface
	Identities entity.IdentityProvider
	Guard      StoreGuard
	Logger     *logging.Logger
}

func NewDeleteUserUseCase(users entity.UserRepositoryInterface, identities entity.IdentityProvider, guard StoreGuard, logger *logging.Logger) *DeleteUserUseCase {
	if logger == nil {
		logger = logging.Default()
	}
	return &DeleteUserUseCase{Users: users, Identities: identities, Guard: guard, Logger: logger}
}

func (uc *DeleteUserUseCase) Execute(ctx context.Context, callerUID, uid string) (DeleteUserOutput, error) {
	if callerUID == "" {
		return DeleteUserOutput{}, NewDomainError(CodeUnauthenticated, "You must be signed in to delete a user.")
	}

	var caller *entity.User
	err := uc.Guard.Do(ctx, "user.find", func(ctx context.Context) error {
		var err error
		caller, err = uc.Users.FindByID(ctx, callerUID)
		return err
	})
	if errors.Is(err, entity.ErrUserNotFound) {
		return DeleteUserOutput{}, NewDomainError(CodePermissionDenied, "Caller user doc not found; cannot verify admin role.")
	}
	if err != nil {
		uc.Logger.Error("caller lookup failed", "caller_uid", callerUID, "error", err)
		return DeleteUserOutput{}, &TechnicalError{Code: CodeInternal, Message: "Failed to delete user.", Err: err}
	}
	if caller.Role != entity.RoleAdmin {
		return DeleteUserOutput{}, NewDomainError(CodePermissionDenied, "Only admins can delete users.")
	}

	uid = strings.TrimSpace(uid)
	if uid == "" {
		return DeleteUserOutput{}, NewDomainError(CodeInvalidArgument, "Missing uid.")
	}

	uc.Logger.Info("deleting user", "uid", uid, "caller_uid", callerUID)

	if err := uc.Identities.DeleteIdentity(ctx, uid); err != nil {
		uc.Logger.Error("identity delete failed", "uid", uid, "error", err)
		return DeleteUserOutput{}, &TechnicalError{Code: CodeInternal, Message: "Failed to delete user.", Err: err}
	}

	err = uc.Guard.Do(ctx, "user.delete", func(ctx context.Context) error {
		return uc.Users.Delete(ctx, uid)
	})
	// A missing profile row is already the desired end state.
	if err != nil && !errors.Is(err, entity.ErrUserNotFound) {
		uc.Logger.Error("profile delete failed", "uid", uid, "error", err)
		return DeleteUserOutput{}, &TechnicalError{Code: CodeInternal, Message: "Failed to delete user.", Err: err}
	}

	uc.Logger.Info("user deleted", "uid", uid)
	return DeleteUserOutput{Success: true}, nil
}
