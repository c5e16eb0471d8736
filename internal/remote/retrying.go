package remote

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/lherron/gxcopy/internal/domain"
	"github.com/lherron/gxcopy/internal/logging"
	"github.com/lherron/gxcopy/internal/metrics"
	"github.com/lherron/gxcopy/internal/retry"
)

// RetryOptions configures the retry decorator.
type RetryOptions struct {
	Retry   retry.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// Retrying applies the remote call policy to an underlying client:
//   - 500 and 503 are retried with a fixed delay, at most Retry.MaxAttempts
//     attempts in total, then fail with domain.RetriesExhaustedError
//   - 403 on copy or move yields domain.ErrDenied
//   - anything else is returned as is and is fatal to the caller
type Retrying struct {
	next    Client
	drives  TeamDrives
	cfg     retry.Config
	log     *zap.Logger
	metrics *metrics.Metrics
}

// WithRetry wraps c. If c also implements TeamDrives, so does the result.
func WithRetry(c Client, opts RetryOptions) *Retrying {
	r := &Retrying{
		next:    c,
		cfg:     opts.Retry,
		log:     logging.OrNop(opts.Logger),
		metrics: opts.Metrics,
	}
	if td, ok := c.(TeamDrives); ok {
		r.drives = td
	}
	return r
}

func (r *Retrying) ListChildren(ctx context.Context, folderID, pageToken string) (domain.Page, error) {
	return call(ctx, r, OpList, false, func() (domain.Page, error) {
		return r.next.ListChildren(ctx, folderID, pageToken)
	})
}

func (r *Retrying) GetItem(ctx context.Context, id string) (domain.Item, error) {
	return call(ctx, r, OpGet, false, func() (domain.Item, error) {
		return r.next.GetItem(ctx, id)
	})
}

func (r *Retrying) CreateFolder(ctx context.Context, parentID, name string) (domain.Item, error) {
	return call(ctx, r, OpCreateFolder, false, func() (domain.Item, error) {
		return r.next.CreateFolder(ctx, parentID, name)
	})
}

func (r *Retrying) CopyFile(ctx context.Context, id, destParentID, newName string) (domain.Item, error) {
	return call(ctx, r, OpCopy, true, func() (domain.Item, error) {
		return r.next.CopyFile(ctx, id, destParentID, newName)
	})
}

func (r *Retrying) MoveFile(ctx context.Context, id, removeParentID, addParentID string) (domain.Item, error) {
	return call(ctx, r, OpMove, true, func() (domain.Item, error) {
		return r.next.MoveFile(ctx, id, removeParentID, addParentID)
	})
}

func (r *Retrying) ListTeamDrives(ctx context.Context, pageToken string) (domain.TeamDrivePage, error) {
	if r.drives == nil {
		return domain.TeamDrivePage{}, fmt.Errorf("%s: client does not manage team drives", OpListDrives)
	}
	return call(ctx, r, OpListDrives, false, func() (domain.TeamDrivePage, error) {
		return r.drives.ListTeamDrives(ctx, pageToken)
	})
}

func (r *Retrying) CreateTeamDrive(ctx context.Context, requestID, name string) (domain.TeamDrive, error) {
	if r.drives == nil {
		return domain.TeamDrive{}, fmt.Errorf("%s: client does not manage team drives", OpCreateDrive)
	}
	return call(ctx, r, OpCreateDrive, false, func() (domain.TeamDrive, error) {
		return r.drives.CreateTeamDrive(ctx, requestID, name)
	})
}

func call[T any](ctx context.Context, r *Retrying, op string, tolerateDenied bool, fn func() (T, error)) (T, error) {
	cfg := r.cfg
	hook := r.cfg.OnRetry
	cfg.OnRetry = func(attempt int, err error) {
		r.log.Debug("recoverable error, sleeping before retry",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Duration("wait", cfg.Wait),
			zap.Error(err))
		r.metrics.APIRetry(op)
		if hook != nil {
			hook(attempt, err)
		}
	}

	result, err := retry.DoWithResult(ctx, cfg, func() (T, error) {
		v, err := fn()
		if err == nil {
			r.metrics.APICall(op, "ok")
			return v, nil
		}

		if apiErr, ok := domain.AsAPIError(err); ok {
			switch {
			case apiErr.Transient():
				r.metrics.APICall(op, "transient")
				return v, retry.Retryable(err)
			case apiErr.Denied() && tolerateDenied:
				r.metrics.APICall(op, "denied")
				r.log.Debug("permission denied, caller will fall back", zap.String("op", op), zap.Error(err))
				return v, fmt.Errorf("%w: %w", domain.ErrDenied, err)
			}
		}

		r.metrics.APICall(op, "error")
		r.log.Error("unrecoverable remote error", zap.String("op", op), zap.Error(err))
		return v, err
	})

	var exhausted *retry.ExhaustedError
	if errors.As(err, &exhausted) {
		r.log.Error("remote call failed on every attempt",
			zap.String("op", op),
			zap.Int("attempts", exhausted.Attempts),
			zap.Error(exhausted.Err))
		return result, &domain.RetriesExhaustedError{Op: op, Attempts: exhausted.Attempts, Err: exhausted.Err}
	}
	return result, err
}

var _ AdminClient = (*Retrying)(nil)
