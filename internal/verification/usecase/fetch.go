package usecase

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/shandysiswandi/gotransfer/internal/pkg/goerror"
	"github.com/shandysiswandi/gotransfer/internal/verification/entity"
)

const (
	timeLayout = time.RFC3339

	defaultFetchInterval = 5 * time.Second

	// arrivalTolerance is how far before sent_at a message may be stamped
	// and still count as an answer to the send.
	arrivalTolerance = 10 * time.Second
	// searchLookback widens the server-side SINCE filter.
	searchLookback = 5 * time.Minute
)

type FetchInput struct {
	Email       string `validate:"required,email"`
	MailboxHint string
	// RetryCount is the number of mailbox polls, at least one.
	RetryCount int `validate:"gte=0,lte=100"`
	// Interval is the pause between polls, 5s when zero.
	Interval time.Duration
}

type FetchOutput struct {
	Code    string
	Mailbox string
	// Attempts is zero when the code was already stored.
	Attempts int
}

// Fetch returns the code sent by the last Send for in.Email. The request is
// consumed on success. The call blocks for at most RetryCount polls separated
// by Interval and returns early when ctx is done.
func (s *Usecase) Fetch(ctx context.Context, in FetchInput) (*FetchOutput, error) {
	ctx, span := s.startSpan(ctx, "Fetch")
	defer span.End()

	in.Email = entity.NormalizeEmail(in.Email)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	email := in.Email
	req, err := s.repoStore.Get(ctx, email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "verification fetch without pending request", "email", email)
		return nil, goerror.WrapBusiness(entity.ErrSendBeforeFetch, goerror.CodePrecondition)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get verification request", "email", email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if req.Code != "" {
		s.consume(ctx, email)
		return &FetchOutput{Code: req.Code}, nil
	}

	attempts := max(in.RetryCount, 1)
	interval := in.Interval
	if interval <= 0 {
		interval = defaultFetchInterval
	}

	var (
		out     FetchOutput
		attempt int
	)
	backoff := retry.WithMaxRetries(uint64(attempts-1), retry.NewConstant(interval))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++

		mb, err := s.resolveMailbox(ctx, in.MailboxHint)
		if err != nil {
			return err
		}

		code, err := s.pollMailbox(ctx, mb, *req)
		if err != nil {
			slog.InfoContext(ctx, "verification code not available yet",
				"email", email, "mailbox", mb.Name, "attempt", attempt, "of", attempts, "error", err)
			return retry.RetryableError(err)
		}

		out = FetchOutput{Code: code, Mailbox: mb.Name, Attempts: attempt}
		return nil
	})
	if err != nil {
		return nil, s.fetchFailure(ctx, email, err)
	}

	// the code is kept on the request first, so a failed delete still hands
	// it to the next Fetch instead of polling the mailbox again
	req.Code = out.Code
	if _, err := s.repoStore.Put(ctx, *req); err != nil {
		slog.WarnContext(ctx, "failed to repo store fetched verification code", "email", email, "error", err)
	}
	s.consume(ctx, email)

	return &out, nil
}

func (s *Usecase) pollMailbox(ctx context.Context, mb entity.Mailbox, req entity.Request) (string, error) {
	messages, err := s.repoMail.Search(ctx, mb, entity.SearchCriteria{
		From:            s.cfg.GetString("modules.verification.sender"),
		To:              req.Email,
		SubjectContains: s.cfg.GetString("modules.verification.subject_marker"),
		Since:           req.SentAt.Add(-searchLookback),
	})
	if err != nil {
		return "", err
	}

	code, ok := extractNewest(messages, req.SentAt)
	if !ok {
		return "", entity.ErrCodeNotFound
	}

	return code, nil
}

// extractNewest scans messages received inside the window newest-first and
// returns the first code found.
func extractNewest(messages []entity.Message, sentAt time.Time) (string, bool) {
	accepted := make([]entity.Message, 0, len(messages))
	for _, msg := range messages {
		if withinWindow(msg.ReceivedAt, sentAt) {
			accepted = append(accepted, msg)
		}
	}

	slices.SortStableFunc(accepted, func(a, b entity.Message) int {
		return b.ReceivedAt.Compare(a.ReceivedAt)
	})

	for _, msg := range accepted {
		body := msg.HTMLBody
		if body == "" {
			body = msg.TextBody
		}
		if code, ok := extractCode(body); ok {
			return code, true
		}
	}

	return "", false
}

// withinWindow has no upper bound: late deliveries are still answers.
func withinWindow(receivedAt, sentAt time.Time) bool {
	return receivedAt.Sub(sentAt) > -arrivalTolerance
}

func (s *Usecase) fetchFailure(ctx context.Context, email string, err error) error {
	var ge *goerror.Error
	switch {
	case errors.As(err, &ge):
		return err
	case errors.Is(err, entity.ErrCodeNotFound):
		slog.WarnContext(ctx, "verification code not found after all attempts", "email", email)
		return goerror.WrapBusiness(entity.ErrCodeNotFound, goerror.CodeNotFound)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		slog.WarnContext(ctx, "verification fetch abandoned", "email", email, "error", err)
		return goerror.NewServer(err)
	default:
		slog.ErrorContext(ctx, "failed to read verification mailbox", "email", email, "error", err)
		return goerror.NewServer(err)
	}
}

func (s *Usecase) consume(ctx context.Context, email string) {
	if err := s.repoStore.Delete(ctx, email); err != nil {
		slog.WarnContext(ctx, "failed to repo delete verification request", "email", email, "error", err)
	}
}
