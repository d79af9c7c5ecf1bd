package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/gatekeep/shield/internal/domain/access"
	"github.com/gatekeep/shield/internal/domain/challenge"
	"github.com/gatekeep/shield/internal/domain/channels"
)

const (
	DefaultInviteTTL        = time.Hour
	DefaultMessengerTimeout = 10 * time.Second
	waitPollInterval        = 100 * time.Millisecond
)

type Options struct {
	// PublicURL is the externally reachable base of the web server.
	PublicURL        string
	InviteTTL        time.Duration
	MessengerTimeout time.Duration
}

// Outcome is the result of a challenge or submit step.
type Outcome struct {
	Kind       OutcomeKind
	SessionID  string
	RequestID  string
	Challenge  *challenge.Challenge
	InviteLink string
	Err        error
}

func (o Outcome) State() State {
	return o.Kind.State()
}

// Submission carries one answer attempt. ObservedAddress is what the server
// saw on the connection, ReportedAddress is what the page claims.
type Submission struct {
	SessionID       string
	RequestID       string
	Answer          string
	ObservedAddress string
	ReportedAddress string
}

type BeginResult struct {
	Request   access.AccessRequest
	VerifyURL string
}

type Orchestrator struct {
	ledger    Ledger
	channels  ChannelReader
	issuer    Issuer
	sessions  challenge.Store
	messenger Messenger
	archiver  Archiver
	recorder  Recorder
	opts      Options
}

func NewOrchestrator(ledger Ledger, channels ChannelReader, issuer Issuer, sessions challenge.Store, messenger Messenger, opts Options) *Orchestrator {
	if opts.InviteTTL <= 0 {
		opts.InviteTTL = DefaultInviteTTL
	}
	if opts.MessengerTimeout <= 0 {
		opts.MessengerTimeout = DefaultMessengerTimeout
	}
	opts.PublicURL = strings.TrimRight(opts.PublicURL, "/")

	return &Orchestrator{
		ledger:    ledger,
		channels:  channels,
		issuer:    issuer,
		sessions:  sessions,
		messenger: messenger,
		recorder:  nopRecorder{},
		opts:      opts,
	}
}

func (o *Orchestrator) WithArchiver(a Archiver) *Orchestrator {
	o.archiver = a
	return o
}

func (o *Orchestrator) WithRecorder(r Recorder) *Orchestrator {
	if r != nil {
		o.recorder = r
	}
	return o
}

// VerifyURL is the link handed to the requester for a request id.
func (o *Orchestrator) VerifyURL(requestID string) string {
	return o.opts.PublicURL + "/verify?requestId=" + url.QueryEscape(requestID)
}

// Begin opens a new access request for requesterID on a protected channel
// and tells the owner about it.
func (o *Orchestrator) Begin(ctx context.Context, channelID, requesterID snowflake.ID) (BeginResult, error) {
	cfg, err := o.channels.Config(ctx, channelID)
	if err != nil {
		return BeginResult{}, err
	}
	if !cfg.CaptchaOn {
		return BeginResult{}, ErrNotProtected
	}
	if cfg.BansIdentity(requesterID) {
		return BeginResult{}, ErrDenied
	}

	channel, err := o.channels.Channel(ctx, channelID)
	if errors.Is(err, channels.ErrChannelNotFound) {
		return BeginResult{}, ErrUnknownChannel
	}
	if err != nil {
		return BeginResult{}, err
	}

	req, err := o.ledger.Create(ctx, channelID, channel.OwnerID, requesterID)
	if err != nil {
		return BeginResult{}, err
	}

	o.notify(ctx, req.OwnerID, Notification{
		Kind:         NotifyNewRequest,
		ChannelID:    channel.ID,
		ChannelTitle: channel.Title,
		RequesterID:  requesterID,
		RequestID:    req.ID,
		At:           req.CreatedAt,
	})

	slog.Info("Access request created",
		slog.String("type", "sys"),
		slog.String("request_id", req.ID),
		slog.String("channel_id", channelID.String()),
		slog.String("user_id", requesterID.String()),
	)

	return BeginResult{Request: req, VerifyURL: o.VerifyURL(req.ID)}, nil
}

// Challenge issues a fresh puzzle for a live request and binds it to the
// session, replacing any earlier one. A new session id is minted when
// sessionID is empty.
func (o *Orchestrator) Challenge(ctx context.Context, sessionID, requestID string) Outcome {
	out := o.challenge(ctx, sessionID, requestID)
	o.recorder.ObserveOutcome(out.Kind.String())
	return out
}

func (o *Orchestrator) challenge(ctx context.Context, sessionID, requestID string) Outcome {
	req, out, ok := o.liveRequest(ctx, requestID)
	if !ok {
		out.SessionID = sessionID
		return out
	}

	cfg, err := o.channels.Config(ctx, req.ChannelID)
	if err != nil {
		return o.infra(sessionID, requestID, err)
	}
	if !cfg.CaptchaOn {
		return Outcome{Kind: OutcomeInvalid, SessionID: sessionID, RequestID: requestID}
	}

	if sessionID == "" {
		sessionID, err = challenge.NewSessionID()
		if err != nil {
			return o.infra(sessionID, requestID, err)
		}
	}

	c, err := o.issue(sessionID, requestID)
	if err != nil {
		return o.infra(sessionID, requestID, err)
	}
	return Outcome{Kind: OutcomeChallenged, SessionID: sessionID, RequestID: requestID, Challenge: &c}
}

func (o *Orchestrator) issue(sessionID, requestID string) (challenge.Challenge, error) {
	c, err := o.issuer.Issue()
	if err != nil {
		return challenge.Challenge{}, err
	}
	o.sessions.Put(challenge.Session{
		ID:        sessionID,
		RequestID: requestID,
		Answer:    c.Answer,
		IssuedAt:  o.ledger.Now(),
	})
	return c, nil
}

// liveRequest resolves requestID and maps every non-live case onto its
// outcome. ok is false when the caller should stop.
func (o *Orchestrator) liveRequest(ctx context.Context, requestID string) (access.AccessRequest, Outcome, bool) {
	req, err := o.ledger.Lookup(ctx, requestID)
	switch {
	case errors.Is(err, access.ErrInvalidID), errors.Is(err, access.ErrNotFound):
		return req, Outcome{Kind: OutcomeInvalid, RequestID: requestID}, false
	case err != nil:
		return req, o.infra("", requestID, err), false
	case req.Used:
		return req, Outcome{Kind: OutcomeAlreadyUsed, RequestID: requestID}, false
	case !o.ledger.IsLive(req):
		return req, Outcome{Kind: OutcomeExpired, RequestID: requestID}, false
	}
	return req, Outcome{}, true
}

// Submit evaluates an answer. Checks run in a fixed order: session binding,
// request liveness, deny lists, then the answer itself. Only when all pass is
// an invite minted.
func (o *Orchestrator) Submit(ctx context.Context, sub Submission) Outcome {
	out := o.submit(ctx, sub)
	out.SessionID = sub.SessionID
	out.RequestID = sub.RequestID
	o.recorder.ObserveOutcome(out.Kind.String())

	attrs := []any{
		slog.String("type", "sys"),
		slog.String("status", out.Kind.String()),
		slog.String("request_id", sub.RequestID),
		slog.String("address", sub.ObservedAddress),
	}
	if out.Err != nil {
		slog.Error("Verification submit failed", append(attrs, slog.Any("error", out.Err))...)
	} else {
		slog.Info("Verification submit", attrs...)
	}
	return out
}

func (o *Orchestrator) submit(ctx context.Context, sub Submission) Outcome {
	session, ok := o.sessions.Get(sub.SessionID)
	if !ok || sub.RequestID == "" || session.RequestID != sub.RequestID {
		// A dead request still reports as expired or used, whatever
		// happened to the session.
		if _, out, live := o.liveRequest(ctx, sub.RequestID); !live && out.Kind != OutcomeInfrastructureError {
			return out
		}
		return Outcome{Kind: OutcomeInvalid}
	}

	req, out, ok := o.liveRequest(ctx, sub.RequestID)
	if !ok {
		return out
	}

	cfg, err := o.channels.Config(ctx, req.ChannelID)
	if err != nil {
		return Outcome{Kind: OutcomeInfrastructureError, Err: err}
	}
	for _, addr := range []string{sub.ObservedAddress, sub.ReportedAddress} {
		if addr != "" && cfg.BansAddress(addr) {
			return Outcome{Kind: OutcomeDenied}
		}
	}
	if cfg.BansIdentity(req.RequesterID) {
		return Outcome{Kind: OutcomeDenied}
	}

	if !challenge.CheckAnswer(sub.Answer, session.Answer) {
		c, err := o.issue(sub.SessionID, sub.RequestID)
		if err != nil {
			return Outcome{Kind: OutcomeInfrastructureError, Err: err}
		}
		return Outcome{Kind: OutcomeIncorrect, Challenge: &c}
	}

	channel, err := o.channels.Channel(ctx, req.ChannelID)
	if errors.Is(err, channels.ErrChannelNotFound) {
		return Outcome{Kind: OutcomeInvalid}
	}
	if err != nil {
		return Outcome{Kind: OutcomeInfrastructureError, Err: err}
	}

	return o.mint(ctx, req, channel, sub)
}

// mint reserves the request, creates the invite and finalizes the ledger.
// A failed mint releases the reservation so the same request can be retried.
func (o *Orchestrator) mint(ctx context.Context, req access.AccessRequest, channel channels.Channel, sub Submission) Outcome {
	holder, err := challenge.NewSessionID()
	if err != nil {
		return Outcome{Kind: OutcomeInfrastructureError, Err: err}
	}

	lease := o.opts.MessengerTimeout + time.Second
	if out, ok := o.reserve(ctx, req.ID, holder, lease); !ok {
		return out
	}

	mintCtx, cancel := context.WithTimeout(ctx, o.opts.MessengerTimeout)
	start := time.Now()
	link, err := o.messenger.CreateInvite(mintCtx, channel, o.opts.InviteTTL)
	cancel()
	o.recorder.ObserveMint(time.Since(start), err)
	if err == nil && link == "" {
		err = errors.New("empty invite link")
	}
	if err != nil {
		o.release(req.ID, holder)
		return Outcome{Kind: OutcomeInfrastructureError, Err: fmt.Errorf("failed to mint invite: %w", err)}
	}

	if err := o.ledger.Finalize(ctx, req.ID, link); err != nil {
		if errors.Is(err, access.ErrAlreadyUsed) {
			slog.Warn("Invite minted for a request finalized elsewhere",
				slog.String("type", "sys"),
				slog.String("request_id", req.ID),
			)
			return Outcome{Kind: OutcomeAlreadyUsed}
		}
		o.release(req.ID, holder)
		return Outcome{Kind: OutcomeInfrastructureError, Err: fmt.Errorf("failed to finalize request: %w", err)}
	}

	now := o.ledger.Now()
	o.notify(ctx, req.OwnerID, Notification{
		Kind:            NotifyVerified,
		ChannelID:       channel.ID,
		ChannelTitle:    channel.Title,
		RequesterID:     req.RequesterID,
		RequestID:       req.ID,
		Address:         sub.ObservedAddress,
		ReportedAddress: sub.ReportedAddress,
		InviteLink:      link,
		At:              now,
	})
	o.archive(ctx, AuditRecord{
		RequestID:       req.ID,
		ChannelID:       req.ChannelID,
		OwnerID:         req.OwnerID,
		RequesterID:     req.RequesterID,
		Address:         sub.ObservedAddress,
		ReportedAddress: sub.ReportedAddress,
		InviteLink:      link,
		CreatedAt:       req.CreatedAt,
		VerifiedAt:      now,
	})

	return Outcome{Kind: OutcomeVerified, InviteLink: link}
}

// reserve takes the mint lease. If another submission holds it, wait until
// that one either finalizes the request or gives the lease back.
func (o *Orchestrator) reserve(ctx context.Context, id, holder string, lease time.Duration) (Outcome, bool) {
	waitCtx, cancel := context.WithTimeout(ctx, lease)
	defer cancel()

	ticker := time.NewTicker(waitPollInterval)
	defer ticker.Stop()

	for {
		err := o.ledger.Reserve(ctx, id, holder, lease)
		switch {
		case err == nil:
			return Outcome{}, true
		case errors.Is(err, access.ErrAlreadyUsed):
			return Outcome{Kind: OutcomeAlreadyUsed}, false
		case !errors.Is(err, access.ErrReserved):
			return Outcome{Kind: OutcomeInfrastructureError, Err: fmt.Errorf("failed to reserve request: %w", err)}, false
		}

		select {
		case <-waitCtx.Done():
			return Outcome{Kind: OutcomeInfrastructureError, Err: fmt.Errorf("waiting for concurrent verification: %w", waitCtx.Err())}, false
		case <-ticker.C:
		}

		req, err := o.ledger.Lookup(ctx, id)
		if err != nil {
			return Outcome{Kind: OutcomeInfrastructureError, Err: err}, false
		}
		if req.Used {
			return Outcome{Kind: OutcomeAlreadyUsed}, false
		}
	}
}

func (o *Orchestrator) release(id, holder string) {
	ctx, cancel := context.WithTimeout(context.Background(), o.opts.MessengerTimeout)
	defer cancel()
	if err := o.ledger.Release(ctx, id, holder); err != nil {
		slog.Error("Failed to release reservation",
			slog.String("type", "error"),
			slog.String("request_id", id),
			slog.Any("error", err),
		)
	}
}

// notify is best effort: the requester's flow does not depend on it.
func (o *Orchestrator) notify(ctx context.Context, ownerID snowflake.ID, n Notification) {
	if o.messenger == nil || ownerID == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.opts.MessengerTimeout)
	defer cancel()
	if err := o.messenger.NotifyOwner(ctx, ownerID, n); err != nil {
		slog.Warn("Failed to notify channel owner",
			slog.String("type", "sys"),
			slog.String("owner_id", ownerID.String()),
			slog.String("request_id", n.RequestID),
			slog.Any("error", err),
		)
	}
}

func (o *Orchestrator) archive(ctx context.Context, rec AuditRecord) {
	if o.archiver == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.opts.MessengerTimeout)
	defer cancel()
	if err := o.archiver.Archive(ctx, rec); err != nil {
		slog.Warn("Failed to archive verification",
			slog.String("type", "sys"),
			slog.String("request_id", rec.RequestID),
			slog.Any("error", err),
		)
	}
}

// CheckBan is the advisory pre-check the challenge page runs before the
// answer is submitted.
func (o *Orchestrator) CheckBan(ctx context.Context, requestID, address string) (bool, error) {
	req, err := o.ledger.Lookup(ctx, requestID)
	if err != nil {
		return false, err
	}
	cfg, err := o.channels.Config(ctx, req.ChannelID)
	if err != nil {
		return false, err
	}
	return cfg.BansAddress(address) || cfg.BansIdentity(req.RequesterID), nil
}

// SessionRequest returns the request bound to a challenge session.
func (o *Orchestrator) SessionRequest(sessionID string) (string, bool) {
	s, ok := o.sessions.Get(sessionID)
	if !ok {
		return "", false
	}
	return s.RequestID, true
}

func (o *Orchestrator) infra(sessionID, requestID string, err error) Outcome {
	return Outcome{Kind: OutcomeInfrastructureError, SessionID: sessionID, RequestID: requestID, Err: err}
}
