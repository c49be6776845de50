package api

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/guerrillamail/client-go/internal/apierrors"
)

// DefaultLang is sent when no language is configured.
const DefaultLang = "en"

// Argument keys used by the operations.
const (
	argLang         = "lang"
	argSubscription = "SUBSCR"
	argEmailUser    = "email_user"
	argSeq          = "seq"
	argOffset       = "offset"
	argEmailID      = "email_id"
	argEmailIDs     = "email_ids"
	argEmailAddr    = "email_addr"
)

// AddressParams holds the optional arguments of get_email_address and
// set_email_user.
type AddressParams struct {
	// Lang defaults to DefaultLang.
	Lang string
	// Subscription is only sent by get_email_address.
	Subscription string
}

func (p AddressParams) lang() string {
	if p.Lang == "" {
		return DefaultLang
	}
	return p.Lang
}

// ListParams holds the optional arguments of get_email_list.
type ListParams struct {
	Offset int
	// Seq is omitted from the request when nil.
	Seq *int64
}

// GetEmailAddress acquires the session's mailbox, creating one when the
// session has none yet.
func (c *Client) GetEmailAddress(ctx context.Context, p AddressParams) (*AddressResponse, error) {
	args := Args{argLang: p.lang()}
	if p.Subscription != "" {
		args[argSubscription] = p.Subscription
	}
	return Call[AddressResponse](ctx, c, FuncGetEmailAddress, args)
}

// SetEmailUser asks the service to rename the session's mailbox. The
// service may assign a different address; see MatchesRequested.
func (c *Client) SetEmailUser(ctx context.Context, user string, p AddressParams) (*AddressResponse, error) {
	if strings.TrimSpace(user) == "" {
		return nil, &apierrors.ValidationError{Field: argEmailUser, Reason: "must not be empty"}
	}
	args := Args{
		argEmailUser: user,
		argLang:      p.lang(),
	}
	return Call[AddressResponse](ctx, c, FuncSetEmailUser, args)
}

// CheckEmail returns messages newer than seq.
func (c *Client) CheckEmail(ctx context.Context, seq int64) (*ListResponse, error) {
	args := Args{}
	args.SetInt(argSeq, seq)
	return Call[ListResponse](ctx, c, FuncCheckEmail, args)
}

// GetEmailList returns a page of messages starting at p.Offset.
func (c *Client) GetEmailList(ctx context.Context, p ListParams) (*ListResponse, error) {
	if p.Offset < 0 {
		return nil, &apierrors.ValidationError{Field: argOffset, Reason: "must not be negative"}
	}
	args := Args{}
	args.SetInt(argOffset, int64(p.Offset))
	if p.Seq != nil {
		args.SetInt(argSeq, *p.Seq)
	}
	return Call[ListResponse](ctx, c, FuncGetEmailList, args)
}

// FetchEmail returns the full message for id.
func (c *Client) FetchEmail(ctx context.Context, id int64) (*MailResponse, error) {
	args := Args{}
	args.SetInt(argEmailID, id)
	return Call[MailResponse](ctx, c, FuncFetchEmail, args)
}

// DeleteEmails deletes every message in ids with a single call.
func (c *Client) DeleteEmails(ctx context.Context, ids []int64) (*DeleteResponse, error) {
	if len(ids) == 0 {
		return nil, &apierrors.ValidationError{Field: argEmailIDs, Reason: "at least one id is required"}
	}
	args := Args{}
	args.SetIndexed(argEmailIDs, ids)
	return Call[DeleteResponse](ctx, c, FuncDelEmail, args)
}

// DeleteEmail deletes one message.
func (c *Client) DeleteEmail(ctx context.Context, id int64) (*DeleteResponse, error) {
	return c.DeleteEmails(ctx, []int64{id})
}

// ForgetMe drops the mailbox address from the session. The service answers
// with a bare JSON boolean, which the envelope check reports as a protocol
// failure; that body is read back here as the result. A JSON body that is
// not a boolean fails with a DecodeError.
func (c *Client) ForgetMe(ctx context.Context, emailAddr string) (bool, error) {
	if strings.TrimSpace(emailAddr) == "" {
		return false, &apierrors.ValidationError{Field: argEmailAddr, Reason: "must not be empty"}
	}

	status, err := Call[Bool](ctx, c, FuncForgetMe, Args{argEmailAddr: emailAddr})
	if err == nil {
		return bool(*status), nil
	}

	var protoErr *apierrors.ProtocolError
	if errors.As(err, &protoErr) {
		switch strings.TrimSpace(protoErr.Body) {
		case "true":
			c.logger.Debug("forget_me answered with a bare status", zap.Bool("status", true))
			return true, nil
		case "false":
			c.logger.Debug("forget_me answered with a bare status", zap.Bool("status", false))
			return false, nil
		}
	}
	return false, err
}

// Extend pushes the mailbox expiry forward.
func (c *Client) Extend(ctx context.Context) (*ExtendResponse, error) {
	return Call[ExtendResponse](ctx, c, FuncExtend, nil)
}
