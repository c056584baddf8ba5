// Package client implements the synchronous and fire-and-forget client
// API: open, close, get_info and set_params, each as an async variant
// that takes a caller-supplied request ID, and a synchronous wrapper that
// generates one, sends the request, and correlates the response by
// request ID.
package client

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/kc9xyz/suscan-inspector/internal/channel"
	"github.com/kc9xyz/suscan-inspector/internal/inspmsg"
	"github.com/kc9xyz/suscan-inspector/internal/mq"
)

// ErrWrongHandle is returned when the analyzer reports WRONG_HANDLE.
var ErrWrongHandle = errors.New("client: wrong handle")

// ErrProtocolMismatch is returned when a synchronous call observes a
// response with an unexpected kind; this is treated as a protocol error
// that fails the call but leaves the connection usable.
var ErrProtocolMismatch = errors.New("client: protocol mismatch")

// Client is a synchronous/async wrapper pair around a request queue (read
// by the analyzer) and a response queue (the same queue the analyzer
// writes both requests' acks and unrelated traffic to, discriminated by
// message type).
type Client struct {
	requests  *mq.Queue
	responses *mq.Queue
	logger    *log.Logger
}

// New returns a Client that writes requests to requests and reads
// responses from responses. The two must be distinct queues: requests and
// responses share the TypeInspector tag, so on a single queue the client
// could read its own request back as the response.
func New(requests, responses *mq.Queue, logger *log.Logger) *Client {
	return &Client{requests: requests, responses: responses, logger: logger}
}

func newReqID() uint32 {
	return rand.Uint32()
}

func (c *Client) send(msg *inspmsg.Msg) error {
	// Inspector control requests are urgent: they must not be starved by
	// queued sample-batch traffic.
	return c.requests.PushUrgent(inspmsg.TypeInspector, msg)
}

// waitFor blocks for a response matching reqID, discarding (and logging)
// any mismatched response as a protocol error.
func (c *Client) waitFor(ctx context.Context, reqID uint32) (*inspmsg.Msg, error) {
	for {
		payload, err := c.responses.ReadTyped(ctx, inspmsg.TypeInspector)
		if err != nil {
			return nil, err
		}
		resp, ok := payload.(*inspmsg.Msg)
		if !ok {
			continue
		}
		if resp.ReqID != reqID {
			if c.logger != nil {
				c.logger.Warn("client: discarding unmatched response", "got_req_id", resp.ReqID, "want_req_id", reqID)
			}
			continue
		}
		return resp, nil
	}
}

// OpenAsync sends an OPEN request for ch with the given request ID and
// returns immediately.
func (c *Client) OpenAsync(ch channel.Descriptor, reqID uint32) error {
	return c.send(&inspmsg.Msg{Kind: inspmsg.Open, ReqID: reqID, Channel: ch})
}

// Open opens an inspector on ch and blocks for the handle.
func (c *Client) Open(ctx context.Context, ch channel.Descriptor) (int, error) {
	reqID := newReqID()
	if err := c.OpenAsync(ch, reqID); err != nil {
		return -1, fmt.Errorf("client: open: %w", err)
	}
	resp, err := c.waitFor(ctx, reqID)
	if err != nil {
		return -1, fmt.Errorf("client: open: %w", err)
	}
	if resp.Kind != inspmsg.Open {
		return -1, fmt.Errorf("client: open: %w: got kind %s", ErrProtocolMismatch, resp.Kind)
	}
	return resp.Handle, nil
}

// CloseAsync sends a CLOSE request for handle.
func (c *Client) CloseAsync(handle int, reqID uint32) error {
	return c.send(&inspmsg.Msg{Kind: inspmsg.Close, ReqID: reqID, Handle: handle})
}

// Close closes handle and blocks for acknowledgement.
func (c *Client) Close(ctx context.Context, handle int) error {
	reqID := newReqID()
	if err := c.CloseAsync(handle, reqID); err != nil {
		return fmt.Errorf("client: close: %w", err)
	}
	resp, err := c.waitFor(ctx, reqID)
	if err != nil {
		return fmt.Errorf("client: close: %w", err)
	}
	if resp.Kind == inspmsg.WrongHandle {
		if c.logger != nil {
			c.logger.Warn("client: wrong handle passed to analyzer", "handle", handle)
		}
		return ErrWrongHandle
	}
	if resp.Kind != inspmsg.Close {
		return fmt.Errorf("client: close: %w: got kind %s", ErrProtocolMismatch, resp.Kind)
	}
	return nil
}

// GetInfoAsync sends a GET_INFO request for handle.
func (c *Client) GetInfoAsync(handle int, reqID uint32) error {
	return c.send(&inspmsg.Msg{Kind: inspmsg.GetInfo, ReqID: reqID, Handle: handle})
}

// GetInfo retrieves the current baud estimates for handle.
func (c *Client) GetInfo(ctx context.Context, handle int) (inspmsg.BaudEstimate, error) {
	reqID := newReqID()
	if err := c.GetInfoAsync(handle, reqID); err != nil {
		return inspmsg.BaudEstimate{}, fmt.Errorf("client: get_info: %w", err)
	}
	resp, err := c.waitFor(ctx, reqID)
	if err != nil {
		return inspmsg.BaudEstimate{}, fmt.Errorf("client: get_info: %w", err)
	}
	if resp.Kind == inspmsg.WrongHandle {
		if c.logger != nil {
			c.logger.Warn("client: wrong handle passed to analyzer", "handle", handle)
		}
		return inspmsg.BaudEstimate{}, ErrWrongHandle
	}
	if resp.Kind != inspmsg.Info {
		return inspmsg.BaudEstimate{}, fmt.Errorf("client: get_info: %w: got kind %s", ErrProtocolMismatch, resp.Kind)
	}
	return resp.Baud, nil
}

// GetParamsAsync sends a GET_PARAMS request for handle.
func (c *Client) GetParamsAsync(handle int, reqID uint32) error {
	return c.send(&inspmsg.Msg{Kind: inspmsg.GetParams, ReqID: reqID, Handle: handle})
}

// GetParams retrieves the current parameters for handle.
func (c *Client) GetParams(ctx context.Context, handle int) (inspmsg.InspectorParams, error) {
	reqID := newReqID()
	if err := c.GetParamsAsync(handle, reqID); err != nil {
		return inspmsg.InspectorParams{}, fmt.Errorf("client: get_params: %w", err)
	}
	resp, err := c.waitFor(ctx, reqID)
	if err != nil {
		return inspmsg.InspectorParams{}, fmt.Errorf("client: get_params: %w", err)
	}
	if resp.Kind == inspmsg.WrongHandle {
		return inspmsg.InspectorParams{}, ErrWrongHandle
	}
	if resp.Kind != inspmsg.Params {
		return inspmsg.InspectorParams{}, fmt.Errorf("client: get_params: %w: got kind %s", ErrProtocolMismatch, resp.Kind)
	}
	return resp.Params, nil
}

// SetParamsAsync sends a PARAMS request for handle.
func (c *Client) SetParamsAsync(handle int, params inspmsg.InspectorParams, reqID uint32) error {
	return c.send(&inspmsg.Msg{Kind: inspmsg.Params, ReqID: reqID, Handle: handle, Params: params})
}

// SetParams applies params to handle and blocks for acknowledgement.
func (c *Client) SetParams(ctx context.Context, handle int, params inspmsg.InspectorParams) error {
	reqID := newReqID()
	if err := c.SetParamsAsync(handle, params, reqID); err != nil {
		return fmt.Errorf("client: set_params: %w", err)
	}
	resp, err := c.waitFor(ctx, reqID)
	if err != nil {
		return fmt.Errorf("client: set_params: %w", err)
	}
	if resp.Kind == inspmsg.WrongHandle {
		if c.logger != nil {
			c.logger.Warn("client: wrong handle passed to analyzer", "handle", handle)
		}
		return ErrWrongHandle
	}
	if resp.Kind != inspmsg.Params {
		return fmt.Errorf("client: set_params: %w: got kind %s", ErrProtocolMismatch, resp.Kind)
	}
	return nil
}
