package node

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/DeBrosOfficial/chainclient/pkg/chain"
	"github.com/DeBrosOfficial/chainclient/pkg/codec"
	"github.com/DeBrosOfficial/chainclient/pkg/errors"
	"github.com/DeBrosOfficial/chainclient/pkg/logging"
	"github.com/DeBrosOfficial/chainclient/pkg/request"
)

// CallViewRequest is the body of POST /requests/callview.
type CallViewRequest struct {
	Arguments     codec.JSONDict `json:"arguments"`
	ChainID       string         `json:"chainId"`
	ContractHName string         `json:"contractHName"`
	FunctionHName string         `json:"functionHName"`
}

// OffLedgerRequest is the body of POST /requests/offledger.
type OffLedgerRequest struct {
	ChainID string `json:"chainId"`
	Request string `json:"request"`
}

// CallView runs a read-only view and returns its results.
func (c *Client) CallView(ctx context.Context, contract, function chain.Hname, args codec.Args) (codec.Args, error) {
	if args == nil {
		args = codec.NewArgs()
	}
	body := CallViewRequest{
		Arguments:     args.ToJSONDict(),
		ChainID:       c.chainID.String(),
		ContractHName: contract.String(),
		FunctionHName: function.String(),
	}

	resp, err := c.do(ctx, OpCallView, http.MethodPost, "/requests/callview", body, c.timeouts[OpCallView])
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, errors.NewViewCallError(resp.status, errors.ParseErrorBody(resp.status, resp.body))
	}

	result, err := codec.DecodeResult(resp.body)
	if err != nil {
		return nil, errors.NewInternalError("failed to decode view result", err).WithOperation(OpCallView)
	}
	return result, nil
}

// PostRequest submits a signed off-ledger request. Both 200 and 202 count as
// accepted; the returned ID is computed locally from the signed bytes.
func (c *Client) PostRequest(ctx context.Context, req *request.SignedRequest) (chain.RequestID, error) {
	if req == nil {
		return chain.RequestID{}, errors.NewValidationError("request", "must not be nil", nil)
	}
	body := OffLedgerRequest{
		ChainID: req.ChainID().String(),
		Request: req.Hex(),
	}

	resp, err := c.do(ctx, OpOffLedger, http.MethodPost, "/requests/offledger", body, c.timeouts[OpOffLedger])
	if err != nil {
		return chain.RequestID{}, err
	}
	switch resp.status {
	case http.StatusOK, http.StatusAccepted:
	default:
		return chain.RequestID{}, errors.NewPostRequestError(resp.status, errors.ParseErrorBody(resp.status, resp.body))
	}

	c.logger.ComponentDebug(logging.ComponentNode, "Off-ledger request accepted",
		zap.String("request_id", req.ID().String()),
		zap.Uint64("nonce", req.Nonce()),
		zap.Int("status", resp.status))
	return req.ID(), nil
}

// WaitUntilProcessed blocks until the node reports the request processed or
// timeout elapses. A zero timeout uses the configured wait timeout.
func (c *Client) WaitUntilProcessed(ctx context.Context, requestID chain.RequestID, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = c.timeouts[OpWait]
	}
	path := fmt.Sprintf("/chains/%s/requests/%s/wait", c.chainID, requestID)

	resp, err := c.do(ctx, OpWait, http.MethodGet, path, nil, timeout)
	if err != nil {
		return err
	}
	if resp.status != http.StatusOK {
		message := strings.TrimSpace(string(resp.body))
		if message == "" {
			message = http.StatusText(resp.status)
		}
		return errors.NewWaitError(resp.status, message)
	}
	return nil
}
