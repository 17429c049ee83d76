package platform

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
)

// GatewayClient talks to the chat-platform gateway over its REST API.
type GatewayClient struct {
	endpoint string
	token    string
}

func NewGatewayClient(endpoint, token string) *GatewayClient {
	return &GatewayClient{endpoint: endpoint, token: token}
}

func (g *GatewayClient) request(op, method, path string, in any, out any) error {
	url := g.endpoint + path

	var agent *fiber.Agent
	switch method {
	case fiber.MethodGet:
		agent = fiber.Get(url)
	case fiber.MethodPost:
		agent = fiber.Post(url)
	case fiber.MethodPatch:
		agent = fiber.Patch(url)
	case fiber.MethodPut:
		agent = fiber.Put(url)
	case fiber.MethodDelete:
		agent = fiber.Delete(url)
	default:
		return &ActionError{Op: op, Err: fmt.Errorf("unsupported method %s", method)}
	}

	agent.Set(fiber.HeaderAuthorization, "Bearer "+g.token)
	if in != nil {
		agent.JSONEncoder(jsoniter.Marshal)
		agent.JSON(in)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return &ActionError{Op: op, Err: errs[0]}
	}
	if code < 200 || code >= 300 {
		return &ActionError{Op: op, Status: code}
	}
	if out != nil {
		if err := jsoniter.Unmarshal(body, out); err != nil {
			return &ActionError{Op: op, Err: err}
		}
	}

	return nil
}

func (g *GatewayClient) UploadAttachment(_ context.Context, channelID string, attachment Attachment) (string, error) {
	var resp struct {
		URL string `json:"url"`
	}
	err := g.request("upload_attachment", fiber.MethodPost,
		fmt.Sprintf("/channels/%s/attachments", channelID), attachment, &resp)
	if err != nil {
		return "", err
	}
	return resp.URL, nil
}

func (g *GatewayClient) EnsureRelay(_ context.Context, channelID string, name string) (RelayRef, error) {
	var resp RelayRef
	err := g.request("ensure_relay", fiber.MethodPost,
		fmt.Sprintf("/channels/%s/relays", channelID),
		fiber.Map{"name": name}, &resp)
	return resp, err
}

func (g *GatewayClient) RelaySend(_ context.Context, relay RelayRef, profile SenderProfile, card CardPayload, file *Attachment) (SentMessage, error) {
	var resp SentMessage
	err := g.request("relay_send", fiber.MethodPost,
		fmt.Sprintf("/relays/%s/%s/messages", relay.ID, relay.Token),
		fiber.Map{"profile": profile, "card": card, "file": file}, &resp)
	return resp, err
}

func (g *GatewayClient) RelayEdit(_ context.Context, relay RelayRef, messageID string, card CardPayload) error {
	return g.request("relay_edit", fiber.MethodPatch,
		fmt.Sprintf("/relays/%s/%s/messages/%s", relay.ID, relay.Token, messageID),
		fiber.Map{"card": card}, nil)
}

func (g *GatewayClient) SendCard(_ context.Context, channelID string, card CardPayload) (string, error) {
	var resp SentMessage
	err := g.request("send_card", fiber.MethodPost,
		fmt.Sprintf("/channels/%s/messages", channelID),
		fiber.Map{"card": card}, &resp)
	if err != nil {
		return "", err
	}
	return resp.MessageID, nil
}

func (g *GatewayClient) EditCard(_ context.Context, channelID string, messageID string, card CardPayload) error {
	return g.request("edit_card", fiber.MethodPatch,
		fmt.Sprintf("/channels/%s/messages/%s", channelID, messageID),
		fiber.Map{"card": card}, nil)
}

func (g *GatewayClient) FetchMessage(_ context.Context, channelID string, messageID string) (Message, error) {
	var resp Message
	err := g.request("fetch_message", fiber.MethodGet,
		fmt.Sprintf("/channels/%s/messages/%s", channelID, messageID), nil, &resp)
	return resp, err
}

func (g *GatewayClient) DeleteMessage(_ context.Context, channelID string, messageID string) error {
	return g.request("delete_message", fiber.MethodDelete,
		fmt.Sprintf("/channels/%s/messages/%s", channelID, messageID), nil, nil)
}

func (g *GatewayClient) GrantRole(_ context.Context, communityID string, userID string, roleID string) error {
	return g.request("grant_role", fiber.MethodPut,
		fmt.Sprintf("/communities/%s/members/%s/roles/%s", communityID, userID, roleID), nil, nil)
}

func (g *GatewayClient) RevokeRole(_ context.Context, communityID string, userID string, roleID string) error {
	return g.request("revoke_role", fiber.MethodDelete,
		fmt.Sprintf("/communities/%s/members/%s/roles/%s", communityID, userID, roleID), nil, nil)
}

func (g *GatewayClient) Notify(_ context.Context, channelID string, content string) error {
	return g.request("notify", fiber.MethodPost,
		fmt.Sprintf("/channels/%s/notices", channelID),
		fiber.Map{"content": content}, nil)
}
